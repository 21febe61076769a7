// Package scheduler runs an update once or on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/metrics"
)

// RunFunc performs one complete update run.
type RunFunc func(ctx context.Context) error

// Run calls fn once when interval is zero and returns its error.
//
// With a positive interval, fn runs immediately and then again each time
// interval has elapsed after the previous run finished, until ctx is done.
// A failing tick is logged and never stops the loop. Runs never overlap.
func Run(ctx context.Context, interval time.Duration, log logr.Logger, fn RunFunc) error {
	if interval < 0 {
		return fmt.Errorf("scheduler: negative interval %s", interval)
	}
	if interval == 0 {
		err := fn(ctx)
		metrics.ObserveRun(err)
		return err
	}

	log.V(1).Info("scheduling updates", "interval", interval.String())
	wait.UntilWithContext(ctx, func(ctx context.Context) {
		err := tick(ctx, fn)
		metrics.ObserveRun(err)
		if err != nil {
			log.Error(err, "update failed, retrying on next tick", "interval", interval.String())
		}
	}, interval)
	return nil
}

// tick runs fn, converting a panic into an error so the loop survives.
func tick(ctx context.Context, fn RunFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("update panicked: %v", r)
		}
	}()
	return fn(ctx)
}
