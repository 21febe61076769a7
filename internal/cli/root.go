// Package cli implements the nc-ddns-updater command line.
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/config"
	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/metrics"
	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/scheduler"
	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/updater"
)

const long = `Updates Namecheap dynamic DNS records, once or on a fixed interval.

Notes
  - The password is NOT your account password, it is a separate per-domain setting.
  - The values for the host and domain must be of the same case (lowercase/uppercase) as in your account.
  - Only IPv4 is supported at this time.
  - To update the wildcard subdomain, use '*' as the host.

Environment variables (fallbacks for missing flags)
  --domain   = ` + config.EnvDomain + `
  --password = ` + config.EnvPassword + `
  --host     = ` + config.EnvHost + ` (comma-separated)
  --ip       = ` + config.EnvIP + `
  --interval = ` + config.EnvInterval + `
  --config   = ` + config.EnvConfig + `
  API base URL = ` + config.EnvAPIHost

const examples = `  # Update the '@' record with a specific IP address
  nc-ddns-updater --domain example.com --ip 127.0.0.1 --password myDdnsPassword

  # Update the 'www' record with your current external IP
  nc-ddns-updater --host www --domain example.com --password myDdnsPassword

  # Update '@' and 'www' every five minutes
  nc-ddns-updater --host @ --host www --domain example.com --password myDdnsPassword --interval 300`

type rootOptions struct {
	flags       config.Flags
	metricsAddr string
	verbose     bool
	zap         zap.Options
}

// NewRootCommand returns the nc-ddns-updater command.
func NewRootCommand(version string) *cobra.Command {
	o := &rootOptions{zap: zap.Options{Development: true}}

	cmd := &cobra.Command{
		Use:           "nc-ddns-updater --domain <domain-name> --password <ddns-password>",
		Short:         "Namecheap dynamic DNS updater",
		Long:          long,
		Example:       examples,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.flags.Domain, "domain", "", "Domain to update, eg 'yourdomain.tld'")
	f.StringVar(&o.flags.Password, "password", "", "Dynamic DNS password")
	f.StringArrayVar(&o.flags.Hosts, "host", nil, "Host the record belongs to, eg '@', 'www'. Repeat for several hosts. Defaults to '@'")
	f.StringVar(&o.flags.IP, "ip", "", "IP to update record with. Defaults to the caller's external IP")
	f.StringVar(&o.flags.Interval, "interval", "", "Seconds between updates. 0 runs once")
	f.StringVar(&o.flags.Config, "config", "", "Path to a YAML config file")
	f.StringVar(&o.metricsAddr, "metrics-bind-address", "0", "Address serving /metrics and /healthz. \"0\" disables it")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Log progress messages")

	zapFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	o.zap.BindFlags(zapFlags)
	f.AddGoFlagSet(zapFlags)

	return cmd
}

func (o *rootOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Progress goes to stdout, failures to stderr.
	outOpts, errOpts := o.zap, o.zap
	if outOpts.DestWriter == nil {
		outOpts.DestWriter = cmd.OutOrStdout()
	}
	if errOpts.DestWriter == nil {
		errOpts.DestWriter = cmd.ErrOrStderr()
	}
	log := zap.New(zap.UseFlagOptions(&outOpts))
	ctrl.SetLogger(log)
	errLog := zap.New(zap.UseFlagOptions(&errOpts))

	cfg, err := config.Resolve(o.flags, nil)
	if err != nil {
		return err
	}

	progress := logr.Discard()
	if o.verbose {
		progress = log.WithName("updater")
	}

	go func() {
		if err := metrics.Serve(ctx, o.metricsAddr, log.WithName("metrics")); err != nil {
			errLog.WithName("metrics").Error(err, "metrics server failed", "address", o.metricsAddr)
		}
	}()

	if cfg.Interval > 0 {
		progress.Info(fmt.Sprintf("Scheduling updates every %s", cfg.Interval))
	}
	progress.Info("Updating immediately...")

	opts := cfg.Options()
	return scheduler.Run(ctx, cfg.Interval, errLog.WithName("scheduler"), func(ctx context.Context) error {
		_, err := updater.Update(ctx, opts, updater.WithLogger(progress))
		return err
	})
}
