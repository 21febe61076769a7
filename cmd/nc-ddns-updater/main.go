package main

import (
	"fmt"
	"os"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/cli"
)

var Version = "dev"

func main() {
	if err := cli.NewRootCommand(Version).ExecuteContext(ctrl.SetupSignalHandler()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
