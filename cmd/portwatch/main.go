package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set by ldflags during build
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "portwatch",
	Short:         "Continuous TCP reachability monitor",
	Long:          "portwatch keeps one probe loop per configured host:port and reports custom.port.availability (1 or 0) for each.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
