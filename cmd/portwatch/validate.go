package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/hamed0406/portwatch/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Check an endpoint file and list rejected entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.FromEnv().EndpointsFile
		if len(args) == 1 {
			path = args[0]
		}
		specs, err := config.LoadEndpoints(path)
		w := cmd.OutOrStdout()
		for _, s := range specs {
			fmt.Fprintf(w, "ok       %-30s timeout=%s interval=%s\n", s.Address(), s.Timeout, s.Interval)
		}
		for _, e := range multierr.Errors(err) {
			fmt.Fprintf(w, "rejected %v\n", e)
		}
		if err != nil {
			return fmt.Errorf("%s: %d endpoint(s) rejected", path, len(multierr.Errors(err)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
