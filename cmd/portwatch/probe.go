package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/probe"
)

var probeTimeout time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe HOST:PORT",
	Short: "Run a single TCP check and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, portStr, err := net.SplitHostPort(args[0])
		if err != nil {
			return err
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("port %q is not a number", portStr)
		}
		spec := domain.EndpointSpec{Host: host, Port: port, Timeout: probeTimeout, Interval: domain.DefaultInterval}
		if err := spec.Validate(); err != nil {
			return err
		}

		out := probe.CheckWithTimeout(probe.NewTCPChecker(), spec.Address(), spec.Timeout)
		res := domain.ProbeResult{Key: spec.Key(), Available: out.Success, LatencyMS: out.LatencyMS, Error: out.Message}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s %s is %s (%s=%v, %.1f ms)\n", out.Name, spec.Address(), res.Status(), domain.MetricName, res.Value(), res.LatencyMS)
		if res.Error != "" {
			fmt.Fprintf(w, "error: %s\n", res.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", domain.DefaultTimeout, "connect timeout")
}
