package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"ble-rangefinder.klederson.com/internal/config"
	"ble-rangefinder.klederson.com/internal/scanner"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var (
		timeout time.Duration
		name    string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan for the rangefinder from a nearby machine",
		Long: `Scan listens for BLE advertisements and reports every advertiser seen,
flagging any that carry the range service UUID or the expected device
name. Run it from a second machine to confirm a deployed rangefinder is
discoverable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := context.WithTimeout(context.Background(), timeout+5*time.Second)
			defer stop()

			fmt.Fprintf(os.Stderr, "Scanning for %s...\n", timeout)
			results, err := scanner.Scan(ctx, name, timeout)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No advertisers seen.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MAC\tNAME\tRSSI\t")
			for _, r := range results {
				mark := ""
				if r.Match {
					mark = "<- rangefinder"
				}
				rname := r.Name
				if rname == "" {
					rname = "(unknown)"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.MAC, rname, r.RSSI, mark)
			}
			return w.Flush()
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "How long to listen for advertisements")
	cmd.Flags().StringVar(&name, "name", config.DefaultDeviceName, "Device name to flag as a match")
	return cmd
}
