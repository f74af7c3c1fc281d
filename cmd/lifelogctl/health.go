package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	healthCmd := &cobra.Command{Use: "health", Short: "Health entry operations"}

	// log
	var user, date string
	var water, steps int
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Log a health entry for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || date == "" {
				return fmt.Errorf("--user and --date required")
			}
			payload := map[string]interface{}{"date": date, "water": water, "steps": steps}
			data, err := doPostJSON(fmt.Sprintf("/api/users/%s/health", user), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	logCmd.Flags().StringVarP(&user, "user", "u", "", "User ID (required)")
	logCmd.Flags().StringVarP(&date, "date", "d", "", "Date YYYY-MM-DD (required)")
	logCmd.Flags().IntVarP(&water, "water", "w", 0, "Glasses of water")
	logCmd.Flags().IntVarP(&steps, "steps", "s", 0, "Step count")
	healthCmd.AddCommand(logCmd)

	// stats
	var statsUser, start, end string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Health statistics over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if statsUser == "" || start == "" || end == "" {
				return fmt.Errorf("--user, --start and --end required")
			}
			data, err := doGet(fmt.Sprintf("/api/users/%s/health/stats?start=%s&end=%s", statsUser, start, end))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	statsCmd.Flags().StringVarP(&statsUser, "user", "u", "", "User ID (required)")
	statsCmd.Flags().StringVar(&start, "start", "", "Range start YYYY-MM-DD (required)")
	statsCmd.Flags().StringVar(&end, "end", "", "Range end YYYY-MM-DD (required)")
	healthCmd.AddCommand(statsCmd)

	rootCmd.AddCommand(healthCmd)
}
