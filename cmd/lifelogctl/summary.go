package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var user, date string
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the daily summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user required")
			}
			path := fmt.Sprintf("/api/users/%s/summary/daily", user)
			if date != "" {
				path += "?date=" + date
			}
			data, err := doGet(path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	summaryCmd.Flags().StringVarP(&user, "user", "u", "", "User ID (required)")
	summaryCmd.Flags().StringVarP(&date, "date", "d", "", "Date YYYY-MM-DD (defaults to today)")
	rootCmd.AddCommand(summaryCmd)
}
