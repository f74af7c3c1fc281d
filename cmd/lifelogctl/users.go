package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	// create
	var userId, email, displayName, tz string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userId == "" || email == "" {
				return fmt.Errorf("--userId and --email required")
			}
			payload := map[string]interface{}{"userId": userId, "email": email}
			if displayName != "" {
				payload["displayName"] = displayName
			}
			if tz != "" {
				payload["timeZone"] = tz
			}
			data, err := doPostJSON("/api/users", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&userId, "userId", "u", "", "UserID (required)")
	createCmd.Flags().StringVarP(&email, "email", "e", "", "User email (required)")
	createCmd.Flags().StringVarP(&displayName, "name", "n", "", "Display name")
	createCmd.Flags().StringVarP(&tz, "tz", "t", "", "Time zone (defaults UTC)")
	_ = createCmd.MarkFlagRequired("userId")
	usersCmd.AddCommand(createCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/users/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	usersCmd.AddCommand(getCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Delete a user and all their data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := doDelete("/api/users/" + args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "deleted")
			return nil
		},
	}
	usersCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(usersCmd)
}
