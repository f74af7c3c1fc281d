package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	tasksCmd := &cobra.Command{Use: "tasks", Short: "Task operations"}

	// add
	var user, title, taskType, due, priority string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || title == "" {
				return fmt.Errorf("--user and --title required")
			}
			payload := map[string]interface{}{"title": title}
			if taskType != "" {
				payload["type"] = taskType
			}
			if due != "" {
				payload["dueTime"] = due
			}
			if priority != "" {
				payload["priority"] = priority
			}
			data, err := doPostJSON(fmt.Sprintf("/api/users/%s/tasks", user), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addCmd.Flags().StringVarP(&user, "user", "u", "", "User ID (required)")
	addCmd.Flags().StringVarP(&title, "title", "t", "", "Task title (required)")
	addCmd.Flags().StringVar(&taskType, "type", "", "Task type (assignment, project, chore)")
	addCmd.Flags().StringVar(&due, "due", "", "Due time, RFC3339")
	addCmd.Flags().StringVar(&priority, "priority", "", "Priority (low, medium, high)")
	tasksCmd.AddCommand(addCmd)

	// list
	var listUser string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, soonest due first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listUser == "" {
				return fmt.Errorf("--user required")
			}
			data, err := doGet(fmt.Sprintf("/api/users/%s/tasks", listUser))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&listUser, "user", "u", "", "User ID (required)")
	tasksCmd.AddCommand(listCmd)

	// done
	var doneUser string
	doneCmd := &cobra.Command{
		Use:   "done TASK_ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if doneUser == "" {
				return fmt.Errorf("--user required")
			}
			payload := map[string]interface{}{"status": "completed"}
			data, err := doPatchJSON(fmt.Sprintf("/api/users/%s/tasks/%s", doneUser, args[0]), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	doneCmd.Flags().StringVarP(&doneUser, "user", "u", "", "User ID (required)")
	tasksCmd.AddCommand(doneCmd)

	rootCmd.AddCommand(tasksCmd)
}
