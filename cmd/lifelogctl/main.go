package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	keyFlag string
	rootCmd = &cobra.Command{
		Use:   "lifelogctl",
		Short: "CLI client for the lifelog REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Lifelog service base URL")
	rootCmd.PersistentFlags().StringVarP(&keyFlag, "key", "k", "", "API key (optional for local runs)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
