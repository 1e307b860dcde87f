package main

import (
	"fmt"
	"os"

	"github.com/ewhitmore/taskdeck/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "taskdeck-configure",
		Short: "Administration tool for the TaskDeck API",
		Long:  "CLI tool for inspecting tasks, running migrations and checking infrastructure",
	}

	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
