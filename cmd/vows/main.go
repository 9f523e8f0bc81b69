package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/templui/vows/cmd/vows/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "vows",
		Short:         "Admin tools for the wedding site",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(cmd.DevCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.CreateAdminCmd())
	rootCmd.AddCommand(cmd.ConsoleCmd())
	rootCmd.AddCommand(cmd.UploadCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
