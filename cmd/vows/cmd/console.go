package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/templui/vows/internal/console"
)

func ConsoleCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the moderation console",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Anything written to the terminal would tear the UI
			var out io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				out = f
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, out)
			if err != nil {
				return err
			}
			defer closeApp(a)

			return console.Run(ctx, console.Deps{
				Auth:    a.AuthService,
				Wishes:  a.WishService,
				Gallery: a.GalleryService,
				Stats:   a.DashboardService,
			})
		},
	}

	cmd.Flags().StringVar(&logFile, "log", "", "Write logs to this file")

	return cmd
}
