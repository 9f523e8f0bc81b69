package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/templui/vows/internal/service"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/upload"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e11d48"))
)

func UploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <image>...",
		Short: "Add images to the gallery",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]storage.File, 0, len(args))
			for _, path := range args {
				f, err := storage.FromPath(path)
				if err != nil {
					return err
				}
				files = append(files, f)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, os.Stderr)
			if err != nil {
				return err
			}
			defer closeApp(a)

			out := cmd.OutOrStdout()
			up, err := a.GalleryService.Upload(ctx, files, service.UploadOptions{
				OnProgress: func(percent int) {
					fmt.Fprintf(out, "\r%3d%%", percent)
				},
				OnTask: func(t upload.Task) {
					switch t.State {
					case upload.StateCompleted:
						fmt.Fprintf(out, "\r%s %s\n", okStyle.Render("✓"), t.File.Name)
					case upload.StateFailed:
						fmt.Fprintf(out, "\r%s %s: %v\n", failStyle.Render("✗"), t.File.Name, t.Err)
					}
				},
			})

			fmt.Fprintf(out, "%d of %d images added\n", len(up.Images), len(files))
			return err
		},
	}
}
