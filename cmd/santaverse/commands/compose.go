package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"santaverse/internal/compositing"
	"santaverse/internal/gallery"
	"santaverse/internal/observability"
)

func composeCmd() *cobra.Command {
	var (
		frame, overlay, out string
		offsetX, size       float64
	)
	defaults := compositing.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Place the Santa overlay onto a photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			if overlay == "" {
				overlay = cfg.OverlayPath
			}
			studio := compositing.NewStudio(defaults,
				compositing.FileFrame(frame),
				&compositing.FileOverlay{Path: overlay},
				observability.Logger())
			studio.SetParams(compositing.Params{OffsetX: offsetX, Size: size})

			if err := studio.Capture(cmd.Context()); err != nil {
				if errors.Is(err, compositing.ErrCaptureFailed) {
					return errors.New(gallery.NoticeShareFailed)
				}
				return err
			}
			data, name, err := studio.Download()
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (offset %.0f%%, size %.0f%%)\n", out, studio.Params().OffsetX, studio.Params().Size)
			return nil
		},
	}

	cmd.Flags().StringVar(&frame, "frame", "", "camera frame image (jpeg, png or gif)")
	cmd.Flags().StringVar(&overlay, "overlay", "", "overlay image (defaults to SANTAVERSE_OVERLAY_PATH)")
	cmd.Flags().StringVar(&out, "out", "", "output file (default "+compositing.ResultFilename+")")
	cmd.Flags().Float64Var(&offsetX, "offset-x", defaults.DefaultOffsetX, "horizontal overlay offset in percent of frame width")
	cmd.Flags().Float64Var(&size, "size", defaults.DefaultSize, "overlay width in percent of frame width")
	_ = cmd.MarkFlagRequired("frame")
	return cmd
}
