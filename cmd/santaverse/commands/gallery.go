package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"santaverse/internal/app"
	"santaverse/internal/gallery"
	"santaverse/internal/storage"
)

func galleryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Inspect the community gallery",
	}
	cmd.AddCommand(galleryListCmd(), galleryLikeCmd(), galleryShareCmd())
	return cmd
}

func withGallery(ctx context.Context, fn func(*gallery.Service) error) error {
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(gallery.NewService(store, store, nil, nil))
}

func galleryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List shared items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGallery(cmd.Context(), func(svc *gallery.Service) error {
				items, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSER\tDATE\tLIKES\tVIEWS")
				for _, it := range items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", it.ID, it.Username, it.DisplayDate(), it.Likes, it.Views)
				}
				return tw.Flush()
			})
		},
	}
}

func galleryLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <id>",
		Short: "Like a shared item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGallery(cmd.Context(), func(svc *gallery.Service) error {
				item, err := svc.Like(cmd.Context(), args[0])
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("no gallery item %q", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d likes\n", item.ID, item.Likes)
				return nil
			})
		},
	}
}

func galleryShareCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "share <file>",
		Short: "Share an image to the gallery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withGallery(cmd.Context(), func(svc *gallery.Service) error {
				item, err := svc.Share(cmd.Context(), username, data, http.DetectContentType(data))
				if err != nil {
					return fmt.Errorf("%s (%w)", gallery.Notice(err), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Shared %s as %s\n", item.ID, item.Username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "name shown under the picture")
	return cmd
}
