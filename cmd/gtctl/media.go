package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/keystore"
	"github.com/untoldecay/goldenthread/internal/mediacache"
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Generate previews and thumbnails for archived attachments",
}

func newMediaState() (*mediacache.State, error) {
	attachKey, err := keystore.AttachmentKey(masterKey)
	if err != nil {
		return nil, err
	}
	archiveDir := filepath.Dir(archive.Path())
	return mediacache.NewState(
		filepath.Join(archiveDir, "attachments"),
		filepath.Join(archiveDir, "thumbnails"),
		filepath.Join(archiveDir, "media-cache"),
		[32]byte(attachKey),
	)
}

var thumbnailMaxSize int

var mediaThumbnailCmd = &cobra.Command{
	Use:   "thumbnail <sha256>",
	Short: "Print a data: URL for a lossless WebP thumbnail of an attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := newMediaState()
		if err != nil {
			return err
		}
		url, err := state.GenerateThumbnail(args[0], thumbnailMaxSize)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]string{"url": url})
			return nil
		}
		fmt.Println(url)
		return nil
	},
}

var previewMime string

var mediaPreviewCmd = &cobra.Command{
	Use:   "preview <sha256>",
	Short: "Decrypt an attachment to a local preview path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := newMediaState()
		if err != nil {
			return err
		}
		path, err := state.DecryptToPreview(args[0], previewMime)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]string{"path": path})
			return nil
		}
		fmt.Println(path)
		return nil
	},
}

var (
	dataURLMime    string
	dataURLMaxSize int64
)

var mediaDataURLCmd = &cobra.Command{
	Use:   "data-url <sha256>",
	Short: "Print a base64 data: URL for an attachment under a size limit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := newMediaState()
		if err != nil {
			return err
		}
		url, err := state.GenerateDataURL(args[0], dataURLMime, dataURLMaxSize)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]string{"url": url})
			return nil
		}
		fmt.Println(url)
		return nil
	},
}

var mediaClearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Empty the decrypted media preview cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := newMediaState()
		if err != nil {
			return err
		}
		state.ClearCache()
		return nil
	},
}

func init() {
	mediaThumbnailCmd.Flags().IntVar(&thumbnailMaxSize, "max-size", 256, "maximum thumbnail edge length in pixels")
	mediaPreviewCmd.Flags().StringVar(&previewMime, "mime", "application/octet-stream", "attachment MIME type, used to pick a file extension")
	mediaDataURLCmd.Flags().StringVar(&dataURLMime, "mime", "application/octet-stream", "attachment MIME type")
	mediaDataURLCmd.Flags().Int64Var(&dataURLMaxSize, "max-bytes", 5<<20, "reject attachments larger than this many encrypted bytes")
	mediaCmd.AddCommand(mediaThumbnailCmd, mediaPreviewCmd, mediaDataURLCmd, mediaClearCacheCmd)
	rootCmd.AddCommand(mediaCmd)
}
