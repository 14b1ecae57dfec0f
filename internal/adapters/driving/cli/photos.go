package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "Work with family photos",
}

var photosExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download photos as a zip archive",
	Long: `Download the family's photos as one zip archive.

Without --ids every photo is exported.`,
	Args: cobra.NoArgs,
	RunE: runPhotosExport,
}

var (
	exportOut string
	exportIDs []string
)

func init() {
	photosExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file or directory (default: server file name in the current directory)")
	photosExportCmd.Flags().StringSliceVar(&exportIDs, "ids", nil, "Export only these photo ids")

	photosCmd.AddCommand(photosExportCmd)
	rootCmd.AddCommand(photosCmd)
}

func runPhotosExport(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return notConfigured("document")
	}
	family, err := resolveFamily()
	if err != nil {
		return err
	}

	archive, err := documentService.ExportPhotos(cmd.Context(), family, exportIDs)
	if err != nil {
		return fmt.Errorf("failed to export photos: %w", err)
	}
	defer archive.Body.Close()

	path := exportPath(exportOut, archive.FileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := io.Copy(f, archive.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	cmd.Printf("Saved %d bytes to %s\n", n, path)
	return nil
}

// exportPath resolves --out against the server's file name.
func exportPath(out, name string) string {
	name = filepath.Base(name)
	if out == "" {
		return name
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, name)
	}
	return out
}
