package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [paths...]",
	Short: "Upload documents",
	Long: `Upload one or more files as documents of a family.

Every file of a batch shares the metadata flags. Files with an unsupported
type or larger than 10 MB are reported and skipped.

With --watch, files dropped into the directory are uploaded one at a time
as they appear.`,
	RunE: runUpload,
}

// Upload flags.
var (
	uploadTitle       string
	uploadDescription string
	uploadType        string
	uploadTags        []string
	uploadEncrypted   bool
	uploadWatchDir    string
	uploadSettle      time.Duration
)

func init() {
	f := uploadCmd.Flags()
	f.StringVar(&uploadTitle, "title", "", "Document title (default: first file name)")
	f.StringVar(&uploadDescription, "description", "", "Document description")
	f.StringVarP(&uploadType, "type", "t", "", "Document type (default: guessed from the file)")
	f.StringSliceVar(&uploadTags, "tags", nil, "Tags")
	f.BoolVar(&uploadEncrypted, "encrypted", false, "Mark as encrypted")
	f.StringVarP(&uploadWatchDir, "watch", "w", "", "Upload files dropped into this directory")
	f.DurationVar(&uploadSettle, "settle", 500*time.Millisecond, "Wait this long after the last write before uploading")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return notConfigured("upload")
	}
	if len(args) == 0 && uploadWatchDir == "" {
		return errors.New("no files: pass paths or --watch <dir>")
	}
	family, err := resolveFamily()
	if err != nil {
		return err
	}

	var docType domain.DocumentType
	if uploadType != "" {
		if docType, err = domain.ParseDocumentType(uploadType); err != nil {
			return fmt.Errorf("%w: %q", err, uploadType)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if len(args) > 0 {
		if err := uploadPaths(ctx, cmd, family, docType, args); err != nil {
			if uploadWatchDir == "" {
				return err
			}
			cmd.PrintErrf("Error: %v\n", err)
		}
	}
	if uploadWatchDir != "" {
		return watchAndUpload(ctx, cmd, family, docType)
	}
	return nil
}

// uploadPaths validates paths and uploads the accepted files as one batch.
func uploadPaths(ctx context.Context, cmd *cobra.Command, family string, docType domain.DocumentType, paths []string) error {
	accepted, rejections := uploadService.Intake(paths)
	if summary := domain.RejectionSummary(rejections); summary != "" {
		cmd.PrintErrln(summary)
	}
	if len(accepted) == 0 {
		return domain.ErrNoFiles
	}

	batch := domain.UploadBatch{
		FamilyID:    family,
		Title:       strings.TrimSpace(uploadTitle),
		Description: uploadDescription,
		Type:        docType,
		IsEncrypted: uploadEncrypted,
		Tags:        uploadTags,
		Files:       accepted,
	}
	if batch.Title == "" {
		batch.Title = domain.DefaultTitle(accepted[0].Name)
	}
	if batch.Type == "" {
		batch.Type = domain.GuessDocumentType(accepted[0].MimeType)
	}

	summary, err := uploadService.Upload(ctx, batch, nil, progressPrinter(cmd))
	if summary != nil {
		printSummary(cmd, summary)
	}
	if err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}
	return nil
}

// progressPrinter reports each job when its status changes and every
// quarter of its progress.
func progressPrinter(cmd *cobra.Command) func(domain.UploadProgress) {
	type last struct {
		status  domain.UploadStatus
		quarter int
	}
	seen := make(map[string]last)
	names := make(map[string]string)

	return func(p domain.UploadProgress) {
		quarter := int(p.Progress) / 25
		prev, ok := seen[p.JobID]
		if ok && prev.status == p.Status && prev.quarter == quarter {
			return
		}
		seen[p.JobID] = last{status: p.Status, quarter: quarter}

		name, ok := names[p.JobID]
		if !ok {
			name = jobName(p.JobID)
			names[p.JobID] = name
		}
		cmd.Printf("  %-30s %-9s %3.0f%%  (overall %3.0f%%)\n", name, p.Status, p.Progress, p.Overall)
	}
}

// jobName looks up the file name of a tracked job.
func jobName(jobID string) string {
	for _, j := range uploadService.Jobs() {
		if j.ID == jobID {
			return j.FileName
		}
	}
	return jobID
}

func printSummary(cmd *cobra.Command, s *domain.UploadSummary) {
	cmd.Printf("\nUploaded %d of %d files.\n", s.Succeeded, s.Total)
	for _, j := range s.Jobs {
		switch j.Status {
		case domain.UploadComplete:
			cmd.Printf("  ok     %s -> %s\n", j.FileName, j.DocumentID)
		case domain.UploadError:
			cmd.Printf("  failed %s: %s\n", j.FileName, j.Error)
		default:
			cmd.Printf("  %-6s %s\n", j.Status, j.FileName)
		}
	}
}

// watchAndUpload uploads files settling in the watch directory until ctx ends.
func watchAndUpload(ctx context.Context, cmd *cobra.Command, family string, docType domain.DocumentType) error {
	if watchFolder == nil {
		return notConfigured("drop folder")
	}
	dropped, err := watchFolder(ctx, uploadWatchDir, uploadSettle)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s for files to upload. Press Ctrl+C to stop.\n", uploadWatchDir)
	for path := range dropped {
		cmd.Printf("\nNew file: %s\n", path)
		if err := uploadPaths(ctx, cmd, family, docType, []string{path}); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	}
	cmd.Println("Stopped.")
	return nil
}
