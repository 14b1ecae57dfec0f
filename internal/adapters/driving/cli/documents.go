package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
	"github.com/profyt7/carelinkai-sub003/internal/logger"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage family documents",
	Long:    `List, update, delete or follow the documents of a family.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsUpdateCmd = &cobra.Command{
	Use:   "update [doc-id]",
	Short: "Update document metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsUpdate,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

var documentsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow live document changes",
	Long: `Open the family's document list and print changes as they arrive
over the live event stream. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runDocumentsWatch,
}

// List flags.
var (
	listOffline bool
	listPage    int
	listLimit   int
	listSearch  string
	listTypes   []string
	listTags    []string
	listSort    string
	listOrder   string
)

// Update flags.
var (
	updateTitle       string
	updateDescription string
	updateType        string
	updateTags        []string
	updateEncrypted   bool
)

var watchMetricsAddr string

func init() {
	f := documentsListCmd.Flags()
	f.BoolVar(&listOffline, "offline", false, "Read the local cache instead of the API")
	f.IntVar(&listPage, "page", 1, "Page number")
	f.IntVar(&listLimit, "limit", domain.DefaultPageLimit, "Documents per page")
	f.StringVarP(&listSearch, "search", "s", "", "Search title, description and tags")
	f.StringSliceVarP(&listTypes, "type", "t", nil, "Only these document types")
	f.StringSliceVar(&listTags, "tags", nil, "Only documents with these tags")
	f.StringVar(&listSort, "sort", domain.SortByCreatedAt, "Sort field (createdAt, updatedAt, title, type)")
	f.StringVar(&listOrder, "order", string(domain.SortDesc), "Sort order (asc, desc)")

	u := documentsUpdateCmd.Flags()
	u.StringVar(&updateTitle, "title", "", "New title")
	u.StringVar(&updateDescription, "description", "", "New description")
	u.StringVar(&updateType, "type", "", "New document type")
	u.StringSliceVar(&updateTags, "tags", nil, "Replace tags")
	u.BoolVar(&updateEncrypted, "encrypted", false, "Mark as encrypted")

	documentsWatchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address, e.g. :9090")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsUpdateCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	documentsCmd.AddCommand(documentsWatchCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return notConfigured("document")
	}
	family, err := resolveFamily()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if listOffline {
		docs, err := documentService.ListCached(ctx, family)
		if err != nil {
			return fmt.Errorf("failed to read cache: %w", err)
		}
		if len(docs) == 0 {
			cmd.Printf("No cached documents for family %s\n", family)
			return nil
		}
		cmd.Printf("Cached documents for family %s:\n\n", family)
		printDocuments(cmd, docs)
		cmd.Printf("Total: %d documents (offline)\n", len(docs))
		return nil
	}

	filters, err := listFilters(family)
	if err != nil {
		return err
	}
	result, err := documentService.List(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(result.Documents) == 0 {
		cmd.Printf("No documents found for family %s\n", family)
		return nil
	}

	cmd.Printf("Documents for family %s:\n\n", family)
	printDocuments(cmd, result.Documents)
	p := result.Pagination
	cmd.Printf("Page %d of %d, %d documents\n", p.Page, max(p.TotalPages, 1), p.TotalCount)
	return nil
}

func listFilters(family string) (domain.DocumentFilters, error) {
	filters := domain.DefaultFilters(family)
	filters.Page = max(listPage, 1)
	if listLimit > 0 {
		filters.Limit = listLimit
	}
	filters.Search = strings.TrimSpace(listSearch)
	filters.Tags = listTags
	filters.SortBy = listSort

	switch domain.SortOrder(strings.ToLower(listOrder)) {
	case domain.SortAsc:
		filters.SortOrder = domain.SortAsc
	case domain.SortDesc:
		filters.SortOrder = domain.SortDesc
	default:
		return filters, fmt.Errorf("%w: sort order %q", domain.ErrInvalidInput, listOrder)
	}

	types, err := parseTypes(listTypes)
	if err != nil {
		return filters, err
	}
	filters.Types = types
	return filters, nil
}

func printDocuments(cmd *cobra.Command, docs []domain.Document) {
	for i := range docs {
		d := &docs[i]
		cmd.Printf("  %s\n", d.ID)
		cmd.Printf("    Title:   %s\n", d.Title)
		cmd.Printf("    Type:    %s\n", d.Type.Label())
		cmd.Printf("    File:    %s (%s, %d bytes)\n", d.FileName, d.MimeType, d.FileSize)
		if len(d.Tags) > 0 {
			cmd.Printf("    Tags:    %s\n", strings.Join(d.Tags, ", "))
		}
		if d.IsEncrypted {
			cmd.Println("    Encrypted")
		}
		if d.CommentCount > 0 {
			cmd.Printf("    Comments: %d\n", d.CommentCount)
		}
		cmd.Printf("    Created: %s\n", d.CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}
}

func runDocumentsUpdate(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	patch, err := updatePatch(cmd)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return errors.New("nothing to update: pass --title, --description, --type, --tags or --encrypted")
	}

	doc, err := documentService.Update(cmd.Context(), args[0], patch)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	cmd.Printf("Document %s updated.\n", doc.ID)
	cmd.Printf("  Title: %s\n", doc.Title)
	cmd.Printf("  Type:  %s\n", doc.Type.Label())
	return nil
}

// updatePatch builds a patch from the flags that were set.
func updatePatch(cmd *cobra.Command) (domain.DocumentPatch, error) {
	var patch domain.DocumentPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &updateTitle
	}
	if flags.Changed("description") {
		patch.Description = &updateDescription
	}
	if flags.Changed("type") {
		t, err := domain.ParseDocumentType(updateType)
		if err != nil {
			return patch, fmt.Errorf("%w: %q", err, updateType)
		}
		patch.Type = &t
	}
	if flags.Changed("tags") {
		// An empty list clears the tags.
		patch.Tags = append([]string{}, updateTags...)
	}
	if flags.Changed("encrypted") {
		patch.IsEncrypted = &updateEncrypted
	}
	return patch, patch.Validate()
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runDocumentsWatch(cmd *cobra.Command, _ []string) error {
	if newSession == nil {
		return notConfigured("session")
	}
	family, err := resolveFamily()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if watchMetricsAddr != "" {
		srv := serveMetrics(watchMetricsAddr)
		defer srv.Close()
		cmd.Printf("Serving metrics on %s/metrics\n", watchMetricsAddr)
	}

	session := newSession()
	defer session.Close()

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	if err := session.Open(ctx, family); err != nil {
		return fmt.Errorf("failed to open documents: %w", err)
	}

	snap := session.Snapshot()
	mode := "live"
	if !snap.Live {
		mode = "offline, live updates unavailable"
	}
	cmd.Printf("Watching %d documents for family %s (%s)\n", snap.Pagination.TotalCount, family, mode)

	return watchChanges(ctx, cmd, session, snap)
}

// watchChanges prints list differences until ctx is done.
func watchChanges(ctx context.Context, cmd *cobra.Command, session driving.DocumentSession, prev driving.DocumentView) error {
	changes := session.Changes()
	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopped.")
			return nil
		case <-changes:
			next := session.Snapshot()
			for _, line := range diffDocuments(prev.Documents, next.Documents) {
				cmd.Printf("%s %s\n", time.Now().Format("15:04:05"), line)
			}
			prev = next
		}
	}
}

// diffDocuments describes what changed between two loaded pages.
func diffDocuments(before, after []domain.Document) []string {
	old := make(map[string]domain.Document, len(before))
	for _, d := range before {
		old[d.ID] = d
	}

	var lines []string
	for _, d := range after {
		prev, ok := old[d.ID]
		delete(old, d.ID)
		switch {
		case !ok:
			lines = append(lines, fmt.Sprintf("+ %s %q (%s)", d.ID, d.Title, d.Type.Label()))
		case d.CommentCount > prev.CommentCount:
			lines = append(lines, fmt.Sprintf("# %s %q now has %d comments", d.ID, d.Title, d.CommentCount))
		case !d.UpdatedAt.Equal(prev.UpdatedAt) || d.Title != prev.Title || d.IsEncrypted != prev.IsEncrypted:
			lines = append(lines, fmt.Sprintf("~ %s %q updated", d.ID, d.Title))
		}
	}
	for _, d := range before {
		if _, gone := old[d.ID]; gone {
			lines = append(lines, fmt.Sprintf("- %s %q", d.ID, d.Title))
		}
	}
	return lines
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics server stopped: %v", err)
		}
	}()
	return srv
}
