// Package documents provides the live document list view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/components/input"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/components/status"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/keymap"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/messages"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/styles"
	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
)

// sortKeys is the cycle order of the sort-by binding.
var sortKeys = []string{
	domain.SortByCreatedAt,
	domain.SortByUpdatedAt,
	domain.SortByTitle,
	domain.SortByType,
}

// View is the documents list view.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	session driving.DocumentSession
	ctx     context.Context

	snapshot  driving.DocumentView
	cursor    int
	filtering bool
	filter    *input.Field
	err       error

	width  int
	height int
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.DocumentSession) *View {
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		session: session,
		ctx:     context.Background(),
		filter:  input.NewField(s, "Search", "title, description or tag"),
	}
}

// WithContext sets the context used for session calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.SessionChanged, messages.SessionOpened:
		v.sync()
		return v, nil

	case messages.FetchDone:
		v.sync()
		if msg.Err != nil && !errors.Is(msg.Err, domain.ErrCanceled) {
			v.err = msg.Err
		}
		return v, nil

	case messages.WriteDone:
		v.sync()
		if msg.Result.OK() {
			return v, nil
		}
		note := domain.Notification{Level: domain.NotifyError, Message: writeError(msg).Error()}
		return v, func() tea.Msg { return messages.Notified{Notification: note} }

	case tea.KeyMsg:
		if v.filtering {
			return v.handleFilterKey(msg)
		}
		return v.handleKey(msg)
	}
	return v, nil
}

func writeError(msg messages.WriteDone) error {
	if msg.Result.Resynced {
		return fmt.Errorf("%s failed, list reloaded: %w", msg.Action, msg.Result.Err)
	}
	return fmt.Errorf("%s failed: %w", msg.Action, msg.Result.Err)
}

// sync refreshes the snapshot and keeps the cursor on the selection.
func (v *View) sync() {
	v.snapshot = v.session.Snapshot()
	if v.snapshot.Err != nil {
		v.err = v.snapshot.Err
	} else if v.snapshot.State == driving.FetchIdle {
		v.err = nil
	}

	n := len(v.snapshot.Documents)
	if idx := slices.IndexFunc(v.snapshot.Documents, func(d domain.Document) bool {
		return d.ID == v.snapshot.SelectedID
	}); idx >= 0 {
		v.cursor = idx
	}
	if v.cursor >= n {
		v.cursor = max(0, n-1)
	}
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	km := v.keymap
	filters := v.snapshot.Filters

	switch {
	case key.Matches(msg, km.Up):
		v.move(-1)
	case key.Matches(msg, km.Down):
		v.move(1)

	case key.Matches(msg, km.NextPage):
		return v, v.fetch(v.session.NextPage)
	case key.Matches(msg, km.PrevPage):
		return v, v.fetch(v.session.PrevPage)

	case key.Matches(msg, km.Filter):
		v.filtering = true
		v.filter.SetValue(filters.Search)
		return v, v.filter.Focus()

	case key.Matches(msg, km.Sort):
		order := domain.SortDesc
		if filters.SortOrder == domain.SortDesc {
			order = domain.SortAsc
		}
		return v, v.setFilters(domain.FilterPatch{SortOrder: &order})

	case key.Matches(msg, km.SortKey):
		next := cycle(sortKeys, filters.SortBy)
		return v, v.setFilters(domain.FilterPatch{SortBy: &next})

	case key.Matches(msg, km.TypeFilter):
		types := nextTypeFilter(filters.Types)
		return v, v.setFilters(domain.FilterPatch{Types: &types})

	case key.Matches(msg, km.Reset):
		return v, v.fetch(func(ctx context.Context) (bool, error) {
			return true, v.session.ResetFilters(ctx)
		})

	case key.Matches(msg, km.Refresh):
		return v, v.fetch(func(ctx context.Context) (bool, error) {
			return true, v.session.Refresh(ctx)
		})

	case key.Matches(msg, km.ToggleEncrypted):
		if doc := v.current(); doc != nil {
			flag := !doc.IsEncrypted
			return v, v.write(doc.ID, "update", func(ctx context.Context) driving.WriteResult {
				return v.session.UpdateDocument(ctx, doc.ID, domain.DocumentPatch{IsEncrypted: &flag})
			})
		}

	case key.Matches(msg, km.Delete):
		if doc := v.current(); doc != nil {
			id := doc.ID
			return v, v.write(id, "delete", func(ctx context.Context) driving.WriteResult {
				return v.session.DeleteDocument(ctx, id)
			})
		}
	}
	return v, nil
}

func (v *View) handleFilterKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		v.filtering = false
		v.filter.Blur()
		search := v.filter.Value()
		return v, v.setFilters(domain.FilterPatch{Search: &search})
	case tea.KeyEsc:
		v.filtering = false
		v.filter.Blur()
		return v, nil
	}
	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	return v, cmd
}

func (v *View) move(delta int) {
	n := len(v.snapshot.Documents)
	if n == 0 {
		return
	}
	v.cursor = min(max(v.cursor+delta, 0), n-1)
	v.session.Select(v.snapshot.Documents[v.cursor].ID)
	v.snapshot = v.session.Snapshot()
}

func (v *View) current() *domain.Document {
	if v.cursor < len(v.snapshot.Documents) {
		return &v.snapshot.Documents[v.cursor]
	}
	return nil
}

// fetch runs a paging or refresh action off the update loop.
func (v *View) fetch(fn func(context.Context) (bool, error)) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		fetched, err := fn(ctx)
		return messages.FetchDone{Fetched: fetched, Err: err}
	}
}

func (v *View) setFilters(patch domain.FilterPatch) tea.Cmd {
	return v.fetch(func(ctx context.Context) (bool, error) {
		return v.session.SetFilters(ctx, patch)
	})
}

func (v *View) write(id, action string, fn func(context.Context) driving.WriteResult) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		return messages.WriteDone{DocumentID: id, Action: action, Result: fn(ctx)}
	}
}

// cycle returns the element after cur, wrapping around.
func cycle(values []string, cur string) string {
	i := slices.Index(values, cur)
	return values[(i+1)%len(values)]
}

// nextTypeFilter steps through no filter, then each type alone.
func nextTypeFilter(cur []domain.DocumentType) []domain.DocumentType {
	all := domain.AllDocumentTypes()
	if len(cur) == 0 {
		return []domain.DocumentType{all[0]}
	}
	i := slices.Index(all, cur[0])
	if i < 0 || i == len(all)-1 {
		return []domain.DocumentType{}
	}
	return []domain.DocumentType{all[i+1]}
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder
	snap := &v.snapshot
	p := snap.Pagination

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", p.TotalCount)))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render(describeFilters(&snap.Filters)))
	b.WriteString("\n\n")

	if v.filtering {
		b.WriteString(v.filter.View())
		b.WriteString("\n\n")
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	switch {
	case snap.State == driving.FetchFetching && len(snap.Documents) == 0:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case len(snap.Documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents match these filters."))
	default:
		for i := range snap.Documents {
			b.WriteString(v.renderDocument(i, &snap.Documents[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Page %d of %d", max(p.Page, 1), max(p.TotalPages, 1))))
	if snap.State == driving.FetchFetching {
		b.WriteString(v.styles.Muted.Render("  loading..."))
	}
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(status.Hints(v.keymap.DocumentsHelp())))
	return b.String()
}

func (v *View) renderDocument(index int, doc *domain.Document) string {
	title := doc.Title
	if title == "" {
		title = doc.FileName
	}
	width := max(v.width/2-4, 16)
	if len(title) > width {
		title = title[:width-3] + "..."
	}

	flags := ""
	if doc.IsEncrypted {
		flags += " [enc]"
	}
	if doc.CommentCount > 0 {
		flags += fmt.Sprintf(" [%d comments]", doc.CommentCount)
	}
	meta := fmt.Sprintf("%-15s %8s  %s", doc.Type.Label(), humanSize(doc.FileSize), doc.CreatedAt.Format("2006-01-02"))

	if index == v.cursor {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %s%s", width, title, meta, flags))
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s  ", width, title)) +
		v.styles.Badge.Render(meta) +
		v.styles.Muted.Render(flags)
}

func describeFilters(f *domain.DocumentFilters) string {
	parts := []string{fmt.Sprintf("sort %s %s", f.SortBy, f.SortOrder)}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", f.Search))
	}
	if len(f.Types) > 0 {
		labels := make([]string, len(f.Types))
		for i, t := range f.Types {
			labels[i] = t.Label()
		}
		parts = append(parts, "type "+strings.Join(labels, ","))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tags "+strings.Join(f.Tags, ","))
	}
	return strings.Join(parts, " · ")
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.filter.SetWidth(width)
}

// Snapshot returns the last rendered session state.
func (v *View) Snapshot() driving.DocumentView {
	return v.snapshot
}

// Cursor returns the highlighted row.
func (v *View) Cursor() int {
	return v.cursor
}

// Filtering reports whether the search prompt is open.
func (v *View) Filtering() bool {
	return v.filtering
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
