package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/components/status"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/keymap"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/messages"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/styles"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/views/documents"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/views/upload"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	documentsView *documents.View
	uploadView    *upload.View
	statusBar     *status.Bar

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	bar.SetFamily(ports.FamilyID)

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		documentsView: documents.NewView(s, km, ports.Session),
		uploadView:    upload.NewView(s, km, ports.Uploader, ports.Session, ports.FamilyID),
		statusBar:     bar,
		currentView:   messages.ViewDocuments,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.documentsView.WithContext(ctx)
	a.uploadView.WithContext(ctx)
	return a
}

// Init opens the session and starts listening for changes.
func (a *App) Init() tea.Cmd {
	a.statusBar.SetState(status.StateFetching)
	cmds := []tea.Cmd{
		tea.SetWindowTitle("carelink - " + a.ports.FamilyID),
		a.openSession(),
		a.waitForChange(),
	}
	if a.ports.Notifications != nil {
		cmds = append(cmds, a.ports.Notifications.wait())
	}
	return tea.Batch(cmds...)
}

func (a *App) openSession() tea.Cmd {
	ctx, session, familyID := a.ctx, a.ports.Session, a.ports.FamilyID
	return func() tea.Msg {
		return messages.SessionOpened{FamilyID: familyID, Err: session.Open(ctx, familyID)}
	}
}

// waitForChange delivers the next session change signal.
func (a *App) waitForChange() tea.Cmd {
	changes := a.ports.Session.Changes()
	return func() tea.Msg {
		<-changes
		return messages.SessionChanged{}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.SessionOpened:
		a.err = msg.Err
		a.statusBar.SetError(msg.Err)
		a.documentsView, cmd = a.documentsView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.SessionChanged:
		a.documentsView, cmd = a.documentsView.Update(msg)
		a.syncStatus()
		return a, tea.Batch(cmd, a.waitForChange())

	case messages.FetchDone, messages.WriteDone:
		a.documentsView, cmd = a.documentsView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.FilesAdded, messages.UploadProgressed, messages.UploadFinished:
		a.uploadView, cmd = a.uploadView.Update(msg)
		if done, ok := msg.(messages.UploadFinished); ok && done.Err != nil {
			a.statusBar.SetError(done.Err)
		}
		return a, cmd

	case messages.Notified:
		a.statusBar.SetNotification(msg.Notification)
		if a.ports.Notifications == nil {
			return a, nil
		}
		return a, a.ports.Notifications.wait()

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetError(msg.Err)
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewUpload {
			return a, a.uploadView.Init()
		}
		return a, nil

	case messages.JobsCleared:
		a.ports.Uploader.ClearJobs()
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewDocuments:
		// Global bindings are inactive while the search prompt has focus.
		if !a.documentsView.Filtering() {
			switch {
			case key.Matches(msg, a.keymap.Quit):
				return a, tea.Quit
			case key.Matches(msg, a.keymap.Help):
				a.currentView = messages.ViewHelp
				return a, nil
			case key.Matches(msg, a.keymap.Upload):
				a.currentView = messages.ViewUpload
				return a, a.uploadView.Init()
			}
		}
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.ViewUpload:
		a.uploadView, cmd = a.uploadView.Update(msg)
		return a, cmd

	case messages.ViewHelp:
		if key.Matches(msg, a.keymap.Back) || key.Matches(msg, a.keymap.Help) {
			a.currentView = messages.ViewDocuments
		}
		if key.Matches(msg, a.keymap.Quit) {
			return a, tea.Quit
		}
	}
	return a, nil
}

// syncStatus mirrors session state into the status bar.
func (a *App) syncStatus() {
	snap := a.documentsView.Snapshot()
	a.statusBar.SetLive(snap.Live)
	switch {
	case snap.Err != nil:
		a.statusBar.SetError(snap.Err)
	case snap.State == driving.FetchFetching:
		a.statusBar.SetState(status.StateFetching)
	case a.statusBar.State() == status.StateFetching:
		a.statusBar.SetState(status.StateReady)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewUpload:
		body = a.uploadView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.documentsView.View()
	}
	return body + "\n" + a.statusBar.View()
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-14s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Muted.Render("[esc] back to documents"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// StatusBar returns the status bar.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.documentsView.SetDimensions(width, height-2)
	a.uploadView.SetDimensions(width, height-2)
	a.statusBar.SetWidth(width)
}
