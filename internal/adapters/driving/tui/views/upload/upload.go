// Package upload provides the upload form and progress view for the TUI.
package upload

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/components/input"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/components/status"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/keymap"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/messages"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/styles"
	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
)

// Form fields in focus order.
const (
	fieldFiles = iota
	fieldTitle
	fieldDescription
	fieldTags
	fieldType
	fieldEncrypted
	fieldCount
)

// View is the upload form with per-file progress.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	uploader driving.Uploader
	sink     driving.DocumentSink
	familyID string
	ctx      context.Context

	inputs      [fieldType]*input.Field
	focus       int
	docType     domain.DocumentType
	typeChosen  bool
	encrypted   bool
	files       []domain.UploadFile
	rejections  []domain.FileRejection
	uploading   bool
	events      chan tea.Msg
	lastSummary *domain.UploadSummary
	err         error

	bar   progress.Model
	width int
}

// NewView creates the upload view. sink receives uploaded documents.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	uploader driving.Uploader,
	sink driving.DocumentSink,
	familyID string,
) *View {
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	v := &View{
		styles:   s,
		keymap:   km,
		uploader: uploader,
		sink:     sink,
		familyID: familyID,
		ctx:      context.Background(),
		docType:  domain.DocumentTypeOther,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
	v.inputs[fieldFiles] = input.NewField(s, "Files", "paths, comma separated")
	v.inputs[fieldTitle] = input.NewField(s, "Title", "required")
	v.inputs[fieldDescription] = input.NewField(s, "Description", "optional")
	v.inputs[fieldTags] = input.NewField(s, "Tags", "comma separated")
	return v
}

// WithContext sets the context uploads run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the first field.
func (v *View) Init() tea.Cmd {
	return v.setFocus(fieldFiles)
}

// Update handles messages for the upload view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.FilesAdded:
		v.addFiles(msg.Files, msg.Rejections)
		return v, nil

	case messages.UploadProgressed:
		return v, v.waitForEvent()

	case messages.UploadFinished:
		v.uploading = false
		v.events = nil
		v.lastSummary = msg.Summary
		v.err = msg.Err
		if msg.Summary != nil && msg.Summary.Outcome() == domain.UploadOutcomeFull {
			v.resetForm()
		} else if msg.Err == nil {
			v.files = nil
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	km := v.keymap
	switch {
	case key.Matches(msg, km.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewDocuments} }
	case key.Matches(msg, km.NextField):
		return v, v.setFocus((v.focus + 1) % fieldCount)
	case key.Matches(msg, km.PrevField):
		return v, v.setFocus((v.focus + fieldCount - 1) % fieldCount)
	case key.Matches(msg, km.Submit):
		return v, v.submit()
	case key.Matches(msg, km.ClearJobs):
		if !v.uploading {
			v.uploader.ClearJobs()
			v.lastSummary = nil
			v.err = nil
		}
		return v, nil
	}

	switch v.focus {
	case fieldType:
		switch msg.String() {
		case "right", "l", " ":
			v.cycleType(1)
		case "left", "h":
			v.cycleType(-1)
		case "enter":
			return v, v.setFocus(fieldEncrypted)
		}
		return v, nil
	case fieldEncrypted:
		switch msg.String() {
		case " ", "x":
			v.encrypted = !v.encrypted
		case "enter":
			return v, v.submit()
		}
		return v, nil
	}

	if msg.Type == tea.KeyEnter {
		if v.focus == fieldFiles {
			paths := splitList(v.inputs[fieldFiles].Value())
			v.inputs[fieldFiles].Reset()
			return v, v.intake(paths)
		}
		return v, v.setFocus(v.focus + 1)
	}

	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return v, cmd
}

func (v *View) setFocus(field int) tea.Cmd {
	v.focus = field
	var cmd tea.Cmd
	for i, in := range v.inputs {
		if i == field {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

func (v *View) cycleType(step int) {
	all := domain.AllDocumentTypes()
	i := slices.Index(all, v.docType)
	v.docType = all[(i+step+len(all))%len(all)]
	v.typeChosen = true
}

// intake resolves paths off the update loop.
func (v *View) intake(paths []string) tea.Cmd {
	if len(paths) == 0 {
		return nil
	}
	return func() tea.Msg {
		files, rejections := v.uploader.Intake(paths)
		return messages.FilesAdded{Files: files, Rejections: rejections}
	}
}

// AddPaths queues paths as if typed into the files field.
func (v *View) AddPaths(paths []string) tea.Cmd {
	return v.intake(paths)
}

// addFiles appends accepted files, deduplicated by name, and fills the
// title and type from the first file when the user has not set them.
func (v *View) addFiles(files []domain.UploadFile, rejections []domain.FileRejection) {
	v.rejections = rejections
	for _, f := range files {
		if slices.ContainsFunc(v.files, func(existing domain.UploadFile) bool { return existing.Name == f.Name }) {
			continue
		}
		v.files = append(v.files, f)
	}
	if len(v.files) == 0 {
		return
	}
	first := v.files[0]
	if strings.TrimSpace(v.inputs[fieldTitle].Value()) == "" {
		v.inputs[fieldTitle].SetValue(domain.DefaultTitle(first.Name))
	}
	if !v.typeChosen {
		v.docType = domain.GuessDocumentType(first.MimeType)
	}
}

func (v *View) submit() tea.Cmd {
	if v.uploading {
		return nil
	}
	batch := domain.UploadBatch{
		FamilyID:    v.familyID,
		Title:       strings.TrimSpace(v.inputs[fieldTitle].Value()),
		Description: strings.TrimSpace(v.inputs[fieldDescription].Value()),
		Type:        v.docType,
		IsEncrypted: v.encrypted,
		Tags:        splitList(v.inputs[fieldTags].Value()),
		Files:       slices.Clone(v.files),
	}
	if err := domain.ValidateBatch(&batch); err != nil {
		v.err = err
		return nil
	}

	v.err = nil
	v.uploading = true
	v.events = make(chan tea.Msg, 32)
	go v.run(v.ctx, batch, v.events)
	return v.waitForEvent()
}

// run uploads the batch and streams progress into events.
func (v *View) run(ctx context.Context, batch domain.UploadBatch, events chan<- tea.Msg) {
	defer close(events)
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}
	summary, err := v.uploader.Upload(ctx, batch, v.sink, func(p domain.UploadProgress) {
		send(messages.UploadProgressed{Progress: p})
	})
	send(messages.UploadFinished{Summary: summary, Err: err})
}

func (v *View) waitForEvent() tea.Cmd {
	events := v.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (v *View) resetForm() {
	for _, in := range v.inputs {
		in.Reset()
	}
	v.files = nil
	v.rejections = nil
	v.docType = domain.DocumentTypeOther
	v.typeChosen = false
	v.encrypted = false
}

// View renders the upload view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Upload documents"))
	b.WriteString("\n\n")

	for i, in := range v.inputs {
		if i == fieldFiles {
			b.WriteString(in.View())
			b.WriteString("\n")
			b.WriteString(v.renderFiles())
			continue
		}
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString(v.renderChoice(fieldType, "Type", "< "+v.docType.Label()+" >"))
	encrypted := "[ ]"
	if v.encrypted {
		encrypted = "[x]"
	}
	b.WriteString(v.renderChoice(fieldEncrypted, "Encrypted", encrypted))
	b.WriteString("\n")

	if summary := domain.RejectionSummary(v.rejections); summary != "" {
		b.WriteString(v.styles.Warning.Render(summary))
		b.WriteString("\n\n")
	}
	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(v.renderJobs())
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(status.Hints(v.keymap.UploadHelp())))
	return b.String()
}

func (v *View) renderFiles() string {
	if len(v.files) == 0 {
		return v.styles.Muted.Render("  no files added") + "\n\n"
	}
	var b strings.Builder
	for _, f := range v.files {
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  %s", f.Name)))
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %s, %d bytes", f.MimeType, f.Size)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (v *View) renderChoice(field int, label, value string) string {
	style := v.styles.Normal
	if v.focus == field {
		style = v.styles.Selected
	}
	return v.styles.Subtitle.Width(14).Render(label) + " " + style.Render(value) + "\n"
}

func (v *View) renderJobs() string {
	jobs := v.uploader.Jobs()
	if len(jobs) == 0 {
		return ""
	}

	var b strings.Builder
	for _, job := range jobs {
		line := fmt.Sprintf("%-30s %s ", truncate(job.FileName, 30), v.bar.ViewAs(job.Progress/100))
		b.WriteString(v.styles.Normal.Render(line))
		b.WriteString(v.styles.UploadStatus(job.Status).Render(string(job.Status)))
		if job.Error != "" {
			b.WriteString(v.styles.Error.Render("  " + job.Error))
		}
		b.WriteString("\n")
	}
	overall := v.uploader.Progress()[domain.OverallProgressKey]
	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%-30s ", "Overall")))
	b.WriteString(v.bar.ViewAs(overall / 100))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, _ int) {
	v.width = width
	for _, in := range v.inputs {
		in.SetWidth(width)
	}
	v.bar.Width = max(20, min(60, width-50))
}

// Files returns the queued files.
func (v *View) Files() []domain.UploadFile {
	return v.files
}

// Uploading reports whether a batch is in flight.
func (v *View) Uploading() bool {
	return v.uploading
}

// DocType returns the selected document type.
func (v *View) DocType() domain.DocumentType {
	return v.docType
}

// Title returns the title field value.
func (v *View) Title() string {
	return v.inputs[fieldTitle].Value()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
