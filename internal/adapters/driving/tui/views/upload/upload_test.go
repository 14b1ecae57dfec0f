package upload

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/messages"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui/styles"
	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
)

// mockUploader records batches and replays scripted progress.
type mockUploader struct {
	mu       sync.Mutex
	files    map[string]domain.UploadFile
	batches  []domain.UploadBatch
	progress []domain.UploadProgress
	summary  *domain.UploadSummary
	err      error
	jobs     []domain.UploadJob
	cleared  int
}

func (m *mockUploader) Intake(paths []string) ([]domain.UploadFile, []domain.FileRejection) {
	var files []domain.UploadFile
	var rejections []domain.FileRejection
	for _, p := range paths {
		if f, ok := m.files[p]; ok {
			files = append(files, f)
			continue
		}
		rejections = append(rejections, domain.FileRejection{FileName: p, Err: domain.ErrUnsupportedType})
	}
	return files, rejections
}

func (m *mockUploader) Upload(
	_ context.Context,
	batch domain.UploadBatch,
	_ driving.DocumentSink,
	onProgress func(domain.UploadProgress),
) (*domain.UploadSummary, error) {
	m.mu.Lock()
	m.batches = append(m.batches, batch)
	m.mu.Unlock()
	for _, p := range m.progress {
		onProgress(p)
	}
	return m.summary, m.err
}

func (m *mockUploader) Jobs() []domain.UploadJob { return m.jobs }

func (m *mockUploader) Progress() map[string]float64 {
	return map[string]float64{domain.OverallProgressKey: 50}
}

func (m *mockUploader) ClearJobs() { m.cleared++ }
func (m *mockUploader) Close()     {}

func newUploader() *mockUploader {
	return &mockUploader{
		files: map[string]domain.UploadFile{
			"/tmp/fall-photo.jpg": {Name: "fall-photo.jpg", MimeType: "image/jpeg", Size: 1024},
			"/tmp/plan.pdf":       {Name: "plan.pdf", MimeType: "application/pdf", Size: 2048},
		},
	}
}

func newTestView(u *mockUploader) *View {
	v := NewView(styles.DefaultStyles(), nil, u, nil, "fam-1")
	v.SetDimensions(100, 30)
	v.Init()
	return v
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs the command chain until it stops producing messages.
func drain(t *testing.T, v *View, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		seen = append(seen, msg)
		_, cmd = v.Update(msg)
	}
	return seen
}

func TestView_IntakeFillsTitleAndType(t *testing.T) {
	u := newUploader()
	v := newTestView(u)

	v.Update(runes("/tmp/fall-photo.jpg, /tmp/nope.exe"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	drain(t, v, cmd)

	require.Len(t, v.Files(), 1)
	assert.Equal(t, "fall-photo", v.Title())
	assert.Equal(t, domain.DocumentTypePhoto, v.DocType())
	assert.Contains(t, v.View(), "/tmp/nope.exe")
}

func TestView_IntakeDeduplicatesByName(t *testing.T) {
	v := newTestView(newUploader())
	file := domain.UploadFile{Name: "plan.pdf", MimeType: "application/pdf", Size: 10}

	v.Update(messages.FilesAdded{Files: []domain.UploadFile{file}})
	v.Update(messages.FilesAdded{Files: []domain.UploadFile{file}})

	assert.Len(t, v.Files(), 1)
}

func TestView_ChosenTypeIsKept(t *testing.T) {
	v := newTestView(newUploader())
	v.setFocus(fieldType)
	v.Update(runes("l"))
	chosen := v.DocType()

	v.Update(messages.FilesAdded{Files: []domain.UploadFile{{Name: "a.jpg", MimeType: "image/jpeg", Size: 1}}})

	assert.Equal(t, chosen, v.DocType())
}

func TestView_SubmitRequiresFilesAndTitle(t *testing.T) {
	u := newUploader()
	v := newTestView(u)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.Error(t, v.Err())
	assert.Empty(t, u.batches)
}

func TestView_SubmitStreamsProgress(t *testing.T) {
	u := newUploader()
	u.progress = []domain.UploadProgress{
		{JobID: "j1", Status: domain.UploadUploading, Progress: 50, Overall: 25},
		{JobID: "j1", Status: domain.UploadComplete, Progress: 100, Overall: 50},
	}
	u.summary = &domain.UploadSummary{Total: 1, Succeeded: 1}
	v := newTestView(u)

	v.Update(messages.FilesAdded{Files: []domain.UploadFile{{Name: "plan.pdf", MimeType: "application/pdf", Size: 2048}}})
	v.setFocus(fieldTags)
	v.Update(runes("monthly, review"))
	v.setFocus(fieldEncrypted)
	v.Update(runes(" "))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.True(t, v.Uploading())

	seen := drain(t, v, cmd)

	require.Len(t, seen, 3)
	assert.IsType(t, messages.UploadProgressed{}, seen[0])
	assert.IsType(t, messages.UploadFinished{}, seen[2])
	assert.False(t, v.Uploading())

	require.Len(t, u.batches, 1)
	batch := u.batches[0]
	assert.Equal(t, "fam-1", batch.FamilyID)
	assert.Equal(t, "plan", batch.Title)
	assert.Equal(t, []string{"monthly", "review"}, batch.Tags)
	assert.True(t, batch.IsEncrypted)

	// A full success resets the form.
	assert.Empty(t, v.Files())
	assert.Empty(t, v.Title())
}

func TestView_FailedUploadKeepsForm(t *testing.T) {
	u := newUploader()
	u.summary = &domain.UploadSummary{Total: 1, Failed: 1}
	u.err = errors.Join(domain.ErrUploadFailed, errors.New("server error"))
	v := newTestView(u)
	v.Update(messages.FilesAdded{Files: []domain.UploadFile{{Name: "plan.pdf", MimeType: "application/pdf", Size: 2048}}})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	drain(t, v, cmd)

	assert.ErrorIs(t, v.Err(), domain.ErrUploadFailed)
	assert.Len(t, v.Files(), 1)
	assert.Equal(t, "plan", v.Title())
}

func TestView_RendersJobs(t *testing.T) {
	u := newUploader()
	u.jobs = []domain.UploadJob{
		{ID: "j1", FileName: "plan.pdf", Status: domain.UploadComplete, Progress: 100},
		{ID: "j2", FileName: "scan.png", Status: domain.UploadError, Error: "too large"},
	}
	v := newTestView(u)

	out := v.View()

	assert.Contains(t, out, "plan.pdf")
	assert.Contains(t, out, "too large")
	assert.Contains(t, out, "Overall")
}

func TestView_ClearJobs(t *testing.T) {
	u := newUploader()
	v := newTestView(u)

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Equal(t, 1, u.cleared)
}

func TestView_EscGoesBack(t *testing.T) {
	v := newTestView(newUploader())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewDocuments}, cmd())
}

func TestView_TabCyclesFocus(t *testing.T) {
	v := newTestView(newUploader())

	for i := 0; i < fieldCount; i++ {
		v.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	assert.Equal(t, fieldFiles, v.focus)

	v.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldEncrypted, v.focus)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, splitList(" a, ,b c ,"))
	assert.Nil(t, splitList("   "))
}
