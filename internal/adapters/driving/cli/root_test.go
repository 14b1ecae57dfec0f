package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
)

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	ListFunc         func(ctx context.Context, filters domain.DocumentFilters) (*domain.ListResult, error)
	ListCachedFunc   func(ctx context.Context, familyID string) ([]domain.Document, error)
	UpdateFunc       func(ctx context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error)
	DeleteFunc       func(ctx context.Context, id string) error
	ExportPhotosFunc func(ctx context.Context, familyID string, photoIDs []string) (*domain.PhotoArchive, error)
}

func (m *MockDocumentService) List(ctx context.Context, filters domain.DocumentFilters) (*domain.ListResult, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filters)
	}
	return &domain.ListResult{
		Documents:  testDocuments(),
		Pagination: domain.Pagination{Page: 1, Limit: 12, TotalCount: 2, TotalPages: 1},
	}, nil
}

func (m *MockDocumentService) ListCached(ctx context.Context, familyID string) ([]domain.Document, error) {
	if m.ListCachedFunc != nil {
		return m.ListCachedFunc(ctx, familyID)
	}
	return testDocuments()[:1], nil
}

func (m *MockDocumentService) Update(ctx context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	doc := patch.ApplyTo(testDocuments()[0])
	doc.ID = id
	return &doc, nil
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockDocumentService) ExportPhotos(ctx context.Context, familyID string, photoIDs []string) (*domain.PhotoArchive, error) {
	if m.ExportPhotosFunc != nil {
		return m.ExportPhotosFunc(ctx, familyID, photoIDs)
	}
	return &domain.PhotoArchive{
		FileName: "photos-" + familyID + ".zip",
		Body:     io.NopCloser(strings.NewReader("PK\x03\x04zip")),
	}, nil
}

// MockUploader implements driving.Uploader for testing.
type MockUploader struct {
	IntakeFunc func(paths []string) ([]domain.UploadFile, []domain.FileRejection)
	UploadFunc func(ctx context.Context, batch domain.UploadBatch) (*domain.UploadSummary, error)
	Batches    []domain.UploadBatch
}

func (m *MockUploader) Intake(paths []string) ([]domain.UploadFile, []domain.FileRejection) {
	if m.IntakeFunc != nil {
		return m.IntakeFunc(paths)
	}
	files := make([]domain.UploadFile, 0, len(paths))
	for _, p := range paths {
		name := p[strings.LastIndex(p, "/")+1:]
		files = append(files, domain.UploadFile{Name: name, MimeType: "application/pdf", Size: 100})
	}
	return files, nil
}

func (m *MockUploader) Upload(
	ctx context.Context,
	batch domain.UploadBatch,
	_ driving.DocumentSink,
	onProgress func(domain.UploadProgress),
) (*domain.UploadSummary, error) {
	m.Batches = append(m.Batches, batch)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, batch)
	}
	summary := &domain.UploadSummary{Total: len(batch.Files), Succeeded: len(batch.Files)}
	for i, f := range batch.Files {
		jobID := "job-" + f.Name
		if onProgress != nil {
			onProgress(domain.UploadProgress{JobID: jobID, Status: domain.UploadUploading, Progress: 50, Overall: 25})
			onProgress(domain.UploadProgress{JobID: jobID, Status: domain.UploadComplete, Progress: 100, Overall: 50})
		}
		summary.Jobs = append(summary.Jobs, domain.UploadJob{
			ID: jobID, FileName: f.Name, Status: domain.UploadComplete, Progress: 100,
			DocumentID: "doc-new-" + string(rune('a'+i)),
		})
	}
	return summary, nil
}

func (m *MockUploader) Jobs() []domain.UploadJob     { return nil }
func (m *MockUploader) Progress() map[string]float64 { return map[string]float64{} }
func (m *MockUploader) ClearJobs()                   {}
func (m *MockUploader) Close()                       {}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	values map[string]any
	SetErr error
}

func newMockSettings() *MockSettingsService {
	return &MockSettingsService{values: map[string]any{
		"api.base_url":   "https://care.example",
		"api.token":      "secret-token-value",
		"family.default": "fam-default",
	}}
}

func (m *MockSettingsService) Get() (*domain.ClientSettings, error) {
	s := domain.DefaultClientSettings()
	if v, ok := m.values["family.default"].(string); ok {
		s.DefaultFamilyID = v
	}
	return &s, nil
}

func (m *MockSettingsService) Set(key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}

func (m *MockSettingsService) Value(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *MockSettingsService) Keys() []string {
	return []string{"api.base_url", "api.token", "cache.enabled", "family.default"}
}

func testDocuments() []domain.Document {
	created := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	return []domain.Document{
		{
			ID: "doc-1", FamilyID: "fam-1", Title: "Care plan", Type: domain.DocumentTypeCarePlan,
			FileName: "plan.pdf", MimeType: "application/pdf", FileSize: 2048,
			Tags: []string{"monthly"}, CreatedAt: created, UpdatedAt: created,
		},
		{
			ID: "doc-2", FamilyID: "fam-1", Title: "Insurance card", Type: domain.DocumentTypeInsurance,
			FileName: "card.jpg", MimeType: "image/jpeg", FileSize: 512, IsEncrypted: true,
			CommentCount: 3, CreatedAt: created, UpdatedAt: created,
		},
	}
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	documents *MockDocumentService
	uploader  *MockUploader
	settings  *MockSettingsService
}

func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		documents: &MockDocumentService{},
		uploader:  &MockUploader{},
		settings:  newMockSettings(),
	}
	SetServices(&Services{
		Documents: ts.documents,
		Uploader:  ts.uploader,
		Settings:  ts.settings,
	})
	return ts, func() {
		SetServices(nil)
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag so state does not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "carelink", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"documents", "upload", "photos", "config", "tui", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	for _, name := range []string{"verbose", "config-dir", "family"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_BootstrapReceivesConfigDir(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	var gotDir string
	closed := false
	SetBootstrap(func(dir string) (*Services, error) {
		gotDir = dir
		return &Services{Settings: newMockSettings(), Close: func() { closed = true }}, nil
	})
	defer SetBootstrap(nil)

	_, _, err := execute(t, "--config-dir", "/tmp/carelink-test", "config", "get", "api.base_url")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/carelink-test", gotDir)
	assert.True(t, closed)
}

func TestRootCmd_BootstrapError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	SetBootstrap(func(string) (*Services, error) { return nil, errors.New("bad config") })
	defer SetBootstrap(nil)

	_, _, err := execute(t, "config")

	assert.EqualError(t, err, "bad config")
}

func TestNotConfigured_PrefersUnavailable(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	SetServices(&Services{Unavailable: domain.ErrNotConfigured})

	_, _, err := execute(t, "documents", "list", "--family", "fam-1")

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestResolveFamily(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	got, err := resolveFamily()
	require.NoError(t, err)
	assert.Equal(t, "fam-default", got)

	familyID = " fam-flag "
	got, err = resolveFamily()
	require.NoError(t, err)
	assert.Equal(t, "fam-flag", got)

	familyID = ""
	settingsService = &MockSettingsService{values: map[string]any{}}
	_, err = resolveFamily()
	assert.ErrorContains(t, err, "no family selected")
}

func TestParseTypes(t *testing.T) {
	types, err := parseTypes([]string{"care_plan", "PHOTO"})
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentType{domain.DocumentTypeCarePlan, domain.DocumentTypePhoto}, types)

	_, err = parseTypes([]string{"recipe"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
