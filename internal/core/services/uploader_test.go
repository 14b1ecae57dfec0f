package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
)

func uploadFile(name, mime string, size int64) domain.UploadFile {
	return domain.UploadFile{
		Name:     name,
		MimeType: mime,
		Size:     size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("content")), nil
		},
	}
}

func batchOf(files ...domain.UploadFile) domain.UploadBatch {
	return domain.UploadBatch{
		FamilyID: "fam-1",
		Title:    "Medication list",
		Type:     domain.DocumentTypeMedicalRecord,
		Files:    files,
	}
}

func TestUploadService_Intake(t *testing.T) {
	files := &mockFileSource{files: map[string]domain.UploadFile{
		"/tmp/plan.pdf":  uploadFile("plan.pdf", "application/pdf", 1024),
		"/tmp/big.pdf":   uploadFile("big.pdf", "application/pdf", domain.MaxFileSize+1),
		"/tmp/tool.exe":  uploadFile("tool.exe", "application/x-msdownload", 10),
		"/tmp/photo.jpg": uploadFile("photo.jpg", "image/jpeg", 2048),
	}}
	svc := NewUploadService(&mockDocumentAPI{}, files, nil, UploadOptions{})

	accepted, rejected := svc.Intake([]string{
		"/tmp/plan.pdf", "/tmp/big.pdf", "/tmp/tool.exe", "/tmp/photo.jpg", "/tmp/plan.pdf", "/tmp/missing.txt",
	})

	require.Len(t, accepted, 2)
	assert.Equal(t, "plan.pdf", accepted[0].Name)
	assert.Equal(t, "photo.jpg", accepted[1].Name)

	require.Len(t, rejected, 3)
	assert.ErrorIs(t, rejected[0], domain.ErrFileTooLarge)
	assert.ErrorIs(t, rejected[1], domain.ErrUnsupportedType)
	assert.ErrorIs(t, rejected[2], domain.ErrNotFound)
}

func TestUploadService_UploadValidatesBatch(t *testing.T) {
	api := &mockDocumentAPI{}
	svc := NewUploadService(api, nil, nil, UploadOptions{})
	ctx := context.Background()

	b := batchOf(uploadFile("a.pdf", "application/pdf", 10))
	b.Title = ""
	_, err := svc.Upload(ctx, b, nil, nil)
	assert.ErrorIs(t, err, domain.ErrTitleRequired)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Upload(ctx, batchOf(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoFiles)
	assert.Empty(t, api.uploads)
}

func TestUploadService_UploadSequentialFullSuccess(t *testing.T) {
	var (
		mu     sync.Mutex
		active int
		order  []string
	)
	api := &mockDocumentAPI{}
	api.uploadFunc = func(_ context.Context, req domain.UploadRequest, progress driven.ProgressFunc) (*domain.Document, error) {
		mu.Lock()
		active++
		if active > 1 {
			t.Errorf("uploads overlapped")
		}
		order = append(order, req.File.Name)
		mu.Unlock()

		progress(50, 100)
		progress(100, 100)

		mu.Lock()
		active--
		mu.Unlock()
		return &domain.Document{ID: "doc-" + req.File.Name, FamilyID: req.FamilyID}, nil
	}
	notes := &recordingNotifier{}
	sink := &recordingSink{}
	svc := NewUploadService(api, nil, notes, UploadOptions{})

	var events []domain.UploadProgress
	summary, err := svc.Upload(context.Background(),
		batchOf(uploadFile("a.pdf", "application/pdf", 100), uploadFile("b.png", "image/png", 100)),
		sink, func(p domain.UploadProgress) { events = append(events, p) })

	require.NoError(t, err)
	assert.Equal(t, domain.UploadOutcomeFull, summary.Outcome())
	assert.Equal(t, []string{"a.pdf", "b.png"}, order)
	assert.Equal(t, []string{"doc-a.pdf", "doc-b.png"}, ids(sink.merged))

	// Every progress event of the first job precedes the second job.
	firstID := summary.Jobs[0].ID
	lastFirst, firstSecond := -1, len(events)
	for i, e := range events {
		if e.JobID == firstID {
			lastFirst = i
		} else if firstSecond == len(events) {
			firstSecond = i
		}
	}
	assert.Less(t, lastFirst, firstSecond)

	for _, job := range summary.Jobs {
		assert.Equal(t, domain.UploadComplete, job.Status)
		assert.InDelta(t, 100, job.Progress, 0.001)
	}
	assert.InDelta(t, 100, svc.Progress()[domain.OverallProgressKey], 0.001)

	require.Len(t, notes.all(), 1)
	assert.Equal(t, domain.NotifySuccess, notes.all()[0].Level)
	assert.Equal(t, "2 documents uploaded", notes.all()[0].Message)
}

func TestUploadService_UploadPartialFailure(t *testing.T) {
	api := &mockDocumentAPI{}
	api.uploadFunc = func(_ context.Context, req domain.UploadRequest, _ driven.ProgressFunc) (*domain.Document, error) {
		if req.File.Name == "a.pdf" {
			return nil, errors.New("Storage quota exceeded")
		}
		return &domain.Document{ID: "doc-b"}, nil
	}
	notes := &recordingNotifier{}
	sink := &recordingSink{}
	svc := NewUploadService(api, nil, notes, UploadOptions{ClearDelay: time.Millisecond})
	defer svc.Close()

	summary, err := svc.Upload(context.Background(),
		batchOf(uploadFile("a.pdf", "application/pdf", 10), uploadFile("b.pdf", "application/pdf", 10)),
		sink, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.UploadOutcomePartial, summary.Outcome())
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, domain.UploadError, summary.Jobs[0].Status)
	assert.Equal(t, "Storage quota exceeded", summary.Jobs[0].Error)
	assert.Equal(t, []string{"doc-b"}, ids(sink.merged))

	require.Len(t, notes.all(), 1)
	assert.Equal(t, domain.NotifyWarning, notes.all()[0].Level)
	assert.Equal(t, "1 of 2 documents uploaded", notes.all()[0].Message)

	// Jobs are kept after a partial batch.
	time.Sleep(10 * time.Millisecond)
	assert.Len(t, svc.Jobs(), 2)
}

func TestUploadService_UploadAllFail(t *testing.T) {
	api := &mockDocumentAPI{}
	api.uploadFunc = func(context.Context, domain.UploadRequest, driven.ProgressFunc) (*domain.Document, error) {
		return nil, errors.New("Family not found")
	}
	notes := &recordingNotifier{}
	sink := &recordingSink{}
	svc := NewUploadService(api, nil, notes, UploadOptions{})

	summary, err := svc.Upload(context.Background(), batchOf(uploadFile("a.pdf", "application/pdf", 10)), sink, nil)

	require.ErrorIs(t, err, domain.ErrUploadFailed)
	assert.Contains(t, err.Error(), "Family not found")
	assert.Equal(t, domain.UploadOutcomeNone, summary.Outcome())
	assert.Empty(t, sink.merged)
	assert.Empty(t, notes.all())
}

func TestUploadService_LateProgressKeepsFailedJob(t *testing.T) {
	api := &mockDocumentAPI{}
	var late driven.ProgressFunc
	api.uploadFunc = func(_ context.Context, _ domain.UploadRequest, progress driven.ProgressFunc) (*domain.Document, error) {
		progress(3, 10)
		late = progress
		return nil, errors.New("File too large")
	}
	svc := NewUploadService(api, nil, nil, UploadOptions{})

	var mu sync.Mutex
	var events []domain.UploadProgress
	_, err := svc.Upload(context.Background(), batchOf(uploadFile("a.pdf", "application/pdf", 10)), nil,
		func(p domain.UploadProgress) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, p)
		})
	require.ErrorIs(t, err, domain.ErrUploadFailed)
	require.NotNil(t, late)

	mu.Lock()
	emitted := len(events)
	mu.Unlock()
	overall := svc.Progress()[domain.OverallProgressKey]

	late(8, 10)

	jobs := svc.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.UploadError, jobs[0].Status)
	assert.Equal(t, "File too large", jobs[0].Error)
	assert.InDelta(t, 30.0, jobs[0].Progress, 0.001)
	assert.Equal(t, overall, svc.Progress()[domain.OverallProgressKey])

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, events, emitted)
}

func TestUploadService_InvalidFileSkipsNetwork(t *testing.T) {
	api := &mockDocumentAPI{}
	svc := NewUploadService(api, nil, nil, UploadOptions{})

	summary, err := svc.Upload(context.Background(), batchOf(
		uploadFile("script.sh", "application/x-sh", 10),
		uploadFile("ok.pdf", "application/pdf", 10),
	), nil, nil)

	require.NoError(t, err)
	require.Len(t, api.uploads, 1)
	assert.Equal(t, "ok.pdf", api.uploads[0].File.Name)
	assert.Equal(t, domain.UploadError, summary.Jobs[0].Status)
	assert.Contains(t, summary.Jobs[0].Error, "not an accepted file type")
}

func TestUploadService_OverallIsMeanOfTrackedValues(t *testing.T) {
	api := &mockDocumentAPI{}
	api.uploadFunc = func(_ context.Context, _ domain.UploadRequest, progress driven.ProgressFunc) (*domain.Document, error) {
		progress(50, 100)
		return &domain.Document{ID: "d"}, nil
	}
	svc := NewUploadService(api, nil, nil, UploadOptions{})

	var first domain.UploadProgress
	_, err := svc.Upload(context.Background(),
		batchOf(uploadFile("a.pdf", "application/pdf", 10), uploadFile("b.pdf", "application/pdf", 10)),
		nil, func(p domain.UploadProgress) {
			if p.Progress == 50 && first.JobID == "" {
				first = p
			}
		})
	require.NoError(t, err)

	// Tracked values at that point: a=50, b=0, overall=0.
	assert.InDelta(t, 50.0/3, first.Overall, 0.001)
}

func TestUploadService_ClearAfterFullSuccess(t *testing.T) {
	svc := NewUploadService(&mockDocumentAPI{}, nil, nil, UploadOptions{ClearDelay: 10 * time.Millisecond})
	defer svc.Close()

	_, err := svc.Upload(context.Background(), batchOf(uploadFile("a.pdf", "application/pdf", 10)), nil, nil)
	require.NoError(t, err)
	assert.Len(t, svc.Jobs(), 1)

	require.Eventually(t, func() bool { return len(svc.Jobs()) == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, map[string]float64{domain.OverallProgressKey: 0}, svc.Progress())
}

func TestUploadService_CloseStopsClearTimer(t *testing.T) {
	svc := NewUploadService(&mockDocumentAPI{}, nil, nil, UploadOptions{ClearDelay: 10 * time.Millisecond})

	_, err := svc.Upload(context.Background(), batchOf(uploadFile("a.pdf", "application/pdf", 10)), nil, nil)
	require.NoError(t, err)
	svc.Close()

	time.Sleep(30 * time.Millisecond)
	assert.Len(t, svc.Jobs(), 1)

	_, err = svc.Upload(context.Background(), batchOf(uploadFile("a.pdf", "application/pdf", 10)), nil, nil)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestUploadService_ClearJobs(t *testing.T) {
	svc := NewUploadService(&mockDocumentAPI{}, nil, nil, UploadOptions{})

	_, err := svc.Upload(context.Background(), batchOf(uploadFile("a.pdf", "application/pdf", 10)), nil, nil)
	require.NoError(t, err)

	svc.ClearJobs()
	assert.Empty(t, svc.Jobs())
	assert.Len(t, svc.Progress(), 1)
}

func TestUploadService_CanceledContextFailsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &mockDocumentAPI{}
	api.uploadFunc = func(_ context.Context, _ domain.UploadRequest, _ driven.ProgressFunc) (*domain.Document, error) {
		cancel()
		return &domain.Document{ID: "d1"}, nil
	}
	svc := NewUploadService(api, nil, nil, UploadOptions{})

	summary, err := svc.Upload(ctx,
		batchOf(uploadFile("a.pdf", "application/pdf", 10), uploadFile("b.pdf", "application/pdf", 10)), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, domain.UploadError, summary.Jobs[1].Status)
	assert.Len(t, api.uploads, 1)
}
