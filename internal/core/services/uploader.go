package services

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
	"github.com/profyt7/carelinkai-sub003/internal/logger"
)

// Ensure UploadService implements the interface.
var _ driving.Uploader = (*UploadService)(nil)

// UploadOptions tunes an UploadService.
type UploadOptions struct {
	// ClearDelay is how long jobs stay tracked after a fully successful
	// batch. Zero keeps them until ClearJobs.
	ClearDelay time.Duration

	// NewJobID generates job ids. Defaults to a process-local counter.
	NewJobID func() string
}

// UploadService uploads batches one file at a time and tracks per-file
// progress plus an overall figure.
type UploadService struct {
	api      driven.DocumentAPI
	files    driven.FileSource
	notifier driven.Notifier

	clearDelay time.Duration
	newJobID   func() string

	mu         sync.Mutex
	jobs       []domain.UploadJob
	progress   map[string]float64
	clearTimer *time.Timer
	closed     bool
}

// NewUploadService creates a new upload service. files and notifier may be nil.
func NewUploadService(
	api driven.DocumentAPI,
	files driven.FileSource,
	notifier driven.Notifier,
	opts UploadOptions,
) *UploadService {
	if opts.NewJobID == nil {
		var n atomic.Uint64
		opts.NewJobID = func() string {
			return "job-" + strconv.FormatUint(n.Add(1), 10)
		}
	}
	return &UploadService{
		api:        api,
		files:      files,
		notifier:   notifier,
		clearDelay: opts.ClearDelay,
		newJobID:   opts.NewJobID,
		progress:   map[string]float64{domain.OverallProgressKey: 0},
	}
}

// Intake resolves paths and validates each file. Paths given twice are
// taken once.
func (s *UploadService) Intake(paths []string) ([]domain.UploadFile, []domain.FileRejection) {
	var (
		accepted   []domain.UploadFile
		rejections []domain.FileRejection
		seen       = make(map[string]struct{}, len(paths))
	)

	for _, path := range paths {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		if s.files == nil {
			rejections = append(rejections, domain.FileRejection{FileName: path, Err: domain.ErrNotConfigured})
			continue
		}
		file, err := s.files.Stat(path)
		if err != nil {
			rejections = append(rejections, domain.FileRejection{FileName: path, Err: err})
			continue
		}
		if err := domain.ValidateFile(file); err != nil {
			rejections = append(rejections, domain.FileRejection{FileName: file.Name, Err: err})
			continue
		}
		accepted = append(accepted, file)
	}

	logger.Debug("Intake accepted %d of %d files", len(accepted), len(paths))
	return accepted, rejections
}

// Upload sends every file of the batch in order. A failed file does not
// stop the queue. Successful documents are merged into sink at the end and
// one summary notification is emitted. When nothing succeeds the summary is
// returned with an ErrUploadFailed error carrying the first failure.
func (s *UploadService) Upload(
	ctx context.Context,
	batch domain.UploadBatch,
	sink driving.DocumentSink,
	onProgress func(domain.UploadProgress),
) (*domain.UploadSummary, error) {
	if err := domain.ValidateBatch(&batch); err != nil {
		return nil, err
	}

	jobIDs, err := s.startBatch(batch.Files)
	if err != nil {
		return nil, err
	}
	emit := func(p domain.UploadProgress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	logger.Section("Upload")
	summary := &domain.UploadSummary{Total: len(batch.Files)}
	var firstErr error

	for i, file := range batch.Files {
		jobID := jobIDs[i]

		if err := ctx.Err(); err != nil {
			emit(s.fail(jobID, fmt.Errorf("%w: %w", domain.ErrCanceled, err)))
			firstErr = firstNonNil(firstErr, err)
			continue
		}
		if err := domain.ValidateFile(file); err != nil {
			emit(s.fail(jobID, err))
			firstErr = firstNonNil(firstErr, err)
			continue
		}

		if p, ok := s.set(jobID, domain.UploadUploading, 0); ok {
			emit(p)
		}
		logger.Info("Uploading %s (%d bytes)", file.Name, file.Size)

		doc, err := s.api.Upload(ctx, domain.UploadRequest{
			FamilyID:    batch.FamilyID,
			Title:       batch.Title,
			Description: batch.Description,
			Type:        batch.Type,
			IsEncrypted: batch.IsEncrypted,
			Tags:        batch.Tags,
			File:        file,
		}, func(sent, total int64) {
			if p, ok := s.set(jobID, domain.UploadUploading, percent(sent, total)); ok {
				emit(p)
			}
		})
		if err != nil {
			logger.Warn("Upload of %s failed: %v", file.Name, err)
			emit(s.fail(jobID, err))
			firstErr = firstNonNil(firstErr, err)
			continue
		}

		emit(s.complete(jobID, doc.ID))
		summary.Documents = append(summary.Documents, *doc)
	}

	s.mu.Lock()
	s.progress[domain.OverallProgressKey] = 100
	summary.Jobs = slices.Clone(s.jobs)
	s.mu.Unlock()

	summary.Succeeded = len(summary.Documents)
	summary.Failed = summary.Total - summary.Succeeded

	if sink != nil && summary.Succeeded > 0 {
		sink.MergeDocuments(summary.Documents)
	}

	switch summary.Outcome() {
	case domain.UploadOutcomeFull:
		s.notify(domain.NotifySuccess, fmt.Sprintf("%d %s uploaded", summary.Total, plural(summary.Total)))
		s.scheduleClear()
	case domain.UploadOutcomePartial:
		s.notify(domain.NotifyWarning,
			fmt.Sprintf("%d of %d %s uploaded", summary.Succeeded, summary.Total, plural(summary.Total)))
	default:
		return summary, fmt.Errorf("%w: %w", domain.ErrUploadFailed, firstErr)
	}
	return summary, nil
}

// Jobs returns the tracked jobs in submission order.
func (s *UploadService) Jobs() []domain.UploadJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.jobs)
}

// Progress returns a copy of the progress map.
func (s *UploadService) Progress() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.progress)
}

// ClearJobs forgets every job and resets the overall figure.
func (s *UploadService) ClearJobs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.resetLocked()
}

// Close stops a pending clear timer.
func (s *UploadService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimerLocked()
}

// startBatch replaces any previous jobs with pending jobs for files.
func (s *UploadService) startBatch(files []domain.UploadFile) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrSessionClosed
	}
	s.stopTimerLocked()
	s.resetLocked()

	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = s.newJobID()
		s.jobs = append(s.jobs, domain.UploadJob{
			ID:       ids[i],
			FileName: f.Name,
			Status:   domain.UploadPending,
		})
		s.progress[ids[i]] = 0
	}
	return ids, nil
}

// set moves a job that has not finished yet. Once a job is terminal it
// reports false and leaves the job and the overall figure untouched.
func (s *UploadService) set(jobID string, status domain.UploadStatus, pct float64) (domain.UploadProgress, bool) {
	return s.update(jobID, func(j *domain.UploadJob) bool {
		if j.Status.IsTerminal() {
			return false
		}
		j.Status = status
		j.Progress = pct
		return true
	})
}

func (s *UploadService) complete(jobID, documentID string) domain.UploadProgress {
	p, _ := s.update(jobID, func(j *domain.UploadJob) bool {
		j.Status = domain.UploadComplete
		j.Progress = 100
		j.DocumentID = documentID
		return true
	})
	return p
}

func (s *UploadService) fail(jobID string, err error) domain.UploadProgress {
	p, _ := s.update(jobID, func(j *domain.UploadJob) bool {
		j.Status = domain.UploadError
		j.Error = err.Error()
		return true
	})
	return p
}

// update mutates one job, mirrors its progress into the map and recomputes
// the overall figure as the mean of every tracked value. Nothing changes
// when fn returns false.
func (s *UploadService) update(jobID string, fn func(*domain.UploadJob) bool) (domain.UploadProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.jobs, func(j domain.UploadJob) bool { return j.ID == jobID })
	if idx < 0 {
		return domain.UploadProgress{JobID: jobID}, false
	}
	job := &s.jobs[idx]
	if !fn(job) {
		return domain.UploadProgress{
			JobID:    jobID,
			Status:   job.Status,
			Progress: job.Progress,
			Overall:  s.progress[domain.OverallProgressKey],
		}, false
	}
	s.progress[jobID] = job.Progress

	var sum float64
	for _, v := range s.progress {
		sum += v
	}
	overall := sum / float64(len(s.progress))
	s.progress[domain.OverallProgressKey] = overall

	return domain.UploadProgress{
		JobID:    jobID,
		Status:   job.Status,
		Progress: job.Progress,
		Overall:  overall,
	}, true
}

func (s *UploadService) scheduleClear() {
	if s.clearDelay <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopTimerLocked()

	var timer *time.Timer
	timer = time.AfterFunc(s.clearDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A newer batch owns the jobs now.
		if s.clearTimer != timer {
			return
		}
		s.clearTimer = nil
		s.resetLocked()
	})
	s.clearTimer = timer
}

func (s *UploadService) stopTimerLocked() {
	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
}

func (s *UploadService) resetLocked() {
	s.jobs = nil
	s.progress = map[string]float64{domain.OverallProgressKey: 0}
}

func (s *UploadService) notify(level domain.NotificationLevel, msg string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(domain.Notification{Level: level, Message: msg})
}

func percent(sent, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return min(100, float64(sent)*100/float64(total))
}

func plural(n int) string {
	if n == 1 {
		return "document"
	}
	return "documents"
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
