// Package repository implements the orchestrator's Job Store access layer,
// adapted from the teacher's internal/repositories/job.go: conditional
// UPDATE statements (WHERE id=? AND status=?) give the atomic,
// torn-value-free transitions spec.md §5 requires.
package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	jobdb "github.com/rvhonorato/job-orchestrator/internal/orchestrator/db"
)

// JobRepository is the Job Store's access interface.
type JobRepository interface {
	Create(job *jobdb.Job) error
	GetByID(id uint) (*jobdb.Job, error)
	ListQueuedFIFO() ([]jobdb.Job, error)
	ListStaleProcessing() ([]jobdb.Job, error)
	CountInFlight(userID int, service string) (int64, error)
	TransitionToProcessing(id uint) (bool, error)
	TransitionToSubmitted(id uint, destID, destServiceURL string) (bool, error)
	MarkFailed(id uint, from jobdb.JobStatus, reason jobdb.FailReason) (bool, error)
	ListSubmittedOrUnknown() ([]jobdb.Job, error)
	TransitionToCompleted(id uint, from jobdb.JobStatus) (bool, error)
	TransitionToUnknown(id uint) (bool, error)
	ListForCleanup(olderThan time.Time) ([]jobdb.Job, error)
	MarkCleaned(id uint) error
}

type gormJobRepository struct {
	db *gorm.DB
}

// NewJobRepository returns a JobRepository backed by db.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &gormJobRepository{db: db}
}

func (r *gormJobRepository) Create(job *jobdb.Job) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("repository: creating job: %w", err)
	}
	return nil
}

func (r *gormJobRepository) GetByID(id uint) (*jobdb.Job, error) {
	var job jobdb.Job
	err := r.db.First(&job, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: fetching job %d: %w", id, err)
	}
	return &job, nil
}

func (r *gormJobRepository) ListQueuedFIFO() ([]jobdb.Job, error) {
	var jobs []jobdb.Job
	err := r.db.Where("status = ?", jobdb.JobQueued).Order("id ASC").Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("repository: listing queued jobs: %w", err)
	}
	return jobs, nil
}

// ListStaleProcessing returns every Processing job with no dest_id yet —
// i.e. one the Sender promoted but crashed before dispatching (or before
// recording the dispatch outcome). Without this, such a job is
// indistinguishable from a live in-flight job and is never retried
// (spec.md §4.2 Idempotence note).
func (r *gormJobRepository) ListStaleProcessing() ([]jobdb.Job, error) {
	var jobs []jobdb.Job
	err := r.db.Where("status = ? AND dest_id = ?", jobdb.JobProcessing, "").Order("id ASC").Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("repository: listing stale processing jobs: %w", err)
	}
	return jobs, nil
}

// CountInFlight counts jobs for (userID, service) whose status is in the
// quota-accounting set {Processing, Submitted, Unknown} (spec.md glossary).
func (r *gormJobRepository) CountInFlight(userID int, service string) (int64, error) {
	var count int64
	err := r.db.Model(&jobdb.Job{}).
		Where("user_id = ? AND service = ? AND status IN ?", userID, service,
			[]jobdb.JobStatus{jobdb.JobProcessing, jobdb.JobSubmitted, jobdb.JobUnknown}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("repository: counting in-flight jobs: %w", err)
	}
	return count, nil
}

// transition performs a conditional UPDATE and reports whether it applied.
func (r *gormJobRepository) transition(id uint, from jobdb.JobStatus, updates map[string]interface{}) (bool, error) {
	res := r.db.Model(&jobdb.Job{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("repository: transitioning job %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormJobRepository) TransitionToProcessing(id uint) (bool, error) {
	return r.transition(id, jobdb.JobQueued, map[string]interface{}{"status": jobdb.JobProcessing})
}

func (r *gormJobRepository) TransitionToSubmitted(id uint, destID, destServiceURL string) (bool, error) {
	return r.transition(id, jobdb.JobProcessing, map[string]interface{}{
		"status":           jobdb.JobSubmitted,
		"dest_id":          destID,
		"dest_service_url": destServiceURL,
	})
}

// MarkFailed transitions id from any of {Processing, Submitted, Unknown} to
// Failed, recording reason for the /download status-code ABI disambiguation.
func (r *gormJobRepository) MarkFailed(id uint, from jobdb.JobStatus, reason jobdb.FailReason) (bool, error) {
	return r.transition(id, from, map[string]interface{}{
		"status":      jobdb.JobFailed,
		"fail_reason": reason,
	})
}

func (r *gormJobRepository) ListSubmittedOrUnknown() ([]jobdb.Job, error) {
	var jobs []jobdb.Job
	err := r.db.Where("status IN ? AND dest_id <> ''", []jobdb.JobStatus{jobdb.JobSubmitted, jobdb.JobUnknown}).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("repository: listing submitted/unknown jobs: %w", err)
	}
	return jobs, nil
}

func (r *gormJobRepository) TransitionToCompleted(id uint, from jobdb.JobStatus) (bool, error) {
	return r.transition(id, from, map[string]interface{}{"status": jobdb.JobCompleted})
}

// TransitionToUnknown moves a Submitted job to Unknown (idempotent no-op if
// already Unknown, handled by the caller checking current status first).
func (r *gormJobRepository) TransitionToUnknown(id uint) (bool, error) {
	return r.transition(id, jobdb.JobSubmitted, map[string]interface{}{"status": jobdb.JobUnknown})
}

// ListForCleanup returns every job not already Cleaned whose created_at is
// at or before olderThan — the Cleaner operates on all statuses, including
// in-progress ones (spec.md §4.4).
func (r *gormJobRepository) ListForCleanup(olderThan time.Time) ([]jobdb.Job, error) {
	var jobs []jobdb.Job
	err := r.db.Where("status <> ? AND created_at <= ?", jobdb.JobCleaned, olderThan).Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("repository: listing jobs for cleanup: %w", err)
	}
	return jobs, nil
}

func (r *gormJobRepository) MarkCleaned(id uint) error {
	err := r.db.Model(&jobdb.Job{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status": jobdb.JobCleaned,
		"loc":    "",
	}).Error
	if err != nil {
		return fmt.Errorf("repository: marking job %d cleaned: %w", id, err)
	}
	return nil
}
