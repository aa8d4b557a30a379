package db

import "time"

// JobStatus is the Job state machine named in spec.md §3.1/§4.8.
type JobStatus string

const (
	JobQueued     JobStatus = "Queued"
	JobProcessing JobStatus = "Processing"
	JobSubmitted  JobStatus = "Submitted"
	JobCompleted  JobStatus = "Completed"
	JobFailed     JobStatus = "Failed"
	JobUnknown    JobStatus = "Unknown"
	JobCleaned    JobStatus = "Cleaned"
)

// FailReason disambiguates the two HTTP codes a Failed job can map to
// (SPEC_FULL.md §3, added because spec.md's Job table has no field for it).
type FailReason string

const (
	FailReasonBadInput FailReason = "bad_input"
	FailReasonExec     FailReason = "exec"
)

// Job is the orchestrator's durable record of one user submission
// (spec.md §3.1). Unlike the teacher's UUIDv7 base model, Job.id is a
// plain auto-increment uint: spec.md requires "Monotonic integer, assigned
// at creation".
type Job struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	UserID         int        `gorm:"index:idx_job_quota"`
	Service        string     `gorm:"index:idx_job_quota"`
	Status         JobStatus  `gorm:"index"`
	FailReason     FailReason
	Loc            string
	DestID         string
	DestServiceURL string
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

func (Job) TableName() string { return "jobs" }
