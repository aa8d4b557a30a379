package repository

import "errors"

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = errors.New("repository: job not found")

// ErrConflict names a conditional state transition that did not apply
// because the record's current status no longer matched the expected one
// (a concurrent writer beat us to it). The JobRepository transition methods
// report that case as (false, nil); none of them return ErrConflict.
var ErrConflict = errors.New("repository: conflicting transition")
