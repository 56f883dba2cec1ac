package models

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientWords means no vocabulary matched the generation
	// criteria at all.
	ErrInsufficientWords = errors.New("insufficient matching words")

	// ErrValidation marks request payloads that fail validation. Handlers
	// map it to a 400 response.
	ErrValidation = errors.New("validation failed")

	// ErrJobNotClaimable means the job was no longer pending when a worker
	// tried to claim it.
	ErrJobNotClaimable = errors.New("job is not claimable")

	// ErrJobNotRunning means a terminal transition found the job outside the
	// running state, usually because the stale sweep requeued it.
	ErrJobNotRunning = errors.New("job is not running")

	// ErrCriteriaInUse means the criteria still has jobs referencing it and
	// cannot be deleted.
	ErrCriteriaInUse = errors.New("criteria is referenced by jobs")
)
