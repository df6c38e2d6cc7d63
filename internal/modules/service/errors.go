package service

import "errors"

// Service layer errors. Handlers map these onto HTTP statuses; in
// particular ErrProjectNotFound is what the public read path returns for
// both unknown and non-public projects, so existence never leaks.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrGoalNotFound    = errors.New("goal not found")
	ErrSlugTaken       = errors.New("slug already taken")
	ErrInvalidMetric   = errors.New("invalid metric type")
)
