package domain

import "github.com/cockroachdb/errors"

// Error classes. Specific errors below are marked with one of these so callers
// can branch on errors.Is(err, ErrInvalidInput) and friends.
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingParameter   = errors.New("missing parameter")
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("unavailable")
)

var (
	ErrInvalidOrder        = errors.Mark(errors.New("invalid order payload"), ErrInvalidInput)
	ErrInvalidLessonID     = errors.Mark(errors.New("invalid lesson id format"), ErrInvalidInput)
	ErrInvalidSpaces       = errors.Mark(errors.New("invalid spaces value"), ErrInvalidInput)
	ErrSearchQueryRequired = errors.Mark(errors.New("search query is required"), ErrMissingParameter)
	ErrLessonsNotFound     = errors.Mark(errors.New("one or more lessons not found"), ErrNotFound)
	ErrLessonNotFound      = errors.Mark(errors.New("lesson not found"), ErrNotFound)
	ErrFullyBooked         = errors.Mark(errors.New("one or more lessons are fully booked"), ErrUnavailable)
)
