package service

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/after-school-classes/internal/domain"
	"github.com/robertarktes/after-school-classes/internal/observability"
)

type LessonService struct {
	repo   LessonRepository
	audit  AuditLogger
	logger observability.Logger
}

func NewLessonService(repo LessonRepository, audit AuditLogger, logger observability.Logger) *LessonService {
	if audit == nil {
		audit = nopAudit{}
	}
	return &LessonService{repo: repo, audit: audit, logger: logger}
}

func (s *LessonService) ListAll(ctx context.Context) ([]domain.Lesson, error) {
	lessons, err := s.repo.ListLessons(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list lessons")
	}
	if lessons == nil {
		lessons = []domain.Lesson{}
	}
	return lessons, nil
}

// Search matches query as a literal, case-insensitive substring of the
// subject or the location.
func (s *LessonService) Search(ctx context.Context, query string) ([]domain.Lesson, error) {
	if query == "" {
		return nil, domain.ErrSearchQueryRequired
	}
	lessons, err := s.repo.SearchLessons(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "search lessons")
	}
	if lessons == nil {
		lessons = []domain.Lesson{}
	}
	return lessons, nil
}

// SetSpaces overwrites the seat count of a lesson with an absolute value.
func (s *LessonService) SetSpaces(ctx context.Context, rawID string, spaces float64) error {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return err
	}
	n, err := domain.ParseSpaces(spaces)
	if err != nil {
		return err
	}

	found, err := s.repo.SetSpaces(ctx, id, n)
	if err != nil {
		return errors.Wrap(err, "set spaces")
	}
	if !found {
		return domain.ErrLessonNotFound
	}

	if err := s.audit.LogSpacesUpdate(ctx, id, n); err != nil {
		s.logger.WithError(err).WithField("lesson_id", id.Hex()).Warn("failed to audit spaces update")
	}
	return nil
}
