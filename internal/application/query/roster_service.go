package query

import (
	"context"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER SERVICE
// Классифицирует студентов программы, по возможности через кеш.
// Кеш только ускоряет: при любой ошибке результат пересчитывается.
// ══════════════════════════════════════════════════════════════════════════════

// RosterService classifies a program's students, memoizing through an
// optional RosterCache.
type RosterService struct {
	classifier *enrollment.Classifier
	cache      enrollment.RosterCache
	log        *logger.Logger
}

// NewRosterService creates the service. cache may be nil.
func NewRosterService(classifier *enrollment.Classifier, cache enrollment.RosterCache, log *logger.Logger) *RosterService {
	if log == nil {
		log = logger.Nop()
	}
	return &RosterService{
		classifier: classifier,
		cache:      cache,
		log:        log.With(logger.Component("roster")),
	}
}

// Classifier returns the classifier in use.
func (s *RosterService) Classifier() *enrollment.Classifier {
	return s.classifier
}

// Classify returns one entry per student, in roster order. The second result
// reports whether the entries came from the cache.
func (s *RosterService) Classify(
	ctx context.Context,
	snap *enrollment.Snapshot,
	school, program string,
	rec enrollment.ProgramRecord,
) ([]enrollment.ClassifiedStudent, bool) {
	key := enrollment.RosterKey{
		Fingerprint: snap.Fingerprint,
		School:      school,
		Program:     program,
		CurrentYear: s.classifier.CurrentYear(),
		Rules:       s.classifier.RulesFor(school).Name(),
	}

	if s.cache != nil && key.Fingerprint != "" {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.log.Warn("roster cache read failed", logger.School(school), logger.Program(program), logger.Err(err))
		case ok && len(cached) == len(rec.Students):
			return cached, true
		}
	}

	out := make([]enrollment.ClassifiedStudent, len(rec.Students))
	for i, st := range rec.Students {
		out[i] = enrollment.ClassifiedStudent{StudentID: st.ID}
		if c, ok := s.classifier.Classify(st, school, program); ok {
			out[i].Classification = &c
		}
	}

	if s.cache != nil && key.Fingerprint != "" {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.log.Warn("roster cache write failed", logger.School(school), logger.Program(program), logger.Err(err))
		}
	}
	return out, false
}
