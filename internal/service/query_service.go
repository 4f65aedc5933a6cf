package service

import (
	"context"
	"fmt"

	"github.com/membership-portal-api/internal/config"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/repository"
	"github.com/membership-portal-api/internal/workflow"
	"github.com/rs/zerolog"
)

// queryService is the concrete implementation of QueryService. Every listing
// read passes through the visibility policy before it reaches storage; the
// reported total always reflects the post-role-filter population.
type queryService struct {
	records repository.RecordRepository
	cfg     *config.Config
	log     zerolog.Logger
}

func newQueryService(records repository.RecordRepository, cfg *config.Config, log zerolog.Logger) *queryService {
	return &queryService{
		records: records,
		cfg:     cfg,
		log:     log.With().Str("service", "query").Logger(),
	}
}

// List returns one page of records visible to the actor, newest first
func (s *queryService) List(ctx context.Context, actor models.Actor, kind models.RecordKind, filter models.ListFilter, page, pageSize int) ([]*models.ModeratedRecord, int, error) {
	if !models.ValidKinds[kind] {
		return nil, 0, &models.RequestError{Field: "kind", Message: fmt.Sprintf("unknown record kind %q", kind)}
	}
	if filter.State != "" && !workflow.IsLegalState(kind, filter.State) {
		return nil, 0, &models.RequestError{
			Field:   "status",
			Message: fmt.Sprintf("state %q is not in the %s vocabulary", filter.State, kind),
		}
	}

	page, pageSize = s.normalizePage(page, pageSize)

	effective := workflow.ApplyRoleFilter(actor.Role, kind, filter)
	if effective.DenyAll {
		return []*models.ModeratedRecord{}, 0, nil
	}

	offset := (page - 1) * pageSize

	items, err := s.records.List(ctx, kind, effective, pageSize, offset)
	if err != nil {
		// Reads are idempotent, retry once before surfacing the failure.
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("List query failed, retrying")
		items, err = s.records.List(ctx, kind, effective, pageSize, offset)
		if err != nil {
			return nil, 0, asStorageError("list records", err)
		}
	}

	total, err := s.records.CountFiltered(ctx, kind, effective)
	if err != nil {
		total, err = s.records.CountFiltered(ctx, kind, effective)
		if err != nil {
			return nil, 0, asStorageError("count records", err)
		}
	}

	return items, total, nil
}

// PendingCounts derives the moderation dashboard numbers on demand. Counts
// are computed from the store each call rather than cached, so they cannot
// drift from the actual queue.
func (s *queryService) PendingCounts(ctx context.Context) (map[models.RecordKind]int, error) {
	pendingState := map[models.RecordKind]models.State{
		models.KindBusiness:     models.StatePending,
		models.KindCareer:       models.StatePending,
		models.KindEvent:        models.StatePending,
		models.KindScholarship:  models.StatePending,
		models.KindAnnouncement: models.StatePending,
		models.KindHelpRequest:  models.StateOpen,
		models.KindMembership:   models.StatePending,
	}

	counts := make(map[models.RecordKind]int, len(pendingState))
	for kind, state := range pendingState {
		count, err := s.records.CountByState(ctx, kind, state)
		if err != nil {
			return nil, asStorageError("count pending", err)
		}
		counts[kind] = count
	}
	return counts, nil
}

func (s *queryService) normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.Paging.DefaultPageSize
	}
	if pageSize > s.cfg.Paging.MaxPageSize {
		pageSize = s.cfg.Paging.MaxPageSize
	}
	return page, pageSize
}
