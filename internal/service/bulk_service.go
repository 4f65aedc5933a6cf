package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/membership-portal-api/internal/mailer"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/repository"
	"github.com/membership-portal-api/internal/workflow"
	"github.com/rs/zerolog"
)

// bulkService is the concrete implementation of BulkService. A batch is
// strictly all-or-nothing: legality is checked for every record before any
// write, and the state updates and their notifications share one
// transaction. "count: N" in the response always means exactly N records
// changed state and their owners were notified.
type bulkService struct {
	db          TxRunner
	repos       *repository.Repositories
	broadcaster mailer.Broadcaster
	log         zerolog.Logger
}

func newBulkService(db TxRunner, repos *repository.Repositories, broadcaster mailer.Broadcaster, log zerolog.Logger) *bulkService {
	return &bulkService{
		db:          db,
		repos:       repos,
		broadcaster: broadcaster,
		log:         log.With().Str("service", "bulk").Logger(),
	}
}

// BulkTransition applies one transition to a set of records atomically
func (s *bulkService) BulkTransition(ctx context.Context, actor models.Actor, kind models.RecordKind, req *models.BulkTransitionRequest) (int, error) {
	if !actor.IsPrivileged() {
		return 0, fmt.Errorf("bulk transitions require admin: %w", models.ErrForbidden)
	}
	if !models.ValidKinds[kind] {
		return 0, &models.RequestError{Field: "kind", Message: fmt.Sprintf("unknown record kind %q", kind)}
	}
	if len(req.IDs) == 0 {
		return 0, &models.RequestError{Field: "ids", Message: "ids must not be empty"}
	}
	if !workflow.IsLegalState(kind, req.TargetState) {
		return 0, &models.RequestError{
			Field:   "target_state",
			Message: fmt.Sprintf("state %q is not in the %s vocabulary", req.TargetState, kind),
		}
	}

	ids := dedupe(req.IDs)
	if len(ids) == 0 {
		return 0, &models.RequestError{Field: "ids", Message: "ids must not be empty"}
	}

	var count int
	var published bool

	err := s.db.WithinTx(ctx, func(tx *sql.Tx) error {
		records, err := s.repos.Record.GetManyForUpdateTx(ctx, tx, kind, ids)
		if err != nil {
			return err
		}

		// Whole batch present, or nothing happens.
		if len(records) != len(ids) {
			missing := missingIDs(ids, records)
			return fmt.Errorf("%s records %v: %w", kind, missing, models.ErrNotFound)
		}

		// Whole batch legal, or nothing happens. A single ineligible record
		// fails the batch rather than silently shrinking it.
		var illegal []string
		var from models.State
		for _, rec := range records {
			if !workflow.IsTransitionLegal(kind, rec.State, req.TargetState) {
				illegal = append(illegal, rec.ID)
				from = rec.State
			}
		}
		if len(illegal) > 0 {
			return &models.IllegalTransitionError{Kind: kind, From: from, To: req.TargetState, RecordIDs: illegal}
		}

		// Records already in the target state stay untouched and owe no
		// notification.
		changing := records[:0]
		changingIDs := make([]string, 0, len(records))
		for _, rec := range records {
			if rec.State != req.TargetState {
				changing = append(changing, rec)
				changingIDs = append(changingIDs, rec.ID)
			}
		}
		if len(changing) == 0 {
			return nil
		}

		for _, rec := range changing {
			if announcementPublished(kind, rec.State, req.TargetState) {
				published = true
				break
			}
		}

		n, err := s.repos.Record.BulkUpdateStateTx(ctx, tx, kind, changingIDs, req.TargetState)
		if err != nil {
			return err
		}
		if n != len(changingIDs) {
			return fmt.Errorf("bulk update touched %d of %d locked rows", n, len(changingIDs))
		}
		count = n

		// One notification per distinct owning actor. Batched into the
		// same transaction: if this insert fails, the state changes above
		// roll back with it.
		notified := make(map[string]bool, len(changing))
		notifications := make([]*models.Notification, 0, len(changing))
		for _, rec := range changing {
			if notified[rec.OwnerID] {
				continue
			}
			if notif := transitionNotification(kind, rec, req.TargetState, req.Reason); notif != nil {
				notified[rec.OwnerID] = true
				notifications = append(notifications, notif)
			}
		}
		if _, err := s.repos.Notification.BatchInsertTx(ctx, tx, notifications); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, asStorageError("bulk transition", err)
	}

	s.log.Info().
		Str("kind", string(kind)).
		Str("state", string(req.TargetState)).
		Int("count", count).
		Str("actor", actor.ID).
		Msg("Bulk transition applied")

	if published {
		broadcastToMembers(s.repos.Record, s.broadcaster, s.log,
			"New announcements published",
			"New announcements have been published on the member portal.")
	}

	return count, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func missingIDs(ids []string, found []*models.ModeratedRecord) []string {
	present := make(map[string]bool, len(found))
	for _, rec := range found {
		present[rec.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
