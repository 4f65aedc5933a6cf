package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/membership-portal-api/internal/mailer"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/repository"
	"github.com/membership-portal-api/internal/workflow"
	"github.com/rs/zerolog"
)

// transitionService is the concrete implementation of TransitionService.
// Each call runs load, authorization, legality, the state write and its
// side effects inside one transaction under a row lock, so two concurrent
// transitions on the same record serialize.
type transitionService struct {
	db          TxRunner
	repos       *repository.Repositories
	broadcaster mailer.Broadcaster
	log         zerolog.Logger
}

func newTransitionService(db TxRunner, repos *repository.Repositories, broadcaster mailer.Broadcaster, log zerolog.Logger) *transitionService {
	return &transitionService{
		db:          db,
		repos:       repos,
		broadcaster: broadcaster,
		log:         log.With().Str("service", "transition").Logger(),
	}
}

// Transition applies a single state transition to one record
func (s *transitionService) Transition(ctx context.Context, actor models.Actor, kind models.RecordKind, recordID string, req *models.TransitionRequest) (*models.ModeratedRecord, error) {
	if !models.ValidKinds[kind] {
		return nil, &models.RequestError{Field: "kind", Message: fmt.Sprintf("unknown record kind %q", kind)}
	}
	if req.TargetState == "" && req.Priority == "" {
		return nil, &models.RequestError{Field: "target_state", Message: "target_state is required"}
	}
	if req.TargetState != "" && !workflow.IsLegalState(kind, req.TargetState) {
		return nil, &models.RequestError{
			Field:   "target_state",
			Message: fmt.Sprintf("state %q is not in the %s vocabulary", req.TargetState, kind),
		}
	}
	if req.Priority != "" {
		if kind != models.KindHelpRequest {
			return nil, &models.RequestError{Field: "priority", Message: "priority applies to help requests only"}
		}
		if !models.ValidPriorities[req.Priority] {
			return nil, &models.RequestError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", req.Priority)}
		}
	}

	var updated *models.ModeratedRecord
	var published bool

	err := s.db.WithinTx(ctx, func(tx *sql.Tx) error {
		rec, err := s.repos.Record.GetForUpdateTx(ctx, tx, kind, recordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%s %s: %w", kind, recordID, models.ErrNotFound)
		}

		// A priority-only request re-asserts the current state.
		target := req.TargetState
		if target == "" {
			target = rec.State
		}

		if err := authorizeTransition(actor, kind, rec, target, req.Priority); err != nil {
			return err
		}

		if !workflow.IsTransitionLegal(kind, rec.State, target) {
			return &models.IllegalTransitionError{Kind: kind, From: rec.State, To: target}
		}

		from := rec.State
		stateChanged := from != target
		priorityChanged := req.Priority != "" && req.Priority != rec.Priority

		// Re-asserting the current state is a successful no-op: no write,
		// no duplicate notification.
		if !stateChanged && !priorityChanged {
			updated = rec
			return nil
		}

		if stateChanged {
			if err := s.repos.Record.UpdateStateTx(ctx, tx, kind, recordID, target); err != nil {
				return err
			}
			rec.State = target
			if kind == models.KindHelpRequest {
				rec.IsResolved = models.ResolvedState(target)
			}
			if kind == models.KindMembership && target == models.StateActive {
				rec.Verified = true
				if rec.VerifiedAt == nil {
					now := time.Now().UTC()
					rec.VerifiedAt = &now
				}
			}

			// Membership decisions notify the applicant inside the same
			// transaction: the notification exists iff the state write
			// committed.
			if kind == models.KindMembership {
				if n := transitionNotification(kind, rec, target, req.Reason); n != nil {
					if err := s.repos.Notification.CreateTx(ctx, tx, n); err != nil {
						return err
					}
				}
			}

			published = announcementPublished(kind, from, target)
		}

		if priorityChanged {
			if err := s.repos.Record.UpdatePriorityTx(ctx, tx, recordID, req.Priority); err != nil {
				return err
			}
			rec.Priority = req.Priority
		}

		updated = rec
		return nil
	})
	if err != nil {
		return nil, asStorageError("transition", err)
	}

	s.log.Info().
		Str("kind", string(kind)).
		Str("record_id", recordID).
		Str("state", string(updated.State)).
		Str("actor", actor.ID).
		Msg("Transition applied")

	if published {
		broadcastToMembers(s.repos.Record, s.broadcaster, s.log,
			"New announcement published",
			"A new announcement has been published on the member portal.")
	}

	return updated, nil
}

// authorizeTransition enforces who may move a record. Admins may perform
// any legal transition. An owner may only close out their own help request
// (RESOLVED or CLOSED) and may never touch priority. Everything else is
// Forbidden.
func authorizeTransition(actor models.Actor, kind models.RecordKind, rec *models.ModeratedRecord, target models.State, priority models.Priority) error {
	if actor.IsPrivileged() {
		return nil
	}

	if kind == models.KindHelpRequest && actor.ID != "" && actor.ID == rec.OwnerID {
		if priority != "" {
			return fmt.Errorf("priority changes require admin: %w", models.ErrForbidden)
		}
		if target == models.StateResolved || target == models.StateClosed {
			return nil
		}
		return fmt.Errorf("owners may only resolve or close their help requests: %w", models.ErrForbidden)
	}

	return fmt.Errorf("actor %q may not transition %s records: %w", actor.ID, kind, models.ErrForbidden)
}
