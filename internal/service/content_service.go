package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/repository"
	"github.com/membership-portal-api/internal/workflow"
	"github.com/rs/zerolog"
)

// contentService is the concrete implementation of ContentService. It owns
// the two non-transition writes the workflow allows: record creation (with
// the privileged initial-state bypass) and content edits, which push an
// already-moderated listing back to PENDING.
type contentService struct {
	db      TxRunner
	records repository.RecordRepository
	log     zerolog.Logger
}

func newContentService(db TxRunner, records repository.RecordRepository, log zerolog.Logger) *contentService {
	return &contentService{
		db:      db,
		records: records,
		log:     log.With().Str("service", "content").Logger(),
	}
}

// Create inserts a new record in its kind's initial state
func (s *contentService) Create(ctx context.Context, actor models.Actor, kind models.RecordKind, req *models.CreateRecordRequest) (*models.ModeratedRecord, error) {
	if !models.ValidKinds[kind] {
		return nil, &models.RequestError{Field: "kind", Message: fmt.Sprintf("unknown record kind %q", kind)}
	}
	if actor.ID == "" {
		return nil, fmt.Errorf("record creation requires an authenticated actor: %w", models.ErrForbidden)
	}

	ownerID := actor.ID
	if req.OwnerID != "" && req.OwnerID != actor.ID {
		// Creating on behalf of someone else is an admin path.
		if !actor.IsPrivileged() {
			return nil, fmt.Errorf("only admins may create records for another owner: %w", models.ErrForbidden)
		}
		ownerID = req.OwnerID
	}

	now := time.Now()
	rec := &models.ModeratedRecord{
		ID:        uuid.New().String(),
		Kind:      kind,
		State:     workflow.InitialState(kind, actor.IsPrivileged()),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
		Payload:   req.Payload,
	}

	switch {
	case kind.IsListingKind():
		rec.PublishAt = req.PublishAt
		if rec.PublishAt == nil {
			// Publish window opens at creation unless deferred.
			rec.PublishAt = &now
		}
		rec.ExpireAt = req.ExpireAt
		if rec.ExpireAt != nil && !rec.ExpireAt.After(*rec.PublishAt) {
			return nil, &models.RequestError{Field: "expire_at", Message: "expire_at must be after publish_at"}
		}

	case kind == models.KindHelpRequest:
		rec.Priority = req.Priority
		if rec.Priority == "" {
			rec.Priority = workflow.InitialPriority()
		} else if !models.ValidPriorities[rec.Priority] {
			return nil, &models.RequestError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", rec.Priority)}
		}
		if req.Category == "" {
			return nil, &models.RequestError{Field: "category", Message: "category is required for help requests"}
		}
		rec.Category = req.Category
		rec.IsResolved = false

	case kind == models.KindMembership:
		rec.Email = req.Email
		if rec.State == models.StateActive {
			// Privileged bypass creates the account already verified.
			rec.Verified = true
			rec.VerifiedAt = &now
		}
	}

	if err := s.records.Create(ctx, rec); err != nil {
		return nil, asStorageError("create record", err)
	}

	s.log.Info().
		Str("kind", string(kind)).
		Str("record_id", rec.ID).
		Str("state", string(rec.State)).
		Str("owner", ownerID).
		Msg("Record created")

	return rec, nil
}

// UpdateContent replaces a record's payload. Editing an APPROVED or REJECTED
// listing resets it to PENDING so it goes through review again.
func (s *contentService) UpdateContent(ctx context.Context, actor models.Actor, kind models.RecordKind, recordID string, req *models.UpdateContentRequest) (*models.ModeratedRecord, error) {
	if !models.ValidKinds[kind] {
		return nil, &models.RequestError{Field: "kind", Message: fmt.Sprintf("unknown record kind %q", kind)}
	}
	if req.Payload == nil {
		return nil, &models.RequestError{Field: "payload", Message: "payload is required"}
	}

	var updated *models.ModeratedRecord

	err := s.db.WithinTx(ctx, func(tx *sql.Tx) error {
		rec, err := s.records.GetForUpdateTx(ctx, tx, kind, recordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%s %s: %w", kind, recordID, models.ErrNotFound)
		}

		if !actor.IsPrivileged() && actor.ID != rec.OwnerID {
			return fmt.Errorf("only the owner or an admin may edit a record: %w", models.ErrForbidden)
		}

		rec.Payload = req.Payload
		if kind.IsListingKind() {
			if req.PublishAt != nil {
				rec.PublishAt = req.PublishAt
			}
			if req.ExpireAt != nil {
				rec.ExpireAt = req.ExpireAt
			}
			// Edited content has not been reviewed. Approved and rejected
			// listings alike return to the moderation queue.
			if rec.State == models.StateApproved || rec.State == models.StateRejected {
				rec.State = models.StatePending
			}
		}

		if err := s.records.UpdateContentTx(ctx, tx, rec); err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, asStorageError("update content", err)
	}

	s.log.Info().
		Str("kind", string(kind)).
		Str("record_id", recordID).
		Str("state", string(updated.State)).
		Msg("Record content updated")

	return updated, nil
}
