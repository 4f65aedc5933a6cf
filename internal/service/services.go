package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/membership-portal-api/internal/config"
	"github.com/membership-portal-api/internal/mailer"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/repository"
	"github.com/rs/zerolog"
)

// TxRunner executes a function inside one database transaction. Satisfied by
// database.DB; tests substitute an in-memory runner.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// TransitionService applies a single state transition to one record
type TransitionService interface {
	Transition(ctx context.Context, actor models.Actor, kind models.RecordKind, recordID string, req *models.TransitionRequest) (*models.ModeratedRecord, error)
}

// BulkService applies one transition to a set of records as one atomic unit
type BulkService interface {
	BulkTransition(ctx context.Context, actor models.Actor, kind models.RecordKind, req *models.BulkTransitionRequest) (int, error)
}

// NotificationService manages the durable in-portal notification feed
type NotificationService interface {
	ListFor(ctx context.Context, actor models.Actor, page, pageSize int) ([]*models.Notification, int, error)
	MarkRead(ctx context.Context, actor models.Actor, id string) error
}

// QueryService lists moderated records with role-based visibility applied
type QueryService interface {
	List(ctx context.Context, actor models.Actor, kind models.RecordKind, filter models.ListFilter, page, pageSize int) ([]*models.ModeratedRecord, int, error)
	PendingCounts(ctx context.Context) (map[models.RecordKind]int, error)
}

// ContentService creates records and applies content edits (which force
// approved and rejected listings back through moderation)
type ContentService interface {
	Create(ctx context.Context, actor models.Actor, kind models.RecordKind, req *models.CreateRecordRequest) (*models.ModeratedRecord, error)
	UpdateContent(ctx context.Context, actor models.Actor, kind models.RecordKind, recordID string, req *models.UpdateContentRequest) (*models.ModeratedRecord, error)
}

// Services holds all service interfaces
type Services struct {
	Transition   TransitionService
	Bulk         BulkService
	Notification NotificationService
	Query        QueryService
	Content      ContentService
}

// NewServices creates all services
func NewServices(db TxRunner, repos *repository.Repositories, broadcaster mailer.Broadcaster, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Transition:   newTransitionService(db, repos, broadcaster, log),
		Bulk:         newBulkService(db, repos, broadcaster, log),
		Notification: newNotificationService(repos.Notification, log),
		Query:        newQueryService(repos.Record, cfg, log),
		Content:      newContentService(db, repos.Record, log),
	}
}

// workflowError reports whether err already belongs to the workflow error
// taxonomy; anything else leaving a service is a storage failure.
func workflowError(err error) bool {
	return errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrForbidden) ||
		errors.Is(err, models.ErrIllegalTransition) ||
		errors.Is(err, models.ErrValidation)
}

// asStorageError passes taxonomy errors through untouched and wraps raw
// database errors so the transport layer never sees driver internals.
func asStorageError(op string, err error) error {
	if err == nil || workflowError(err) {
		return err
	}
	return &models.StorageError{Op: op, Err: err}
}
