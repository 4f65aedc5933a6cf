package repository

import (
	"context"
	"database/sql"

	"github.com/membership-portal-api/internal/database"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/workflow"
)

// RecordRepository defines data operations over the moderated record kinds.
// Methods with a Tx suffix participate in a caller-owned transaction; state
// is only ever written through those, inside database.DB.WithinTx.
type RecordRepository interface {
	Create(ctx context.Context, rec *models.ModeratedRecord) error
	GetByID(ctx context.Context, kind models.RecordKind, id string) (*models.ModeratedRecord, error)
	List(ctx context.Context, kind models.RecordKind, filter workflow.EffectiveFilter, limit, offset int) ([]*models.ModeratedRecord, error)
	CountFiltered(ctx context.Context, kind models.RecordKind, filter workflow.EffectiveFilter) (int, error)
	CountByState(ctx context.Context, kind models.RecordKind, state models.State) (int, error)

	GetForUpdateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, id string) (*models.ModeratedRecord, error)
	GetManyForUpdateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, ids []string) ([]*models.ModeratedRecord, error)
	UpdateStateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, id string, state models.State) error
	UpdateContentTx(ctx context.Context, tx *sql.Tx, rec *models.ModeratedRecord) error
	UpdatePriorityTx(ctx context.Context, tx *sql.Tx, id string, priority models.Priority) error
	BulkUpdateStateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, ids []string, state models.State) (int, error)

	ActiveMemberEmails(ctx context.Context) ([]string, error)
}

// NotificationRepository defines data operations for durable notifications
type NotificationRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, n *models.Notification) error
	BatchInsertTx(ctx context.Context, tx *sql.Tx, notifications []*models.Notification) (int, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListFor(ctx context.Context, recipientID string, limit, offset int) ([]*models.Notification, error)
	CountFor(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, id string) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Record       RecordRepository
	Notification NotificationRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Record:       NewRecordRepo(db),
		Notification: NewNotificationRepo(db),
	}
}
