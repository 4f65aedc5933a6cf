package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/membership-portal-api/internal/database"
	"github.com/membership-portal-api/internal/models"
)

// notificationRepo is the concrete implementation of NotificationRepository
type notificationRepo struct {
	db *database.DB
}

// NewNotificationRepo creates a new notification repository
func NewNotificationRepo(db *database.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

// CreateTx inserts a single notification inside the caller's transaction,
// so it commits or rolls back together with the state change it accompanies.
func (r *notificationRepo) CreateTx(ctx context.Context, tx *sql.Tx, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, title, message, category, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		n.ID, n.RecipientID, n.Title, n.Message, n.Category, n.IsRead, n.CreatedAt,
	)
	return err
}

// BatchInsertTx inserts a batch of notifications using PostgreSQL COPY
// within the caller's transaction. Any failure aborts the whole batch and,
// with it, the enclosing bulk transition.
func (r *notificationRepo) BatchInsertTx(ctx context.Context, tx *sql.Tx, notifications []*models.Notification) (int, error) {
	if len(notifications) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("notifications",
		"id", "recipient_id", "title", "message", "category", "is_read", "created_at",
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, n := range notifications {
		if _, err := stmt.ExecContext(ctx,
			n.ID, n.RecipientID, n.Title, n.Message, n.Category, n.IsRead, n.CreatedAt,
		); err != nil {
			return 0, err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, err
	}

	return len(notifications), nil
}

// GetByID retrieves a notification by ID, nil if absent
func (r *notificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	query := `
		SELECT id, recipient_id, title, message, category, is_read, created_at
		FROM notifications WHERE id = $1
	`

	var n models.Notification
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Category, &n.IsRead, &n.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListFor returns a recipient's notifications, newest first
func (r *notificationRepo) ListFor(ctx context.Context, recipientID string, limit, offset int) ([]*models.Notification, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("id", "recipient_id", "title", "message", "category", "is_read", "created_at").
		From("notifications").
		Where(sq.Eq{"recipient_id": recipientID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0, limit)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Category, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// CountFor returns the total number of notifications for a recipient
func (r *notificationRepo) CountFor(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = $1", recipientID,
	).Scan(&count)
	return count, err
}

// MarkRead flips the read flag; the only mutation a notification ever sees
func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE notifications SET is_read = TRUE WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
