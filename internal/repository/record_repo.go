package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/membership-portal-api/internal/database"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/workflow"
)

// tableSpec maps a record kind onto its table and the kind-specific columns
// it carries beyond the common moderation projection.
type tableSpec struct {
	name            string
	hasWindow       bool // publish_at / expire_at
	hasHelpDesk     bool // priority / category / is_resolved
	hasVerification bool // verified / verified_at / email
}

var recordTables = map[models.RecordKind]tableSpec{
	models.KindBusiness:     {name: "business_listings", hasWindow: true},
	models.KindCareer:       {name: "career_listings", hasWindow: true},
	models.KindEvent:        {name: "events", hasWindow: true},
	models.KindScholarship:  {name: "scholarships", hasWindow: true},
	models.KindAnnouncement: {name: "announcements", hasWindow: true},
	models.KindHelpRequest:  {name: "help_requests", hasHelpDesk: true},
	models.KindMembership:   {name: "members", hasVerification: true},
}

// recordRepo is the concrete implementation of RecordRepository. One
// implementation serves every kind; the tableSpec decides which columns
// participate.
type recordRepo struct {
	db *database.DB
}

// NewRecordRepo creates a new record repository
func NewRecordRepo(db *database.DB) RecordRepository {
	return &recordRepo{db: db}
}

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// columns returns the select list for a kind, common projection first.
func columns(spec tableSpec) []string {
	cols := []string{"id", "state", "owner_id", "payload", "created_at", "updated_at"}
	if spec.hasWindow {
		cols = append(cols, "publish_at", "expire_at")
	}
	if spec.hasHelpDesk {
		cols = append(cols, "priority", "category", "is_resolved")
	}
	if spec.hasVerification {
		cols = append(cols, "verified", "verified_at", "email")
	}
	return cols
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans one row in the order produced by columns().
func scanRecord(kind models.RecordKind, spec tableSpec, row rowScanner) (*models.ModeratedRecord, error) {
	rec := &models.ModeratedRecord{Kind: kind}

	var payload []byte
	var publishAt, expireAt, verifiedAt sql.NullTime
	var priority, category, email sql.NullString
	var isResolved, verified sql.NullBool

	dests := []interface{}{&rec.ID, &rec.State, &rec.OwnerID, &payload, &rec.CreatedAt, &rec.UpdatedAt}
	if spec.hasWindow {
		dests = append(dests, &publishAt, &expireAt)
	}
	if spec.hasHelpDesk {
		dests = append(dests, &priority, &category, &isResolved)
	}
	if spec.hasVerification {
		dests = append(dests, &verified, &verifiedAt, &email)
	}

	if err := row.Scan(dests...); err != nil {
		return nil, err
	}

	rec.Payload = payload
	if publishAt.Valid {
		rec.PublishAt = &publishAt.Time
	}
	if expireAt.Valid {
		rec.ExpireAt = &expireAt.Time
	}
	if priority.Valid {
		rec.Priority = models.Priority(priority.String)
	}
	if category.Valid {
		rec.Category = category.String
	}
	if isResolved.Valid {
		rec.IsResolved = isResolved.Bool
	}
	if verified.Valid {
		rec.Verified = verified.Bool
	}
	if verifiedAt.Valid {
		rec.VerifiedAt = &verifiedAt.Time
	}
	if email.Valid {
		rec.Email = email.String
	}

	return rec, nil
}

// Create inserts a new record into its kind's table
func (r *recordRepo) Create(ctx context.Context, rec *models.ModeratedRecord) error {
	spec := recordTables[rec.Kind]
	now := time.Now()

	payload := rec.Payload
	if payload == nil {
		payload = []byte("{}")
	}

	cols := []string{"id", "state", "owner_id", "payload", "created_at", "updated_at"}
	vals := []interface{}{rec.ID, rec.State, rec.OwnerID, []byte(payload), rec.CreatedAt, now}
	if spec.hasWindow {
		cols = append(cols, "publish_at", "expire_at")
		vals = append(vals, rec.PublishAt, rec.ExpireAt)
	}
	if spec.hasHelpDesk {
		cols = append(cols, "priority", "category", "is_resolved")
		vals = append(vals, rec.Priority, rec.Category, models.ResolvedState(rec.State))
	}
	if spec.hasVerification {
		cols = append(cols, "verified", "verified_at", "email")
		vals = append(vals, rec.Verified, rec.VerifiedAt, rec.Email)
	}

	query, args, err := builder().Insert(spec.name).Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a record by ID, nil if absent
func (r *recordRepo) GetByID(ctx context.Context, kind models.RecordKind, id string) (*models.ModeratedRecord, error) {
	spec := recordTables[kind]
	query, args, err := builder().Select(columns(spec)...).From(spec.name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	rec, err := scanRecord(kind, spec, r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// applyFilter adds the effective filter's conditions to a select builder.
func applyFilter(b sq.SelectBuilder, spec tableSpec, filter workflow.EffectiveFilter) sq.SelectBuilder {
	if filter.State != "" {
		b = b.Where(sq.Eq{"state": filter.State})
	}
	if filter.OwnerID != "" {
		b = b.Where(sq.Eq{"owner_id": filter.OwnerID})
	}
	if spec.hasHelpDesk {
		if filter.Category != "" {
			b = b.Where(sq.Eq{"category": filter.Category})
		}
		if filter.Priority != "" {
			b = b.Where(sq.Eq{"priority": filter.Priority})
		}
	}
	if filter.PublicWindowOnly && spec.hasWindow {
		b = b.Where("(publish_at IS NULL OR publish_at <= now())").
			Where("(expire_at IS NULL OR expire_at > now())")
	}
	return b
}

// List returns a page of records matching the effective filter, newest first
func (r *recordRepo) List(ctx context.Context, kind models.RecordKind, filter workflow.EffectiveFilter, limit, offset int) ([]*models.ModeratedRecord, error) {
	spec := recordTables[kind]
	b := applyFilter(builder().Select(columns(spec)...).From(spec.name), spec, filter).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.ModeratedRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(kind, spec, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountFiltered counts the post-role-filter population, so pagination
// metadata never implies records the caller cannot see.
func (r *recordRepo) CountFiltered(ctx context.Context, kind models.RecordKind, filter workflow.EffectiveFilter) (int, error) {
	spec := recordTables[kind]
	query, args, err := applyFilter(builder().Select("COUNT(*)").From(spec.name), spec, filter).ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// CountByState returns the number of records of a kind in a given state
func (r *recordRepo) CountByState(ctx context.Context, kind models.RecordKind, state models.State) (int, error) {
	spec := recordTables[kind]
	query, args, err := builder().Select("COUNT(*)").From(spec.name).Where(sq.Eq{"state": state}).ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// UpdateContentTx stores the opaque payload and publish window, together
// with whatever state the service decided (content edits reset listings to
// PENDING for re-approval). Runs in the caller's transaction under the same
// row lock as state transitions.
func (r *recordRepo) UpdateContentTx(ctx context.Context, tx *sql.Tx, rec *models.ModeratedRecord) error {
	spec := recordTables[rec.Kind]

	b := builder().Update(spec.name).
		Set("payload", []byte(rec.Payload)).
		Set("state", rec.State).
		Set("updated_at", time.Now())
	if spec.hasWindow {
		b = b.Set("publish_at", rec.PublishAt).Set("expire_at", rec.ExpireAt)
	}

	query, args, err := b.Where(sq.Eq{"id": rec.ID}).ToSql()
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetForUpdateTx loads one record with a row lock so concurrent transitions
// on the same record serialize.
func (r *recordRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, id string) (*models.ModeratedRecord, error) {
	spec := recordTables[kind]
	query, args, err := builder().Select(columns(spec)...).From(spec.name).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}

	rec, err := scanRecord(kind, spec, tx.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetManyForUpdateTx locks a whole batch. Rows are locked in id order so two
// overlapping bulk operations acquire locks in the same sequence instead of
// deadlocking.
func (r *recordRepo) GetManyForUpdateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, ids []string) ([]*models.ModeratedRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	spec := recordTables[kind]
	query, args, err := builder().Select(columns(spec)...).From(spec.name).
		Where("id = ANY(?)", pq.Array(ids)).
		OrderBy("id").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.ModeratedRecord, 0, len(ids))
	for rows.Next() {
		rec, err := scanRecord(kind, spec, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// stateUpdate builds the per-kind SET clauses for a state write. Help desk
// tickets derive is_resolved from the state; membership activation flips the
// verification flag exactly once.
func stateUpdate(spec tableSpec, state models.State) sq.UpdateBuilder {
	b := builder().Update(spec.name).
		Set("state", state).
		Set("updated_at", time.Now())
	if spec.hasHelpDesk {
		b = b.Set("is_resolved", models.ResolvedState(state))
	}
	if spec.hasVerification && state == models.StateActive {
		b = b.Set("verified", true).
			Set("verified_at", sq.Expr("COALESCE(verified_at, now())"))
	}
	return b
}

// UpdateStateTx writes one record's state inside the caller's transaction
func (r *recordRepo) UpdateStateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, id string, state models.State) error {
	spec := recordTables[kind]
	query, args, err := stateUpdate(spec, state).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePriorityTx writes a help request's priority inside the caller's transaction
func (r *recordRepo) UpdatePriorityTx(ctx context.Context, tx *sql.Tx, id string, priority models.Priority) error {
	spec := recordTables[models.KindHelpRequest]
	query, args, err := builder().Update(spec.name).
		Set("priority", priority).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// BulkUpdateStateTx writes one state to a whole batch in a single statement
func (r *recordRepo) BulkUpdateStateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, ids []string, state models.State) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	spec := recordTables[kind]
	query, args, err := stateUpdate(spec, state).Where("id = ANY(?)", pq.Array(ids)).ToSql()
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ActiveMemberEmails returns the addresses for the best-effort broadcast
// channel. Read outside any transaction; the broadcast never joins one.
func (r *recordRepo) ActiveMemberEmails(ctx context.Context) ([]string, error) {
	query, args, err := builder().Select("email").From("members").
		Where(sq.Eq{"state": models.StateActive}).
		Where(sq.NotEq{"email": ""}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
