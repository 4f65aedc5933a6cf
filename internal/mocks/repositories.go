package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/workflow"
)

// MockTxRunner satisfies service.TxRunner. The callback runs with a nil
// transaction handle; the mock repositories ignore it.
type MockTxRunner struct {
	Calls    int
	BeginErr error
}

func (m *MockTxRunner) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	m.Calls++
	if m.BeginErr != nil {
		return m.BeginErr
	}
	return fn(nil)
}

// MockRecordRepository is an in-memory implementation of RecordRepository
type MockRecordRepository struct {
	Records map[models.RecordKind]map[string]*models.ModeratedRecord

	CreateErr      error
	GetErr         error
	ListErr        error
	ListErrOnce    bool // fail the first List call only (read-retry tests)
	CountErr       error
	UpdateStateErr error

	StateWrites    int
	PriorityWrites int
	ContentWrites  int
	Emails         []string

	listCalls int
}

func NewMockRecordRepository() *MockRecordRepository {
	records := make(map[models.RecordKind]map[string]*models.ModeratedRecord)
	for kind := range models.ValidKinds {
		records[kind] = make(map[string]*models.ModeratedRecord)
	}
	return &MockRecordRepository{Records: records}
}

// Add seeds a record directly
func (m *MockRecordRepository) Add(rec *models.ModeratedRecord) {
	m.Records[rec.Kind][rec.ID] = rec
}

func (m *MockRecordRepository) Create(ctx context.Context, rec *models.ModeratedRecord) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Records[rec.Kind][rec.ID] = rec
	return nil
}

func (m *MockRecordRepository) GetByID(ctx context.Context, kind models.RecordKind, id string) (*models.ModeratedRecord, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Records[kind][id], nil
}

func (m *MockRecordRepository) matches(rec *models.ModeratedRecord, filter workflow.EffectiveFilter) bool {
	if filter.State != "" && rec.State != filter.State {
		return false
	}
	if filter.OwnerID != "" && rec.OwnerID != filter.OwnerID {
		return false
	}
	if rec.Kind == models.KindHelpRequest {
		if filter.Category != "" && rec.Category != filter.Category {
			return false
		}
		if filter.Priority != "" && rec.Priority != filter.Priority {
			return false
		}
	}
	if filter.PublicWindowOnly && rec.Kind.IsListingKind() && !rec.InPublishWindow(time.Now()) {
		return false
	}
	return true
}

func (m *MockRecordRepository) filtered(kind models.RecordKind, filter workflow.EffectiveFilter) []*models.ModeratedRecord {
	var out []*models.ModeratedRecord
	for _, rec := range m.Records[kind] {
		if m.matches(rec, filter) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *MockRecordRepository) List(ctx context.Context, kind models.RecordKind, filter workflow.EffectiveFilter, limit, offset int) ([]*models.ModeratedRecord, error) {
	m.listCalls++
	if m.ListErr != nil {
		if m.ListErrOnce && m.listCalls > 1 {
			// fall through, the retry succeeds
		} else {
			return nil, m.ListErr
		}
	}

	all := m.filtered(kind, filter)
	if offset >= len(all) {
		return []*models.ModeratedRecord{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockRecordRepository) CountFiltered(ctx context.Context, kind models.RecordKind, filter workflow.EffectiveFilter) (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return len(m.filtered(kind, filter)), nil
}

func (m *MockRecordRepository) CountByState(ctx context.Context, kind models.RecordKind, state models.State) (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	count := 0
	for _, rec := range m.Records[kind] {
		if rec.State == state {
			count++
		}
	}
	return count, nil
}

func (m *MockRecordRepository) GetForUpdateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, id string) (*models.ModeratedRecord, error) {
	return m.GetByID(ctx, kind, id)
}

func (m *MockRecordRepository) GetManyForUpdateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, ids []string) ([]*models.ModeratedRecord, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var out []*models.ModeratedRecord
	for _, id := range ids {
		if rec, ok := m.Records[kind][id]; ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRecordRepository) applyState(rec *models.ModeratedRecord, state models.State) {
	rec.State = state
	if rec.Kind == models.KindHelpRequest {
		rec.IsResolved = models.ResolvedState(state)
	}
	if rec.Kind == models.KindMembership && state == models.StateActive && !rec.Verified {
		rec.Verified = true
		now := time.Now()
		rec.VerifiedAt = &now
	}
}

func (m *MockRecordRepository) UpdateStateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, id string, state models.State) error {
	if m.UpdateStateErr != nil {
		return m.UpdateStateErr
	}
	rec, ok := m.Records[kind][id]
	if !ok {
		return sql.ErrNoRows
	}
	m.applyState(rec, state)
	m.StateWrites++
	return nil
}

func (m *MockRecordRepository) UpdateContentTx(ctx context.Context, tx *sql.Tx, rec *models.ModeratedRecord) error {
	if _, ok := m.Records[rec.Kind][rec.ID]; !ok {
		return sql.ErrNoRows
	}
	m.Records[rec.Kind][rec.ID] = rec
	m.ContentWrites++
	return nil
}

func (m *MockRecordRepository) UpdatePriorityTx(ctx context.Context, tx *sql.Tx, id string, priority models.Priority) error {
	rec, ok := m.Records[models.KindHelpRequest][id]
	if !ok {
		return sql.ErrNoRows
	}
	rec.Priority = priority
	m.PriorityWrites++
	return nil
}

func (m *MockRecordRepository) BulkUpdateStateTx(ctx context.Context, tx *sql.Tx, kind models.RecordKind, ids []string, state models.State) (int, error) {
	if m.UpdateStateErr != nil {
		return 0, m.UpdateStateErr
	}
	count := 0
	for _, id := range ids {
		if rec, ok := m.Records[kind][id]; ok {
			m.applyState(rec, state)
			count++
		}
	}
	m.StateWrites += count
	return count, nil
}

func (m *MockRecordRepository) ActiveMemberEmails(ctx context.Context) ([]string, error) {
	if m.Emails != nil {
		return m.Emails, nil
	}
	var emails []string
	for _, rec := range m.Records[models.KindMembership] {
		if rec.State == models.StateActive && rec.Email != "" {
			emails = append(emails, rec.Email)
		}
	}
	return emails, nil
}

// MockNotificationRepository is an in-memory implementation of NotificationRepository
type MockNotificationRepository struct {
	Notifications []*models.Notification

	CreateErr      error
	BatchInsertErr error
	ListErr        error
	ListErrOnce    bool

	listCalls int
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) CreateTx(ctx context.Context, tx *sql.Tx, n *models.Notification) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Notifications = append(m.Notifications, n)
	return nil
}

func (m *MockNotificationRepository) BatchInsertTx(ctx context.Context, tx *sql.Tx, notifications []*models.Notification) (int, error) {
	if m.BatchInsertErr != nil {
		return 0, m.BatchInsertErr
	}
	m.Notifications = append(m.Notifications, notifications...)
	return len(notifications), nil
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	for _, n := range m.Notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (m *MockNotificationRepository) forRecipient(recipientID string) []*models.Notification {
	var out []*models.Notification
	for _, n := range m.Notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *MockNotificationRepository) ListFor(ctx context.Context, recipientID string, limit, offset int) ([]*models.Notification, error) {
	m.listCalls++
	if m.ListErr != nil {
		if m.ListErrOnce && m.listCalls > 1 {
			// fall through, the retry succeeds
		} else {
			return nil, m.ListErr
		}
	}

	all := m.forRecipient(recipientID)
	if offset >= len(all) {
		return []*models.Notification{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockNotificationRepository) CountFor(ctx context.Context, recipientID string) (int, error) {
	return len(m.forRecipient(recipientID)), nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id string) error {
	for _, n := range m.Notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

// MockBroadcaster records broadcast calls instead of sending anything.
// Broadcasts run detached from the request, so access is guarded.
type MockBroadcaster struct {
	mu         sync.Mutex
	calls      int
	subjects   []string
	recipients [][]string
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, recipients []string, subject, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.subjects = append(m.subjects, subject)
	m.recipients = append(m.recipients, recipients)
}

func (m *MockBroadcaster) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockBroadcaster) LastSubject() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.subjects) == 0 {
		return ""
	}
	return m.subjects[len(m.subjects)-1]
}

func (m *MockBroadcaster) LastRecipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.recipients) == 0 {
		return nil
	}
	return m.recipients[len(m.recipients)-1]
}

