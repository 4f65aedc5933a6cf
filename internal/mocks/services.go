package mocks

import (
	"context"

	"github.com/membership-portal-api/internal/models"
)

// MockTransitionService is a mock implementation of service.TransitionService
type MockTransitionService struct {
	TransitionFunc func(ctx context.Context, actor models.Actor, kind models.RecordKind, recordID string, req *models.TransitionRequest) (*models.ModeratedRecord, error)
	Calls          int
}

func (m *MockTransitionService) Transition(ctx context.Context, actor models.Actor, kind models.RecordKind, recordID string, req *models.TransitionRequest) (*models.ModeratedRecord, error) {
	m.Calls++
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, actor, kind, recordID, req)
	}
	return &models.ModeratedRecord{ID: recordID, Kind: kind, State: req.TargetState}, nil
}

// MockBulkService is a mock implementation of service.BulkService
type MockBulkService struct {
	BulkTransitionFunc func(ctx context.Context, actor models.Actor, kind models.RecordKind, req *models.BulkTransitionRequest) (int, error)
	Calls              int
	LastKind           models.RecordKind
	LastRequest        *models.BulkTransitionRequest
}

func (m *MockBulkService) BulkTransition(ctx context.Context, actor models.Actor, kind models.RecordKind, req *models.BulkTransitionRequest) (int, error) {
	m.Calls++
	m.LastKind = kind
	m.LastRequest = req
	if m.BulkTransitionFunc != nil {
		return m.BulkTransitionFunc(ctx, actor, kind, req)
	}
	return len(req.IDs), nil
}

// MockNotificationService is a mock implementation of service.NotificationService
type MockNotificationService struct {
	Items       []*models.Notification
	ListErr     error
	MarkReadErr error
	ReadIDs     []string
}

func (m *MockNotificationService) ListFor(ctx context.Context, actor models.Actor, page, pageSize int) ([]*models.Notification, int, error) {
	if m.ListErr != nil {
		return nil, 0, m.ListErr
	}
	return m.Items, len(m.Items), nil
}

func (m *MockNotificationService) MarkRead(ctx context.Context, actor models.Actor, id string) error {
	if m.MarkReadErr != nil {
		return m.MarkReadErr
	}
	m.ReadIDs = append(m.ReadIDs, id)
	return nil
}

// MockQueryService is a mock implementation of service.QueryService
type MockQueryService struct {
	ListFunc func(ctx context.Context, actor models.Actor, kind models.RecordKind, filter models.ListFilter, page, pageSize int) ([]*models.ModeratedRecord, int, error)
	Counts   map[models.RecordKind]int
}

func (m *MockQueryService) List(ctx context.Context, actor models.Actor, kind models.RecordKind, filter models.ListFilter, page, pageSize int) ([]*models.ModeratedRecord, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, actor, kind, filter, page, pageSize)
	}
	return []*models.ModeratedRecord{}, 0, nil
}

func (m *MockQueryService) PendingCounts(ctx context.Context) (map[models.RecordKind]int, error) {
	if m.Counts != nil {
		return m.Counts, nil
	}
	return map[models.RecordKind]int{}, nil
}

// MockContentService is a mock implementation of service.ContentService
type MockContentService struct {
	CreateFunc func(ctx context.Context, actor models.Actor, kind models.RecordKind, req *models.CreateRecordRequest) (*models.ModeratedRecord, error)
	UpdateFunc func(ctx context.Context, actor models.Actor, kind models.RecordKind, recordID string, req *models.UpdateContentRequest) (*models.ModeratedRecord, error)
}

func (m *MockContentService) Create(ctx context.Context, actor models.Actor, kind models.RecordKind, req *models.CreateRecordRequest) (*models.ModeratedRecord, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, kind, req)
	}
	return &models.ModeratedRecord{Kind: kind, OwnerID: actor.ID}, nil
}

func (m *MockContentService) UpdateContent(ctx context.Context, actor models.Actor, kind models.RecordKind, recordID string, req *models.UpdateContentRequest) (*models.ModeratedRecord, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, kind, recordID, req)
	}
	return &models.ModeratedRecord{ID: recordID, Kind: kind}, nil
}
