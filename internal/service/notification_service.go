package service

import (
	"context"
	"fmt"

	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/repository"
	"github.com/rs/zerolog"
)

// notificationService is the concrete implementation of NotificationService
type notificationService struct {
	repo repository.NotificationRepository
	log  zerolog.Logger
}

func newNotificationService(repo repository.NotificationRepository, log zerolog.Logger) *notificationService {
	return &notificationService{
		repo: repo,
		log:  log.With().Str("service", "notification").Logger(),
	}
}

// ListFor returns the actor's notification feed, newest first
func (s *notificationService) ListFor(ctx context.Context, actor models.Actor, page, pageSize int) ([]*models.Notification, int, error) {
	if actor.ID == "" {
		return nil, 0, fmt.Errorf("notifications require an authenticated actor: %w", models.ErrForbidden)
	}

	offset := (page - 1) * pageSize

	items, err := s.repo.ListFor(ctx, actor.ID, pageSize, offset)
	if err != nil {
		// Reads are idempotent, retry once before surfacing the failure.
		s.log.Warn().Err(err).Str("actor", actor.ID).Msg("Notification list failed, retrying")
		items, err = s.repo.ListFor(ctx, actor.ID, pageSize, offset)
		if err != nil {
			return nil, 0, asStorageError("list notifications", err)
		}
	}

	total, err := s.repo.CountFor(ctx, actor.ID)
	if err != nil {
		total, err = s.repo.CountFor(ctx, actor.ID)
		if err != nil {
			return nil, 0, asStorageError("count notifications", err)
		}
	}

	return items, total, nil
}

// MarkRead flips the read flag on the actor's own notification
func (s *notificationService) MarkRead(ctx context.Context, actor models.Actor, id string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return asStorageError("load notification", err)
	}
	if n == nil {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	if n.RecipientID != actor.ID {
		return fmt.Errorf("notification %s belongs to another recipient: %w", id, models.ErrForbidden)
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		return asStorageError("mark notification read", err)
	}
	return nil
}
