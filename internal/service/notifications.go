package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/membership-portal-api/internal/mailer"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/repository"
	"github.com/rs/zerolog"
)

// kindLabels are the user-facing names used in notification text.
var kindLabels = map[models.RecordKind]string{
	models.KindBusiness:     "business listing",
	models.KindCareer:       "career listing",
	models.KindEvent:        "event",
	models.KindScholarship:  "scholarship",
	models.KindAnnouncement: "announcement",
	models.KindHelpRequest:  "help request",
	models.KindMembership:   "membership application",
}

func newNotification(recipientID, title, message, category string) *models.Notification {
	return &models.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Category:    category,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}
}

// transitionNotification builds the notification owed to a record's owner
// for a given transition. Membership decisions notify the applicant; listing
// moderation decisions notify the owner, with a generic status-change
// message for targets that are not a moderation verdict (a re-queue back to
// PENDING); help desk state changes notify the requester.
func transitionNotification(kind models.RecordKind, rec *models.ModeratedRecord, target models.State, reason string) *models.Notification {
	label := kindLabels[kind]

	switch {
	case kind == models.KindMembership:
		switch target {
		case models.StateActive:
			return newNotification(rec.OwnerID,
				"Membership approved",
				withReason("Your membership application has been approved. Welcome aboard!", reason),
				models.NotifyCategoryMembership)
		case models.StateSuspended:
			return newNotification(rec.OwnerID,
				"Membership suspended",
				withReason("Your membership application has been suspended.", reason),
				models.NotifyCategoryMembership)
		}
		return nil

	case kind.IsListingKind():
		switch target {
		case models.StateApproved:
			return newNotification(rec.OwnerID,
				fmt.Sprintf("Your %s was approved", label),
				withReason(fmt.Sprintf("Your %s is now publicly visible.", label), reason),
				models.NotifyCategoryModeration)
		case models.StateRejected:
			return newNotification(rec.OwnerID,
				fmt.Sprintf("Your %s was rejected", label),
				withReason(fmt.Sprintf("Your %s did not pass review.", label), reason),
				models.NotifyCategoryModeration)
		}
		return newNotification(rec.OwnerID,
			fmt.Sprintf("Your %s status changed", label),
			withReason(fmt.Sprintf("Your %s moved to %s.", label, target), reason),
			models.NotifyCategoryModeration)

	case kind == models.KindHelpRequest:
		return newNotification(rec.OwnerID,
			fmt.Sprintf("Help request %s", target),
			withReason(fmt.Sprintf("Your %s moved to %s.", label, target), reason),
			models.NotifyCategoryHelpDesk)
	}

	return nil
}

func withReason(message, reason string) string {
	if reason == "" {
		return message
	}
	return message + " Reason: " + reason
}

// announcementPublished reports whether a transition publishes an
// announcement, which triggers the best-effort member broadcast.
func announcementPublished(kind models.RecordKind, from, to models.State) bool {
	return kind == models.KindAnnouncement && to == models.StateApproved && from != models.StateApproved
}

// broadcastToMembers fans an announcement out over the external channel.
// Runs detached from the request: the transition has already committed and
// nothing here can affect it.
func broadcastToMembers(records repository.RecordRepository, b mailer.Broadcaster, log zerolog.Logger, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		emails, err := records.ActiveMemberEmails(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Broadcast recipient lookup failed")
			return
		}
		b.Broadcast(ctx, emails, subject, body)
	}()
}
