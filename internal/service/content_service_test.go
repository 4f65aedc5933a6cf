package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/membership-portal-api/internal/models"
)

func TestContentCreate_MemberListingStartsPending(t *testing.T) {
	svcs, recRepo, _, _ := newTestEnv()

	rec, err := svcs.Content.Create(context.Background(), member, models.KindBusiness,
		&models.CreateRecordRequest{Payload: json.RawMessage(`{"name":"Corner Shop"}`)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if rec.State != models.StatePending {
		t.Errorf("member listings start PENDING, got %s", rec.State)
	}
	if rec.OwnerID != member.ID {
		t.Errorf("expected owner %s, got %s", member.ID, rec.OwnerID)
	}
	if rec.ID == "" {
		t.Error("expected a generated id")
	}
	if rec.PublishAt == nil {
		t.Error("publish window should default to creation time")
	}
	stored, _ := recRepo.GetByID(context.Background(), models.KindBusiness, rec.ID)
	if stored == nil {
		t.Fatal("record should be persisted")
	}
}

func TestContentCreate_AdminListingStartsApproved(t *testing.T) {
	svcs, _, _, _ := newTestEnv()

	rec, err := svcs.Content.Create(context.Background(), admin, models.KindEvent,
		&models.CreateRecordRequest{Payload: json.RawMessage(`{"title":"AGM"}`)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.State != models.StateApproved {
		t.Errorf("admin listings bypass moderation, got %s", rec.State)
	}
}

func TestContentCreate_RequiresAuthentication(t *testing.T) {
	svcs, _, _, _ := newTestEnv()

	_, err := svcs.Content.Create(context.Background(), models.Anonymous, models.KindBusiness,
		&models.CreateRecordRequest{Payload: json.RawMessage(`{}`)})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestContentCreate_OnBehalfIsAdminOnly(t *testing.T) {
	svcs, _, _, _ := newTestEnv()

	_, err := svcs.Content.Create(context.Background(), member, models.KindBusiness,
		&models.CreateRecordRequest{OwnerID: "someone-else", Payload: json.RawMessage(`{}`)})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	rec, err := svcs.Content.Create(context.Background(), admin, models.KindBusiness,
		&models.CreateRecordRequest{OwnerID: "someone-else", Payload: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("admin on-behalf create failed: %v", err)
	}
	if rec.OwnerID != "someone-else" {
		t.Errorf("expected owner someone-else, got %s", rec.OwnerID)
	}
}

func TestContentCreate_ExpireBeforePublish(t *testing.T) {
	svcs, _, _, _ := newTestEnv()
	now := time.Now()

	_, err := svcs.Content.Create(context.Background(), member, models.KindEvent,
		&models.CreateRecordRequest{
			PublishAt: timePtr(now.Add(48 * time.Hour)),
			ExpireAt:  timePtr(now.Add(24 * time.Hour)),
			Payload:   json.RawMessage(`{}`),
		})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation for an inverted window, got %v", err)
	}
}

func TestContentCreate_HelpRequestDefaults(t *testing.T) {
	svcs, _, _, _ := newTestEnv()

	rec, err := svcs.Content.Create(context.Background(), member, models.KindHelpRequest,
		&models.CreateRecordRequest{Category: models.BloodCategory, Payload: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if rec.State != models.StateOpen {
		t.Errorf("help requests start OPEN, got %s", rec.State)
	}
	if rec.Priority != models.PriorityMedium {
		t.Errorf("expected default priority MEDIUM, got %s", rec.Priority)
	}
	if rec.IsResolved {
		t.Error("new help requests are unresolved")
	}
}

func TestContentCreate_HelpRequestRequiresCategory(t *testing.T) {
	svcs, _, _, _ := newTestEnv()

	_, err := svcs.Content.Create(context.Background(), member, models.KindHelpRequest,
		&models.CreateRecordRequest{Payload: json.RawMessage(`{}`)})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestContentCreate_HelpRequestBadPriority(t *testing.T) {
	svcs, _, _, _ := newTestEnv()

	_, err := svcs.Content.Create(context.Background(), member, models.KindHelpRequest,
		&models.CreateRecordRequest{Category: models.BloodCategory, Priority: "EXTREME", Payload: json.RawMessage(`{}`)})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestContentCreate_MembershipApplication(t *testing.T) {
	svcs, _, _, _ := newTestEnv()

	rec, err := svcs.Content.Create(context.Background(), member, models.KindMembership,
		&models.CreateRecordRequest{Email: "new@example.com", Payload: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.State != models.StatePending || rec.Verified {
		t.Errorf("applications start PENDING and unverified, got %s verified=%v", rec.State, rec.Verified)
	}

	// Admin-created members skip the queue and arrive verified.
	rec, err = svcs.Content.Create(context.Background(), admin, models.KindMembership,
		&models.CreateRecordRequest{OwnerID: "new-member", Email: "vip@example.com", Payload: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.State != models.StateActive || !rec.Verified || rec.VerifiedAt == nil {
		t.Errorf("expected verified ACTIVE member, got %s verified=%v", rec.State, rec.Verified)
	}
}

func TestContentUpdate_ApprovedListingReturnsToPending(t *testing.T) {
	svcs, recRepo, _, _ := newTestEnv()
	rec := seedRecord(recRepo, "biz-1", models.KindBusiness, models.StateApproved, member.ID)
	rec.Payload = json.RawMessage(`{"name":"Old"}`)

	updated, err := svcs.Content.UpdateContent(context.Background(), member, models.KindBusiness, "biz-1",
		&models.UpdateContentRequest{Payload: json.RawMessage(`{"name":"New"}`)})
	if err != nil {
		t.Fatalf("UpdateContent failed: %v", err)
	}

	if updated.State != models.StatePending {
		t.Errorf("edited approved listing must return to PENDING, got %s", updated.State)
	}
	if string(updated.Payload) != `{"name":"New"}` {
		t.Errorf("payload not replaced: %s", updated.Payload)
	}
	if recRepo.ContentWrites != 1 {
		t.Errorf("expected 1 content write, got %d", recRepo.ContentWrites)
	}
}

func TestContentUpdate_RejectedListingReturnsToPending(t *testing.T) {
	svcs, recRepo, _, _ := newTestEnv()
	seedRecord(recRepo, "biz-1", models.KindBusiness, models.StateRejected, member.ID)

	updated, err := svcs.Content.UpdateContent(context.Background(), member, models.KindBusiness, "biz-1",
		&models.UpdateContentRequest{Payload: json.RawMessage(`{"name":"Fixed"}`)})
	if err != nil {
		t.Fatalf("UpdateContent failed: %v", err)
	}
	if updated.State != models.StatePending {
		t.Errorf("edited rejected listing must return to PENDING, got %s", updated.State)
	}
}

func TestContentUpdate_PendingListingStaysPending(t *testing.T) {
	svcs, recRepo, _, _ := newTestEnv()
	seedRecord(recRepo, "biz-1", models.KindBusiness, models.StatePending, member.ID)

	updated, err := svcs.Content.UpdateContent(context.Background(), member, models.KindBusiness, "biz-1",
		&models.UpdateContentRequest{Payload: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("UpdateContent failed: %v", err)
	}
	if updated.State != models.StatePending {
		t.Errorf("pending listings stay PENDING on edit, got %s", updated.State)
	}
}

func TestContentUpdate_HelpRequestKeepsState(t *testing.T) {
	svcs, recRepo, _, _ := newTestEnv()
	seedRecord(recRepo, "hr-1", models.KindHelpRequest, models.StateInProgress, member.ID)

	updated, err := svcs.Content.UpdateContent(context.Background(), member, models.KindHelpRequest, "hr-1",
		&models.UpdateContentRequest{Payload: json.RawMessage(`{"details":"more info"}`)})
	if err != nil {
		t.Fatalf("UpdateContent failed: %v", err)
	}
	if updated.State != models.StateInProgress {
		t.Errorf("re-moderation applies to listings only, got %s", updated.State)
	}
}

func TestContentUpdate_StrangerForbidden(t *testing.T) {
	svcs, recRepo, _, _ := newTestEnv()
	seedRecord(recRepo, "biz-1", models.KindBusiness, models.StateApproved, "someone-else")

	_, err := svcs.Content.UpdateContent(context.Background(), member, models.KindBusiness, "biz-1",
		&models.UpdateContentRequest{Payload: json.RawMessage(`{}`)})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if recRepo.ContentWrites != 0 {
		t.Errorf("forbidden edit must not write, got %d", recRepo.ContentWrites)
	}
}

func TestContentUpdate_AdminMayEditAnything(t *testing.T) {
	svcs, recRepo, _, _ := newTestEnv()
	seedRecord(recRepo, "biz-1", models.KindBusiness, models.StateApproved, "someone-else")

	_, err := svcs.Content.UpdateContent(context.Background(), admin, models.KindBusiness, "biz-1",
		&models.UpdateContentRequest{Payload: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("admin edit failed: %v", err)
	}
}

func TestContentUpdate_NotFound(t *testing.T) {
	svcs, _, _, _ := newTestEnv()

	_, err := svcs.Content.UpdateContent(context.Background(), member, models.KindBusiness, "ghost",
		&models.UpdateContentRequest{Payload: json.RawMessage(`{}`)})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContentUpdate_PayloadRequired(t *testing.T) {
	svcs, recRepo, _, _ := newTestEnv()
	seedRecord(recRepo, "biz-1", models.KindBusiness, models.StatePending, member.ID)

	_, err := svcs.Content.UpdateContent(context.Background(), member, models.KindBusiness, "biz-1",
		&models.UpdateContentRequest{})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
