package workflow_test

import (
	"testing"
	"time"

	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/workflow"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestIsVisible_ListingPublishWindow(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	rec := &models.ModeratedRecord{
		Kind:      models.KindEvent,
		State:     models.StateApproved,
		PublishAt: timePtr(now.Add(-24 * time.Hour)),
		ExpireAt:  timePtr(now.Add(24 * time.Hour)),
	}

	if !workflow.IsVisible(models.RoleMember, models.KindEvent, rec, now) {
		t.Error("approved event inside its window should be visible to members")
	}
	if !workflow.IsVisible(models.RoleAnonymous, models.KindEvent, rec, now) {
		t.Error("approved event inside its window should be visible anonymously")
	}

	// Before the window opens.
	if workflow.IsVisible(models.RoleMember, models.KindEvent, rec, now.Add(-48*time.Hour)) {
		t.Error("event should be hidden before publish_at")
	}
	// After the window closes.
	if workflow.IsVisible(models.RoleMember, models.KindEvent, rec, now.Add(48*time.Hour)) {
		t.Error("event should be hidden after expire_at")
	}
	// Admins see it regardless of the clock.
	if !workflow.IsVisible(models.RoleAdmin, models.KindEvent, rec, now.Add(48*time.Hour)) {
		t.Error("admins should see expired events")
	}
}

func TestIsVisible_ListingState(t *testing.T) {
	now := time.Now()

	pending := &models.ModeratedRecord{Kind: models.KindBusiness, State: models.StatePending}
	rejected := &models.ModeratedRecord{Kind: models.KindBusiness, State: models.StateRejected}

	if workflow.IsVisible(models.RoleMember, models.KindBusiness, pending, now) {
		t.Error("pending listing should be hidden from members")
	}
	if workflow.IsVisible(models.RoleMember, models.KindBusiness, rejected, now) {
		t.Error("rejected listing should be hidden from members")
	}
	if !workflow.IsVisible(models.RoleAdmin, models.KindBusiness, pending, now) {
		t.Error("pending listing should be visible to admins")
	}
}

func TestIsVisible_OpenEndedWindow(t *testing.T) {
	now := time.Now()
	rec := &models.ModeratedRecord{
		Kind:      models.KindScholarship,
		State:     models.StateApproved,
		PublishAt: timePtr(now.Add(-time.Hour)),
		// no ExpireAt: stays visible forever
	}

	if !workflow.IsVisible(models.RoleMember, models.KindScholarship, rec, now.Add(10000*time.Hour)) {
		t.Error("listing without expire_at should never expire")
	}
}

func TestIsVisible_HelpRequestBloodOnly(t *testing.T) {
	now := time.Now()

	blood := &models.ModeratedRecord{Kind: models.KindHelpRequest, State: models.StateOpen, Category: models.BloodCategory}
	financial := &models.ModeratedRecord{Kind: models.KindHelpRequest, State: models.StateOpen, Category: "Financial"}

	if !workflow.IsVisible(models.RoleMember, models.KindHelpRequest, blood, now) {
		t.Error("Blood help requests should be visible to members")
	}
	if workflow.IsVisible(models.RoleMember, models.KindHelpRequest, financial, now) {
		t.Error("non-Blood help requests should be hidden from members")
	}
	if !workflow.IsVisible(models.RoleAdmin, models.KindHelpRequest, financial, now) {
		t.Error("admins should see every help request category")
	}
}

func TestIsVisible_MembershipAdminOnly(t *testing.T) {
	now := time.Now()
	rec := &models.ModeratedRecord{Kind: models.KindMembership, State: models.StateActive}

	if workflow.IsVisible(models.RoleMember, models.KindMembership, rec, now) {
		t.Error("membership applications should be hidden from members")
	}
	if workflow.IsVisible(models.RoleAnonymous, models.KindMembership, rec, now) {
		t.Error("membership applications should be hidden anonymously")
	}
	if !workflow.IsVisible(models.RoleAdmin, models.KindMembership, rec, now) {
		t.Error("membership applications should be visible to admins")
	}
}

func TestApplyRoleFilter_AdminPassThrough(t *testing.T) {
	filter := models.ListFilter{State: models.StatePending, Category: "Financial", OwnerID: "u1"}

	eff := workflow.ApplyRoleFilter(models.RoleAdmin, models.KindHelpRequest, filter)
	if eff.DenyAll || eff.PublicWindowOnly {
		t.Error("admin filters should pass through untouched")
	}
	if eff.State != models.StatePending || eff.Category != "Financial" || eff.OwnerID != "u1" {
		t.Errorf("admin filter was rewritten: %+v", eff.ListFilter)
	}
}

func TestApplyRoleFilter_ListingPinnedToApproved(t *testing.T) {
	// A member asking for PENDING records still gets the public view.
	eff := workflow.ApplyRoleFilter(models.RoleMember, models.KindBusiness, models.ListFilter{State: models.StatePending})
	if eff.State != models.StateApproved {
		t.Errorf("expected state pinned to APPROVED, got %s", eff.State)
	}
	if !eff.PublicWindowOnly {
		t.Error("expected the publish window restriction for non-admin listing reads")
	}
	if eff.DenyAll {
		t.Error("listing reads should not be denied outright")
	}
}

func TestApplyRoleFilter_HelpRequestPinnedToBlood(t *testing.T) {
	// The requested category is overridden, never widened.
	eff := workflow.ApplyRoleFilter(models.RoleMember, models.KindHelpRequest, models.ListFilter{Category: "Financial"})
	if eff.Category != models.BloodCategory {
		t.Errorf("expected category pinned to %s, got %s", models.BloodCategory, eff.Category)
	}
	if eff.DenyAll {
		t.Error("Blood help request reads should not be denied")
	}
}

func TestApplyRoleFilter_MembershipDenied(t *testing.T) {
	eff := workflow.ApplyRoleFilter(models.RoleMember, models.KindMembership, models.ListFilter{})
	if !eff.DenyAll {
		t.Error("membership listings must be denied to non-admins")
	}
	eff = workflow.ApplyRoleFilter(models.RoleAnonymous, models.KindMembership, models.ListFilter{})
	if !eff.DenyAll {
		t.Error("membership listings must be denied to anonymous actors")
	}
}
