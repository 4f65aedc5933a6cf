package workflow_test

import (
	"testing"

	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/workflow"
)

func TestLegalStates_Vocabularies(t *testing.T) {
	tests := []struct {
		kind models.RecordKind
		want []models.State
	}{
		{models.KindBusiness, []models.State{models.StatePending, models.StateApproved, models.StateRejected}},
		{models.KindCareer, []models.State{models.StatePending, models.StateApproved, models.StateRejected}},
		{models.KindEvent, []models.State{models.StatePending, models.StateApproved, models.StateRejected}},
		{models.KindScholarship, []models.State{models.StatePending, models.StateApproved, models.StateRejected}},
		{models.KindAnnouncement, []models.State{models.StatePending, models.StateApproved, models.StateRejected}},
		{models.KindHelpRequest, []models.State{models.StateOpen, models.StateInProgress, models.StateOnHold, models.StateResolved, models.StateClosed}},
		{models.KindMembership, []models.State{models.StatePending, models.StateActive, models.StateSuspended}},
	}

	for _, tt := range tests {
		got := workflow.LegalStates(tt.kind)
		if len(got) != len(tt.want) {
			t.Errorf("%s: expected %d states, got %d", tt.kind, len(tt.want), len(got))
			continue
		}
		for i, s := range tt.want {
			if got[i] != s {
				t.Errorf("%s: expected state %s at %d, got %s", tt.kind, s, i, got[i])
			}
		}
	}
}

func TestIsLegalState_RejectsForeignVocabulary(t *testing.T) {
	// States from one vocabulary must not leak into another.
	if workflow.IsLegalState(models.KindBusiness, models.StateOpen) {
		t.Error("OPEN should not be legal for business listings")
	}
	if workflow.IsLegalState(models.KindHelpRequest, models.StateApproved) {
		t.Error("APPROVED should not be legal for help requests")
	}
	if workflow.IsLegalState(models.KindMembership, models.StateResolved) {
		t.Error("RESOLVED should not be legal for membership applications")
	}
	if workflow.IsLegalState(models.KindMembership, models.StateApproved) {
		t.Error("APPROVED should not be legal for membership applications")
	}
	if workflow.IsLegalState("unknown-kind", models.StatePending) {
		t.Error("unknown kinds have no legal states")
	}
}

func TestIsTransitionLegal_ListingGraphIsComplete(t *testing.T) {
	// Moderation decisions are re-decidable: every ordered pair of listing
	// states is a legal edge.
	states := workflow.LegalStates(models.KindBusiness)
	for _, from := range states {
		for _, to := range states {
			if !workflow.IsTransitionLegal(models.KindBusiness, from, to) {
				t.Errorf("expected %s -> %s to be legal for listings", from, to)
			}
		}
	}
}

func TestIsTransitionLegal_HelpRequestGraphIsComplete(t *testing.T) {
	// Closed tickets may be reopened, so the help desk graph is complete too.
	states := workflow.LegalStates(models.KindHelpRequest)
	for _, from := range states {
		for _, to := range states {
			if !workflow.IsTransitionLegal(models.KindHelpRequest, from, to) {
				t.Errorf("expected %s -> %s to be legal for help requests", from, to)
			}
		}
	}
}

func TestIsTransitionLegal_MembershipEdges(t *testing.T) {
	tests := []struct {
		from, to models.State
		legal    bool
	}{
		{models.StatePending, models.StateActive, true},
		{models.StatePending, models.StateSuspended, true},
		{models.StateActive, models.StateSuspended, true},
		{models.StateActive, models.StatePending, false},
		{models.StateSuspended, models.StateActive, false},
		{models.StateSuspended, models.StatePending, false},
		// Re-asserting the current state is always legal.
		{models.StatePending, models.StatePending, true},
		{models.StateActive, models.StateActive, true},
		{models.StateSuspended, models.StateSuspended, true},
	}

	for _, tt := range tests {
		got := workflow.IsTransitionLegal(models.KindMembership, tt.from, tt.to)
		if got != tt.legal {
			t.Errorf("membership %s -> %s: expected legal=%v, got %v", tt.from, tt.to, tt.legal, got)
		}
	}
}

func TestIsTransitionLegal_RejectsStatesOutsideVocabulary(t *testing.T) {
	if workflow.IsTransitionLegal(models.KindBusiness, models.StatePending, models.StateResolved) {
		t.Error("transition into a foreign vocabulary must be illegal")
	}
	if workflow.IsTransitionLegal(models.KindHelpRequest, models.StatePending, models.StateOpen) {
		t.Error("transition out of a foreign vocabulary must be illegal")
	}
}

func TestInitialState(t *testing.T) {
	tests := []struct {
		kind       models.RecordKind
		privileged bool
		want       models.State
	}{
		{models.KindBusiness, false, models.StatePending},
		{models.KindBusiness, true, models.StateApproved},
		{models.KindAnnouncement, false, models.StatePending},
		{models.KindAnnouncement, true, models.StateApproved},
		{models.KindHelpRequest, false, models.StateOpen},
		{models.KindHelpRequest, true, models.StateOpen},
		{models.KindMembership, false, models.StatePending},
		{models.KindMembership, true, models.StateActive},
	}

	for _, tt := range tests {
		got := workflow.InitialState(tt.kind, tt.privileged)
		if got != tt.want {
			t.Errorf("InitialState(%s, privileged=%v): expected %s, got %s", tt.kind, tt.privileged, tt.want, got)
		}
	}
}

func TestInitialPriority(t *testing.T) {
	if workflow.InitialPriority() != models.PriorityMedium {
		t.Errorf("expected default priority MEDIUM, got %s", workflow.InitialPriority())
	}
}
