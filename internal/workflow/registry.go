// Package workflow holds the pure moderation rules: the per-kind status
// vocabularies with their legal transitions, and the role-based visibility
// policy. Nothing in this package touches storage or performs I/O.
package workflow

import (
	"github.com/membership-portal-api/internal/models"
)

// listingStates is the shared moderation vocabulary of the generic listing
// kinds (business, career, event, scholarship, announcement).
var listingStates = []models.State{
	models.StatePending,
	models.StateApproved,
	models.StateRejected,
}

var helpRequestStates = []models.State{
	models.StateOpen,
	models.StateInProgress,
	models.StateOnHold,
	models.StateResolved,
	models.StateClosed,
}

var membershipStates = []models.State{
	models.StatePending,
	models.StateActive,
	models.StateSuspended,
}

// membershipEdges is the only restricted transition graph. There is no path
// back to PENDING and no reactivation out of SUSPENDED.
var membershipEdges = map[models.State][]models.State{
	models.StatePending: {models.StateActive, models.StateSuspended},
	models.StateActive:  {models.StateSuspended},
}

// LegalStates returns the closed status vocabulary for a kind.
func LegalStates(kind models.RecordKind) []models.State {
	switch {
	case kind.IsListingKind():
		return listingStates
	case kind == models.KindHelpRequest:
		return helpRequestStates
	case kind == models.KindMembership:
		return membershipStates
	}
	return nil
}

// IsLegalState reports whether the state belongs to the kind's vocabulary.
func IsLegalState(kind models.RecordKind, s models.State) bool {
	for _, legal := range LegalStates(kind) {
		if legal == s {
			return true
		}
	}
	return false
}

// IsTransitionLegal reports whether from -> to is an allowed edge for the
// kind. Listing moderation is re-decidable at any time and closed help desk
// tickets may be reopened, so those two graphs are complete. Re-asserting
// the current state (from == to) is always legal; callers treat it as a
// no-op. Membership applications follow the restricted edge set.
func IsTransitionLegal(kind models.RecordKind, from, to models.State) bool {
	if !IsLegalState(kind, from) || !IsLegalState(kind, to) {
		return false
	}
	if from == to {
		return true
	}
	if kind == models.KindMembership {
		for _, next := range membershipEdges[from] {
			if next == to {
				return true
			}
		}
		return false
	}
	return true
}

// InitialState returns a new record's state. Privileged creators bypass the
// moderation queue: their listings start APPROVED and membership accounts
// created through the privileged path start ACTIVE.
func InitialState(kind models.RecordKind, privileged bool) models.State {
	switch {
	case kind.IsListingKind():
		if privileged {
			return models.StateApproved
		}
		return models.StatePending
	case kind == models.KindHelpRequest:
		return models.StateOpen
	case kind == models.KindMembership:
		if privileged {
			return models.StateActive
		}
		return models.StatePending
	}
	return ""
}

// InitialPriority is the default urgency for new help requests.
func InitialPriority() models.Priority {
	return models.PriorityMedium
}
