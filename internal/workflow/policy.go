package workflow

import (
	"time"

	"github.com/membership-portal-api/internal/models"
)

// EffectiveFilter is the filter that actually reaches storage after the
// visibility policy has been applied. PublicWindowOnly additionally
// restricts listing queries to the publish window; DenyAll short-circuits
// the query to an empty page.
type EffectiveFilter struct {
	models.ListFilter
	PublicWindowOnly bool
	DenyAll          bool
}

// IsVisible decides whether a single record may appear in a listing response
// for the given role. Pure; the clock is an argument so tests can time-travel.
func IsVisible(role models.Role, kind models.RecordKind, rec *models.ModeratedRecord, now time.Time) bool {
	if role == models.RoleAdmin {
		return true
	}
	switch {
	case kind.IsListingKind():
		return rec.State == models.StateApproved && rec.InPublishWindow(now)
	case kind == models.KindHelpRequest:
		return rec.Category == models.BloodCategory
	case kind == models.KindMembership:
		return false
	}
	return false
}

// ApplyRoleFilter rewrites a requested listing filter according to the
// actor's role. Admins get their filter back untouched. Everyone else gets
// the public view: listings are pinned to APPROVED inside the publish
// window, help requests are pinned to the Blood category no matter what
// category was asked for, and membership applications are not listable.
func ApplyRoleFilter(role models.Role, kind models.RecordKind, filter models.ListFilter) EffectiveFilter {
	if role == models.RoleAdmin {
		return EffectiveFilter{ListFilter: filter}
	}

	switch {
	case kind.IsListingKind():
		filter.State = models.StateApproved
		return EffectiveFilter{ListFilter: filter, PublicWindowOnly: true}
	case kind == models.KindHelpRequest:
		filter.Category = models.BloodCategory
		return EffectiveFilter{ListFilter: filter}
	}

	// Membership applications and anything unknown: nothing to see.
	return EffectiveFilter{DenyAll: true}
}
