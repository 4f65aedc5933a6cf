package models

import (
	"encoding/json"
	"time"
)

// RecordKind identifies which moderated collection a record belongs to.
type RecordKind string

const (
	KindBusiness     RecordKind = "business"
	KindCareer       RecordKind = "career"
	KindEvent        RecordKind = "event"
	KindScholarship  RecordKind = "scholarship"
	KindAnnouncement RecordKind = "announcement"
	KindHelpRequest  RecordKind = "help-request"
	KindMembership   RecordKind = "membership-application"
)

// ValidKinds defines all moderated record kinds
var ValidKinds = map[RecordKind]bool{
	KindBusiness:     true,
	KindCareer:       true,
	KindEvent:        true,
	KindScholarship:  true,
	KindAnnouncement: true,
	KindHelpRequest:  true,
	KindMembership:   true,
}

// State is a record's position within its kind's status vocabulary.
type State string

// Generic listing states (business, career, event, scholarship, announcement)
const (
	StatePending  State = "PENDING"
	StateApproved State = "APPROVED"
	StateRejected State = "REJECTED"
)

// Help request states
const (
	StateOpen       State = "OPEN"
	StateInProgress State = "IN_PROGRESS"
	StateOnHold     State = "ON_HOLD"
	StateResolved   State = "RESOLVED"
	StateClosed     State = "CLOSED"
)

// Membership application states
const (
	StateActive    State = "ACTIVE"
	StateSuspended State = "SUSPENDED"
)

// Priority is the independent urgency axis carried by help requests.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ValidPriorities defines allowed help request priorities
var ValidPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// BloodCategory is the only help request category non-privileged actors may
// browse; all other categories are private to their owner and the admins.
const BloodCategory = "Blood"

// ModeratedRecord is the common projection shared by every moderated kind.
// Kind-specific content lives in Payload and is opaque to the workflow.
type ModeratedRecord struct {
	ID        string     `json:"id" db:"id"`
	Kind      RecordKind `json:"kind" db:"-"`
	State     State      `json:"state" db:"state"`
	OwnerID   string     `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`

	// Publish window, generic listing kinds only
	PublishAt *time.Time `json:"publish_at,omitempty" db:"publish_at"`
	ExpireAt  *time.Time `json:"expire_at,omitempty" db:"expire_at"`

	// Help request only
	Priority   Priority `json:"priority,omitempty" db:"priority"`
	Category   string   `json:"category,omitempty" db:"category"`
	IsResolved bool     `json:"is_resolved,omitempty" db:"is_resolved"`

	// Membership application only
	Verified   bool       `json:"verified,omitempty" db:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty" db:"verified_at"`
	Email      string     `json:"email,omitempty" db:"email"`

	Payload json.RawMessage `json:"payload,omitempty" db:"payload"`
}

// IsListingKind reports whether the kind uses the generic
// PENDING/APPROVED/REJECTED moderation vocabulary.
func (k RecordKind) IsListingKind() bool {
	switch k {
	case KindBusiness, KindCareer, KindEvent, KindScholarship, KindAnnouncement:
		return true
	}
	return false
}

// ResolvedState reports whether a help request state counts as resolved.
// The is_resolved flag is always derived from this, never set on its own.
func ResolvedState(s State) bool {
	return s == StateResolved || s == StateClosed
}

// InPublishWindow reports whether the record's publish window covers now.
// Records without a publish window (non-listing kinds) are always inside it.
func (r *ModeratedRecord) InPublishWindow(now time.Time) bool {
	if r.PublishAt != nil && r.PublishAt.After(now) {
		return false
	}
	if r.ExpireAt != nil && !r.ExpireAt.After(now) {
		return false
	}
	return true
}
