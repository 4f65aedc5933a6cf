package models

import (
	"encoding/json"
	"time"
)

// TransitionRequest is the body of POST /v1/moderation/:kind/:id/transition
type TransitionRequest struct {
	TargetState State    `json:"target_state"`
	Reason      string   `json:"reason,omitempty"`
	Priority    Priority `json:"priority,omitempty"` // help requests, admin only
}

// BulkTransitionRequest is the body of POST /v1/moderation/:kind/bulk-transition
type BulkTransitionRequest struct {
	IDs         []string `json:"ids"`
	TargetState State    `json:"target_state"`
	Reason      string   `json:"reason,omitempty"`
}

// BulkTransitionResponse reports how many records the batch updated. The
// count is exact: the batch either applied to every record or to none.
type BulkTransitionResponse struct {
	Count int `json:"count"`
}

// CreateRecordRequest is the body of POST /v1/moderation/:kind
type CreateRecordRequest struct {
	OwnerID   string          `json:"owner_id,omitempty"` // admins may create on behalf of a member
	PublishAt *time.Time      `json:"publish_at,omitempty"`
	ExpireAt  *time.Time      `json:"expire_at,omitempty"`
	Priority  Priority        `json:"priority,omitempty"` // help requests
	Category  string          `json:"category,omitempty"` // help requests
	Email     string          `json:"email,omitempty"`    // membership applications
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// UpdateContentRequest is the body of PUT /v1/moderation/:kind/:id/content
type UpdateContentRequest struct {
	PublishAt *time.Time      `json:"publish_at,omitempty"`
	ExpireAt  *time.Time      `json:"expire_at,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// ListFilter narrows a moderation listing. The Visibility Policy may
// override fields before the filter reaches storage.
type ListFilter struct {
	State    State    `json:"state,omitempty"`
	Category string   `json:"category,omitempty"`
	OwnerID  string   `json:"owner_id,omitempty"`
	Priority Priority `json:"priority,omitempty"`
}

// ListResponse is the paginated listing envelope.
type ListResponse struct {
	Items      []*ModeratedRecord `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}
