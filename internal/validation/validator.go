// Package validation parses and checks the untrusted pieces of an incoming
// request (kind segment, actor headers, pagination, transition bodies)
// before they reach the services.
package validation

import (
	"fmt"
	"strconv"

	"github.com/membership-portal-api/internal/models"
)

// ParseKind maps a URL path segment onto a record kind
func ParseKind(raw string) (models.RecordKind, error) {
	kind := models.RecordKind(raw)
	if !models.ValidKinds[kind] {
		return "", &models.RequestError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown record kind %q", raw),
		}
	}
	return kind, nil
}

// ParseActor builds the actor context from the identity headers the auth
// gateway injects. No headers means an anonymous actor; a role we do not
// know is rejected rather than guessed at.
func ParseActor(id, role string) (models.Actor, error) {
	if role == "" {
		if id == "" {
			return models.Anonymous, nil
		}
		role = string(models.RoleMember)
	}
	r := models.Role(role)
	if !models.ValidRoles[r] {
		return models.Actor{}, &models.RequestError{
			Field:   "X-Actor-Role",
			Message: fmt.Sprintf("unknown role %q", role),
		}
	}
	if r != models.RoleAnonymous && id == "" {
		return models.Actor{}, &models.RequestError{
			Field:   "X-Actor-ID",
			Message: "actor id is required for authenticated roles",
		}
	}
	return models.Actor{ID: id, Role: r}, nil
}

// ParsePagination parses page/pageSize query values. Empty values fall back
// to zero and let the query service apply its configured defaults.
func ParsePagination(pageRaw, sizeRaw string) (int, int, error) {
	page, err := parsePositive("page", pageRaw)
	if err != nil {
		return 0, 0, err
	}
	size, err := parsePositive("pageSize", sizeRaw)
	if err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func parsePositive(field, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &models.RequestError{Field: field, Message: "must be a positive integer"}
	}
	return n, nil
}

// ValidateTransitionRequest checks the request body shape before it reaches
// the executor
func ValidateTransitionRequest(req *models.TransitionRequest) error {
	if req.TargetState == "" && req.Priority == "" {
		return &models.RequestError{Field: "target_state", Message: "target_state is required"}
	}
	return nil
}

// ValidateBulkRequest checks the request body shape before it reaches the
// coordinator
func ValidateBulkRequest(req *models.BulkTransitionRequest) error {
	if len(req.IDs) == 0 {
		return &models.RequestError{Field: "ids", Message: "ids must not be empty"}
	}
	if req.TargetState == "" {
		return &models.RequestError{Field: "target_state", Message: "target_state is required"}
	}
	return nil
}
