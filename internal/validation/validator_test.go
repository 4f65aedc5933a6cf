package validation_test

import (
	"errors"
	"testing"

	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/validation"
)

func TestParseKind(t *testing.T) {
	for raw := range models.ValidKinds {
		kind, err := validation.ParseKind(string(raw))
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", raw, err)
		}
		if kind != raw {
			t.Errorf("expected %s, got %s", raw, kind)
		}
	}

	_, err := validation.ParseKind("widgets")
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown kind, got %v", err)
	}
	_, err = validation.ParseKind("")
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for empty kind, got %v", err)
	}
}

func TestParseActor(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		role    string
		want    models.Actor
		wantErr bool
	}{
		{"no headers is anonymous", "", "", models.Anonymous, false},
		{"full headers", "u-1", "admin", models.Actor{ID: "u-1", Role: models.RoleAdmin}, false},
		{"member role", "u-2", "member", models.Actor{ID: "u-2", Role: models.RoleMember}, false},
		{"id without role defaults to member", "u-3", "", models.Actor{ID: "u-3", Role: models.RoleMember}, false},
		{"unknown role", "u-4", "superuser", models.Actor{}, true},
		{"role without id", "", "admin", models.Actor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := validation.ParseActor(tt.id, tt.role)
			if tt.wantErr {
				if !errors.Is(err, models.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseActor failed: %v", err)
			}
			if actor != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, actor)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	page, size, err := validation.ParsePagination("2", "50")
	if err != nil {
		t.Fatalf("ParsePagination failed: %v", err)
	}
	if page != 2 || size != 50 {
		t.Errorf("expected 2/50, got %d/%d", page, size)
	}

	// Empty values defer to the service defaults.
	page, size, err = validation.ParsePagination("", "")
	if err != nil {
		t.Fatalf("ParsePagination failed: %v", err)
	}
	if page != 0 || size != 0 {
		t.Errorf("expected 0/0, got %d/%d", page, size)
	}

	for _, bad := range []string{"0", "-1", "abc", "1.5"} {
		if _, _, err := validation.ParsePagination(bad, ""); !errors.Is(err, models.ErrValidation) {
			t.Errorf("page %q: expected ErrValidation, got %v", bad, err)
		}
		if _, _, err := validation.ParsePagination("", bad); !errors.Is(err, models.ErrValidation) {
			t.Errorf("pageSize %q: expected ErrValidation, got %v", bad, err)
		}
	}
}

func TestValidateTransitionRequest(t *testing.T) {
	err := validation.ValidateTransitionRequest(&models.TransitionRequest{})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for empty request, got %v", err)
	}

	if err := validation.ValidateTransitionRequest(&models.TransitionRequest{TargetState: models.StateApproved}); err != nil {
		t.Errorf("target-only request should be valid: %v", err)
	}
	// Priority-only requests are a legal admin path.
	if err := validation.ValidateTransitionRequest(&models.TransitionRequest{Priority: models.PriorityHigh}); err != nil {
		t.Errorf("priority-only request should be valid: %v", err)
	}
}

func TestValidateBulkRequest(t *testing.T) {
	err := validation.ValidateBulkRequest(&models.BulkTransitionRequest{TargetState: models.StateApproved})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for empty ids, got %v", err)
	}

	err = validation.ValidateBulkRequest(&models.BulkTransitionRequest{IDs: []string{"a"}})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for missing target, got %v", err)
	}

	if err := validation.ValidateBulkRequest(&models.BulkTransitionRequest{IDs: []string{"a"}, TargetState: models.StateApproved}); err != nil {
		t.Errorf("well-formed request should be valid: %v", err)
	}
}
