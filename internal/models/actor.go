package models

// Role is the coarse authorization level attached to each request by the
// external authentication layer.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleMember    Role = "member"
	RoleAdmin     Role = "admin"
)

// ValidRoles defines allowed actor roles
var ValidRoles = map[Role]bool{
	RoleAnonymous: true,
	RoleMember:    true,
	RoleAdmin:     true,
}

// Actor is the identity and role context injected per call. The portal's
// auth layer resolves tokens to this pair before the request reaches us.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsPrivileged reports whether the actor may bypass PENDING-gating and see
// records in every state.
func (a Actor) IsPrivileged() bool {
	return a.Role == RoleAdmin
}

// Anonymous is the actor attached to unauthenticated requests.
var Anonymous = Actor{Role: RoleAnonymous}
