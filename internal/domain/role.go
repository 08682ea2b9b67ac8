package domain

// Role is the privilege level derived from an authenticated identity.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsAdmin reports whether the role may create or delete articles.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Identity is what the identity provider tells us about the caller.
// An empty Email means the caller is anonymous.
type Identity struct {
	Email string
	Name  string
}

// Anonymous reports whether no authenticated identity is present.
func (i Identity) Anonymous() bool {
	return i.Email == ""
}
