// Package auth maps authenticated identities to roles. The OAuth exchange and
// session handling live in front of this service; requests arrive with the
// caller's email in a trusted header.
package auth

import (
	"net/http"
	"strings"

	"newsobserver/internal/domain"
)

// RolePolicy derives roles from a configured set of admin identities.
type RolePolicy struct {
	admins map[string]struct{}
}

// NewRolePolicy normalizes the admin emails; blanks are ignored.
func NewRolePolicy(adminEmails []string) RolePolicy {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		if key := normalizeEmail(email); key != "" {
			admins[key] = struct{}{}
		}
	}
	return RolePolicy{admins: admins}
}

// DeriveRole returns RoleAdmin for configured admins and RoleUser otherwise.
func (p RolePolicy) DeriveRole(identity domain.Identity) domain.Role {
	key := normalizeEmail(identity.Email)
	if key == "" {
		return domain.RoleUser
	}
	if _, ok := p.admins[key]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// IdentityFromRequest reads the identity placed on the request by the auth proxy.
func IdentityFromRequest(r *http.Request, emailHeader, nameHeader string) domain.Identity {
	identity := domain.Identity{
		Email: strings.TrimSpace(r.Header.Get(emailHeader)),
	}
	if nameHeader != "" {
		identity.Name = strings.TrimSpace(r.Header.Get(nameHeader))
	}
	return identity
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
