package auth

import (
	"errors"
	"time"
)

// ErrNotAuthorized is returned when a principal authenticates correctly
// but lacks administrative privilege. It is distinct from a credential
// failure so callers can answer 403 instead of 400.
var ErrNotAuthorized = errors.New("auth: principal is not an administrator")

// Principal is an administrative account. The auth core only ever reads
// principals; account creation and management happen out-of-band.
type Principal struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
}

// IsAdmin reports whether the principal may use the administrative API.
func (p *Principal) IsAdmin() bool {
	return p.IsStaff || p.IsSuperuser
}

// RequireAdmin returns ErrNotAuthorized for a principal that
// authenticated correctly but may not use the administrative API.
func (p *Principal) RequireAdmin() error {
	if !p.IsAdmin() {
		return ErrNotAuthorized
	}
	return nil
}
