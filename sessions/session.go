package sessions

import (
	"strings"
	"time"
)

// Session is a server-side login bound to one user and one client. UserPID and
// ClientKey are populated on read from the owning user and client rows.
type Session struct {
	PID       string
	UserID    int64
	ClientID  int64
	UserPID   string
	ClientKey string
	Created   time.Time
	Accessed  time.Time
	Inactive  time.Time // end of the sliding inactivity window
	Expires   time.Time // hard cap, never extended
}

// BelongsTo reports whether the session was issued to userPID. User PIDs compare case-insensitively.
func (s *Session) BelongsTo(userPID string) bool {
	return strings.EqualFold(s.UserPID, userPID)
}

// IssuedTo reports whether the session was created through clientKey.
func (s *Session) IssuedTo(clientKey string) bool {
	return s.ClientKey == clientKey
}

// ActiveAt reports whether both the inactivity window and the hard expiry lie after now.
func (s *Session) ActiveAt(now time.Time) bool {
	return s.Inactive.After(now) && s.Expires.After(now)
}

// Lifetime computes the inactivity and expiry instants of a session created at
// now. The inactivity instant never exceeds the expiry.
func Lifetime(now time.Time, inactiveWindow, maxLifetime time.Duration) (inactive, expires time.Time) {
	expires = now.Add(maxLifetime)
	inactive = now.Add(inactiveWindow)
	if inactive.After(expires) {
		inactive = expires
	}
	return inactive, expires
}
