package clients

import (
	"strings"
	"time"
)

const day = 24 * time.Hour

// Client is a registered API consumer, identified by an opaque key. Its session
// settings bound the lifetime of every session opened through it.
type Client struct {
	ID                  int64    `json:"id"`
	Key                 string   `json:"key"`
	Scopes              []string `json:"scopes"`              // Granted scopes, excluding the implicit "public"
	SessionInactiveDays int      `json:"sessionInactiveDays"` // Sliding inactivity window
	SessionMaxDays      int      `json:"sessionMaxDays"`      // Absolute session lifetime
}

// InactiveWindow is the sliding inactivity window as a duration.
func (c *Client) InactiveWindow() time.Duration {
	return time.Duration(c.SessionInactiveDays) * day
}

// MaxLifetime is the absolute session lifetime as a duration.
func (c *Client) MaxLifetime() time.Duration {
	return time.Duration(c.SessionMaxDays) * day
}

// ParseScopes splits the stored comma separated scope list ("gtfs,search").
func ParseScopes(scopes string) []string {
	result := []string{}
	for _, s := range strings.Split(scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// FormatScopes is the inverse of ParseScopes.
func FormatScopes(scopes []string) string {
	return strings.Join(scopes, ",")
}
