package ids

import (
	"strings"

	"github.com/google/uuid"
)

// New returns an opaque identifier: a random (v4) UUID with the hyphens removed.
func New() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
