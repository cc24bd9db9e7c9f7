package clients_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-transit-auth/clients"
	"github.com/stretchr/testify/require"
)

func TestParseScopes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "gtfs", []string{"gtfs"}},
		{"list", "gtfs,search", []string{"gtfs", "search"}},
		{"spaces and blanks", " gtfs , ,search,", []string{"gtfs", "search"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, clients.ParseScopes(tt.in))
		})
	}
	require.Equal(t, "gtfs,search", clients.FormatScopes([]string{"gtfs", "search"}))
}

func TestClient_Windows(t *testing.T) {
	c := &clients.Client{SessionInactiveDays: 7, SessionMaxDays: 30}

	require.Equal(t, 7*24*time.Hour, c.InactiveWindow())
	require.Equal(t, 30*24*time.Hour, c.MaxLifetime())
}
