package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/go-transit-auth/access"
	"github.com/jrsteele09/go-transit-auth/clients"
	fakeclientrepo "github.com/jrsteele09/go-transit-auth/clients/fakerepo"
	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) (*access.Resolver, *fakeclientrepo.FakeClientRepo) {
	t.Helper()
	repo := fakeclientrepo.NewFakeClientRepo()
	repo.Upsert(&clients.Client{Key: "abc123", Scopes: clients.ParseScopes("gtfs,search"), SessionInactiveDays: 7, SessionMaxDays: 30})
	repo.Upsert(&clients.Client{Key: "bare", Scopes: []string{}})
	return access.NewResolver(repo), repo
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	resolver, _ := newResolver(t)

	tests := []struct {
		name       string
		header     string
		wantScopes []string
		wantKey    string
		wantErr    error
	}{
		{"no header", "", []string{"public"}, "", nil},
		{"known client", "Token abc123", []string{"gtfs", "public", "search"}, "abc123", nil},
		{"case insensitive scheme", "tOkEn abc123", []string{"gtfs", "public", "search"}, "abc123", nil},
		{"client without grants", "Token bare", []string{"public"}, "bare", nil},
		{"unknown client", "Token nope", []string{"public"}, "nope", nil},
		{"bearer scheme", "Bearer abc123", []string{}, "", autherr.ErrHeaderFormat},
		{"missing key", "Token ", []string{}, "", autherr.ErrHeaderFormat},
		{"extra field", "Token abc 123", []string{}, "", autherr.ErrHeaderFormat},
		{"no separator", "Tokenabc123", []string{}, "", autherr.ErrHeaderFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scopes, key, err := resolver.Resolve(ctx, tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Equal(t, autherr.KindValidation, autherr.KindOf(err))
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantScopes, scopes.List())
			require.Equal(t, tt.wantKey, key)
		})
	}
}

func TestResolver_StoreFailure(t *testing.T) {
	resolver, repo := newResolver(t)
	repo.Err = errors.New("connection refused")

	scopes, key, err := resolver.Resolve(context.Background(), "Token abc123")
	require.ErrorIs(t, err, autherr.ErrServer)
	require.Empty(t, scopes)
	require.Equal(t, "abc123", key)
}

func TestResolver_RecordsOutcomes(t *testing.T) {
	ctx := context.Background()
	repo := fakeclientrepo.NewFakeClientRepo()
	repo.Upsert(&clients.Client{Key: "abc123", Scopes: []string{"gtfs"}})
	m := metrics.New(prometheus.NewRegistry())
	resolver := access.NewResolver(repo, access.WithMetrics(m))

	_, _, _ = resolver.Resolve(ctx, "")
	_, _, _ = resolver.Resolve(ctx, "Token abc123")
	_, _, _ = resolver.Resolve(ctx, "Token abc123")
	_, _, _ = resolver.Resolve(ctx, "Basic xyz")

	require.Equal(t, 1.0, testutil.ToFloat64(m.AccessResolutions.WithLabelValues("anonymous")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.AccessResolutions.WithLabelValues("granted")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.AccessResolutions.WithLabelValues("bad_header")))
}
