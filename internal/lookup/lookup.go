// Package lookup resolves the user and client a session or token is bound to.
package lookup

import (
	"context"
	"errors"

	"github.com/jrsteele09/go-transit-auth/clients"
	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/users"
	"golang.org/x/sync/errgroup"
)

// UserAndClient fetches both records concurrently. Either miss surfaces as
// ErrUserNotFound or ErrClientNotFound; any other failure is a server error.
// When both fail, the first failure to return is reported.
func UserAndClient(ctx context.Context, userRepo users.Repo, clientRepo clients.Repo, userPID, clientKey string) (*users.User, *clients.Client, error) {
	var (
		user   *users.User
		client *clients.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := userRepo.GetByPID(gctx, userPID)
		if err != nil {
			return classify("GetByPID", err, autherr.ErrUserNotFound)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		c, err := clientRepo.GetByKey(gctx, clientKey)
		if err != nil {
			return classify("GetByKey", err, autherr.ErrClientNotFound)
		}
		client = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return user, client, nil
}

// Client fetches a single client with the same error classification.
func Client(ctx context.Context, clientRepo clients.Repo, clientKey string) (*clients.Client, error) {
	c, err := clientRepo.GetByKey(ctx, clientKey)
	if err != nil {
		return nil, classify("GetByKey", err, autherr.ErrClientNotFound)
	}
	return c, nil
}

// User fetches a single user with the same error classification.
func User(ctx context.Context, userRepo users.Repo, userPID string) (*users.User, error) {
	u, err := userRepo.GetByPID(ctx, userPID)
	if err != nil {
		return nil, classify("GetByPID", err, autherr.ErrUserNotFound)
	}
	return u, nil
}

func classify(op string, err, notFound error) error {
	if errors.Is(err, notFound) {
		return notFound
	}
	return autherr.Server("[lookup] "+op, err)
}
