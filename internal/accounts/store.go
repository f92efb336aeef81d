package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/shaunplee/superlists/internal/models"
)

// ErrInvalidToken is returned when a login token or session token is unknown,
// expired, consumed, or revoked. Callers redirect home without a session and
// show no error.
var ErrInvalidToken = errors.New("invalid token")

// Store is the persistence boundary for identities, login tokens, and
// sessions.
type Store interface {
	InsertToken(ctx context.Context, token *models.Token) error

	// GetToken looks up a login token by uid; ErrInvalidToken if unknown.
	GetToken(ctx context.Context, uid string) (models.Token, error)

	// ConsumeToken marks the token consumed at the given time. It must be
	// atomic: of two racing redemptions exactly one observes consumed=true.
	ConsumeToken(ctx context.Context, uid string, at time.Time) (consumed bool, err error)

	// UpsertUser ensures a user record exists for the (lowercased) email.
	UpsertUser(ctx context.Context, email string) (models.User, error)

	InsertSession(ctx context.Context, session *models.Session) error

	// GetSession looks up a session by token; ErrInvalidToken if unknown.
	GetSession(ctx context.Context, token string) (models.Session, error)

	// RevokeSession marks the session revoked. Revoking an unknown or
	// already revoked session is a no-op.
	RevokeSession(ctx context.Context, token string, at time.Time) error
}
