package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/shaunplee/superlists/internal/mail"
	"github.com/shaunplee/superlists/internal/models"
)

const (
	loginRequestedTopic = "superlists.logins.requested"
	loginSucceededTopic = "superlists.logins.succeeded"

	defaultTokenTTL   = 24 * time.Hour
	defaultSessionTTL = 14 * 24 * time.Hour

	sendTimeout = 10 * time.Second
)

var loginEmailFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "superlists_login_email_failures_total",
	Help: "Login emails that could not be delivered.",
})

// Publisher emits account events; publishing failures are logged, never
// surfaced.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Config controls token and session lifetimes and where login links point.
type Config struct {
	SiteBaseURL string
	TokenTTL    time.Duration
	SessionTTL  time.Duration
}

// ClientInfo is recorded with each issued token for audit.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// Service implements passwordless login: it issues one-time emailed tokens
// and exchanges them for sessions. Safe for concurrent use.
type Service struct {
	store  Store
	sender mail.Sender
	events Publisher
	cfg    Config
	log    zerolog.Logger

	now func() time.Time
}

// NewService wires a Service. events may be nil; sender must not be.
func NewService(store Store, sender mail.Sender, events Publisher, cfg Config, log zerolog.Logger) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	return &Service{
		store:  store,
		sender: sender,
		events: events,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// IssueToken creates a one-time login token for the email and mails the
// redemption link. The token value is a uuid, so concurrent issuance needs no
// coordination and two tokens for one email always differ. Registration is
// implicit: the email is stored as given, even if malformed. Mail delivery is
// detached from the request; its failure is logged and counted but never
// blocks issuance.
func (s *Service) IssueToken(ctx context.Context, email string, client ClientInfo) (models.Token, error) {
	token := models.Token{
		UID:       uuid.NewString(),
		Email:     strings.TrimSpace(email),
		ExpiresAt: s.now().Add(s.cfg.TokenTTL),
		Meta: datatypes.JSONMap{
			"ip":         client.IP,
			"user_agent": client.UserAgent,
		},
	}
	if err := s.store.InsertToken(ctx, &token); err != nil {
		return models.Token{}, err
	}

	go s.sendLoginEmail(token)

	s.publish(ctx, loginRequestedTopic, map[string]any{"email": token.Email})
	return token, nil
}

func (s *Service) sendLoginEmail(token models.Token) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	body, err := renderLoginEmail(loginEmailParams{
		Email:    token.Email,
		LoginURL: s.loginURL(token.UID),
		TTL:      s.cfg.TokenTTL,
	})
	if err == nil {
		err = s.sender.Send(ctx, token.Email, loginEmailSubject, body)
	}
	if err != nil {
		loginEmailFailures.Inc()
		s.log.Error().Err(err).Str("email", token.Email).Msg("send login email")
	}
}

func (s *Service) loginURL(uid string) string {
	base := strings.TrimRight(s.cfg.SiteBaseURL, "/")
	return fmt.Sprintf("%s/accounts/login?token=%s", base, url.QueryEscape(uid))
}

// Redeem exchanges a token uid for an authenticated session. The token is
// consumed atomically, so a captured link cannot be replayed; unknown,
// expired, and already consumed tokens all fail with ErrInvalidToken. The
// user record is created on first login, keyed by lowercased email.
func (s *Service) Redeem(ctx context.Context, uid string) (models.User, models.Session, error) {
	token, err := s.store.GetToken(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return models.User{}, models.Session{}, ErrInvalidToken
		}
		return models.User{}, models.Session{}, err
	}

	now := s.now()
	if !token.Valid(now) {
		return models.User{}, models.Session{}, ErrInvalidToken
	}

	consumed, err := s.store.ConsumeToken(ctx, uid, now)
	if err != nil {
		return models.User{}, models.Session{}, err
	}
	if !consumed {
		return models.User{}, models.Session{}, ErrInvalidToken
	}

	user, err := s.store.UpsertUser(ctx, strings.ToLower(token.Email))
	if err != nil {
		return models.User{}, models.Session{}, err
	}

	session := models.Session{
		Token:     uuid.NewString(),
		Email:     user.Email,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.store.InsertSession(ctx, &session); err != nil {
		return models.User{}, models.Session{}, err
	}

	s.publish(ctx, loginSucceededTopic, map[string]any{"email": user.Email})
	return user, session, nil
}

// SessionUser resolves a session cookie value to its user. Unknown, expired,
// and revoked sessions fail with ErrInvalidToken; callers treat that as
// anonymous.
func (s *Service) SessionUser(ctx context.Context, sessionToken string) (models.User, error) {
	session, err := s.store.GetSession(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return models.User{}, ErrInvalidToken
		}
		return models.User{}, err
	}
	if !session.Active(s.now()) {
		return models.User{}, ErrInvalidToken
	}
	return models.User{Email: session.Email}, nil
}

// Logout revokes the session; revoking an unknown session is a no-op.
func (s *Service) Logout(ctx context.Context, sessionToken string) error {
	return s.store.RevokeSession(ctx, sessionToken, s.now())
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		s.log.Debug().Err(err).Str("subject", subject).Msg("publish event")
	}
}
