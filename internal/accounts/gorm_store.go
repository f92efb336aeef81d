package accounts

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shaunplee/superlists/internal/models"
)

// GormStore persists tokens, sessions, and users through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wires a GormStore over the shared database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InsertToken(ctx context.Context, token *models.Token) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormStore) GetToken(ctx context.Context, uid string) (models.Token, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var token models.Token
	err := s.db.WithContext(ctx).First(&token, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Token{}, ErrInvalidToken
	}
	if err != nil {
		return models.Token{}, err
	}
	return token, nil
}

func (s *GormStore) ConsumeToken(ctx context.Context, uid string, at time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	// Conditional update: of two racing redemptions only one affects a row.
	res := s.db.WithContext(ctx).
		Model(&models.Token{}).
		Where("uid = ? AND consumed_at IS NULL", uid).
		Update("consumed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) UpsertUser(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	user := models.User{Email: email}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *GormStore) InsertSession(ctx context.Context, session *models.Session) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Create(session).Error
}

func (s *GormStore) GetSession(ctx context.Context, token string) (models.Session, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var session models.Session
	err := s.db.WithContext(ctx).First(&session, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Session{}, ErrInvalidToken
	}
	if err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (s *GormStore) RevokeSession(ctx context.Context, token string, at time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", at).Error
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}
