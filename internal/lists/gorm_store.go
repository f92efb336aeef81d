package lists

import (
	"context"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"github.com/shaunplee/superlists/internal/models"
)

// GormStore persists lists through GORM and serves the read API straight off
// a pgx pool. The gorm handle must be opened with error translation enabled
// so constraint violations surface as gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated.
type GormStore struct {
	db   *gorm.DB
	pool *pgxpool.Pool
}

// NewGormStore wires a GormStore over the shared database handles.
func NewGormStore(db *gorm.DB, pool *pgxpool.Pool) *GormStore {
	return &GormStore{db: db, pool: pool}
}

func (s *GormStore) CreateList(ctx context.Context, list *models.List, first *models.Item) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(list).Error; err != nil {
			return err
		}
		first.ListID = list.ID
		return tx.Create(first).Error
	})
}

func (s *GormStore) GetList(ctx context.Context, id uuid.UUID) (models.List, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var list models.List
	err := s.db.WithContext(ctx).
		Preload("SharedWith").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		First(&list, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.List{}, ErrListNotFound
	}
	if err != nil {
		return models.List{}, err
	}
	return list, nil
}

func (s *GormStore) InsertItem(ctx context.Context, item *models.Item) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := s.db.WithContext(ctx).Create(item).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateItem
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrListNotFound
	default:
		return err
	}
}

func (s *GormStore) ListItems(ctx context.Context, listID uuid.UUID) ([]ItemSummary, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	items := []ItemSummary{}
	err := pgxscan.Select(ctx, s.pool, &items,
		`SELECT id, text FROM items WHERE list_id = $1 ORDER BY seq`, listID)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) ListsOwnedBy(ctx context.Context, email string) ([]models.List, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var owned []models.List
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Where("owner_email = ?", email).
		Order("created_at").
		Find(&owned).Error
	if err != nil {
		return nil, err
	}
	return owned, nil
}

func (s *GormStore) GetUser(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *GormStore) AddShare(ctx context.Context, listID uuid.UUID, email string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Exec(
		`INSERT INTO list_shares (list_id, user_email) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		listID, email).Error
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}
