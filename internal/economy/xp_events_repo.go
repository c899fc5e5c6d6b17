package economy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/pkg/db/models"
)

// XPEventRepository appends to and reads the immutable XP ledger.
type XPEventRepository interface {
	WithTx(tx *gorm.DB) XPEventRepository
	Append(ctx context.Context, event *models.XPEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.XPEvent, error)
}

type xpEventRepositoryImpl struct {
	db *gorm.DB
}

// NewXPEventRepository returns a ledger repository bound to the provided database.
func NewXPEventRepository(db *gorm.DB) XPEventRepository {
	return &xpEventRepositoryImpl{db: db}
}

func (r *xpEventRepositoryImpl) WithTx(tx *gorm.DB) XPEventRepository {
	if tx == nil {
		return r
	}
	return &xpEventRepositoryImpl{db: tx}
}

func (r *xpEventRepositoryImpl) Append(ctx context.Context, event *models.XPEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *xpEventRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.XPEvent, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var events []models.XPEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
