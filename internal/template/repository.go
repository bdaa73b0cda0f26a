package template

import (
	"context"
	"time"

	"shared-daily-menu/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	ListByRoom(ctx context.Context, roomID string) ([]domain.Template, error)
	FindInRoom(ctx context.Context, roomID, templateID string) (*domain.Template, error)
	Create(ctx context.Context, t *domain.Template) error
	DeleteInRoom(ctx context.Context, roomID, templateID string) (int64, error)
}

type TemplateRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new template repository
func NewRepository(db *gorm.DB) TemplateRepository {
	return &TemplateRepositoryImpl{db: db}
}

func (r *TemplateRepositoryImpl) ListByRoom(ctx context.Context, roomID string) ([]domain.Template, error) {
	var templates []domain.Template
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("template_items.order_index ASC")
		}).
		Find(&templates).Error
	return templates, err
}

func (r *TemplateRepositoryImpl) FindInRoom(ctx context.Context, roomID, templateID string) (*domain.Template, error) {
	var t domain.Template
	err := r.db.WithContext(ctx).
		Where("id = ? AND room_id = ?", templateID, roomID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("template_items.order_index ASC")
		}).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepositoryImpl) Create(ctx context.Context, t *domain.Template) error {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	for i := range t.Items {
		t.Items[i].TemplateID = t.ID
	}
	return r.db.WithContext(ctx).Create(t).Error
}

// DeleteInRoom deletes scoped by (id, roomId) jointly so a guessed id
// from another room matches zero rows.
func (r *TemplateRepositoryImpl) DeleteInRoom(ctx context.Context, roomID, templateID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND room_id = ?", templateID, roomID).
		Delete(&domain.Template{})
	return result.RowsAffected, result.Error
}
