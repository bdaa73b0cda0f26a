package room

import (
	"context"
	"time"

	"shared-daily-menu/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room, owner *domain.Device) error
	FindByID(ctx context.Context, id string) (*domain.Room, error)
	UpsertDevice(ctx context.Context, device *domain.Device, updateName bool) error
}

type RoomRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new room repository
func NewRepository(db *gorm.DB) RoomRepository {
	return &RoomRepositoryImpl{db: db}
}

// Create creates a room together with its owner's device row.
func (r *RoomRepositoryImpl) Create(ctx context.Context, room *domain.Room, owner *domain.Device) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		room.CreatedAt = now
		if err := tx.Create(room).Error; err != nil {
			return err
		}

		owner.RoomID = room.ID
		owner.CreatedAt = now
		owner.UpdatedAt = now
		return tx.Create(owner).Error
	})
}

func (r *RoomRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// UpsertDevice creates the device row on first contact. The stored
// display name is overwritten only when the caller supplied one
// (last write wins, no merge).
func (r *RoomRepositoryImpl) UpsertDevice(ctx context.Context, device *domain.Device, updateName bool) error {
	now := time.Now().UTC()
	device.CreatedAt = now
	device.UpdatedAt = now

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "device_hash"}},
		DoNothing: true,
	}
	if updateName {
		onConflict.DoNothing = false
		onConflict.DoUpdates = clause.AssignmentColumns([]string{"display_name", "updated_at"})
	}

	return r.db.WithContext(ctx).Clauses(onConflict).Create(device).Error
}
