package menu

import (
	"context"
	"errors"
	"time"

	"shared-daily-menu/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

type MenuRepository interface {
	FindDailyMenu(ctx context.Context, roomID string, date time.Time) (*domain.DailyMenu, error)
	FindDailyMenuByID(ctx context.Context, id string) (*domain.DailyMenu, error)
	EnsureDailyMenu(ctx context.Context, roomID string, date time.Time) (*domain.DailyMenu, error)
	ActiveItems(ctx context.Context, dailyMenuID string) ([]domain.MenuItem, error)
	CreateItemForDate(ctx context.Context, roomID string, date time.Time, item *domain.MenuItem) error
	CreateItems(ctx context.Context, items []domain.MenuItem) error
	FindActiveItem(ctx context.Context, roomID, itemID string) (*domain.MenuItem, error)
	UpdateItemName(ctx context.Context, itemID, name string) error
	SoftDeleteItem(ctx context.Context, itemID string, at time.Time) error
	ActiveNeighbor(ctx context.Context, dailyMenuID string, orderIndex int, direction Direction) (*domain.MenuItem, error)
	SwapOrderIndex(ctx context.Context, a, b *domain.MenuItem) error
}

type MenuRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new menu repository
func NewRepository(db *gorm.DB) MenuRepository {
	return &MenuRepositoryImpl{db: db}
}

// FindDailyMenu returns nil without error when no menu exists for the
// day: an absent menu reads as an empty list.
func (r *MenuRepositoryImpl) FindDailyMenu(ctx context.Context, roomID string, date time.Time) (*domain.DailyMenu, error) {
	var menu domain.DailyMenu
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND date = ?", roomID, date).
		First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *MenuRepositoryImpl) FindDailyMenuByID(ctx context.Context, id string) (*domain.DailyMenu, error) {
	var menu domain.DailyMenu
	err := r.db.WithContext(ctx).First(&menu, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

// EnsureDailyMenu lazily creates the menu row for (room, day). The
// upsert is idempotent: concurrent callers converge on the one row.
func (r *MenuRepositoryImpl) EnsureDailyMenu(ctx context.Context, roomID string, date time.Time) (*domain.DailyMenu, error) {
	return ensureDailyMenu(r.db.WithContext(ctx), roomID, date)
}

func ensureDailyMenu(tx *gorm.DB, roomID string, date time.Time) (*domain.DailyMenu, error) {
	menu := domain.DailyMenu{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&menu).Error
	if err != nil {
		return nil, err
	}

	// Re-read so a lost upsert race still yields the winning row.
	var existing domain.DailyMenu
	if err := tx.Where("room_id = ? AND date = ?", roomID, date).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *MenuRepositoryImpl) ActiveItems(ctx context.Context, dailyMenuID string) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := r.db.WithContext(ctx).
		Where("daily_menu_id = ? AND deleted_at IS NULL", dailyMenuID).
		Order("order_index ASC").
		Find(&items).Error
	return items, err
}

// CreateItemForDate appends an item to the day's list. Menu upsert,
// running-max read, and insert happen in one transaction so
// concurrent adds never assign colliding indices.
func (r *MenuRepositoryImpl) CreateItemForDate(ctx context.Context, roomID string, date time.Time, item *domain.MenuItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		menu, err := ensureDailyMenu(tx, roomID, date)
		if err != nil {
			return err
		}

		var next int
		if err := tx.Model(&domain.MenuItem{}).
			Where("daily_menu_id = ? AND deleted_at IS NULL", menu.ID).
			Select("COALESCE(MAX(order_index), -1) + 1").
			Scan(&next).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		item.ID = uuid.NewString()
		item.DailyMenuID = menu.ID
		item.OrderIndex = next
		item.CreatedAt = now
		item.UpdatedAt = now
		return tx.Create(item).Error
	})
}

func (r *MenuRepositoryImpl) CreateItems(ctx context.Context, items []domain.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// FindActiveItem loads an item scoped to the caller's room. Deleted
// items and items from other rooms read as absent.
func (r *MenuRepositoryImpl) FindActiveItem(ctx context.Context, roomID, itemID string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := r.db.WithContext(ctx).
		Joins("JOIN daily_menus ON daily_menus.id = menu_items.daily_menu_id").
		Where("menu_items.id = ? AND daily_menus.room_id = ? AND menu_items.deleted_at IS NULL", itemID, roomID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MenuRepositoryImpl) UpdateItemName(ctx context.Context, itemID, name string) error {
	return r.db.WithContext(ctx).Model(&domain.MenuItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{"name": name, "updated_at": time.Now().UTC()}).Error
}

// SoftDeleteItem marks the item deleted. Sibling indices are not
// renumbered; gaps are harmless since order is comparative.
func (r *MenuRepositoryImpl) SoftDeleteItem(ctx context.Context, itemID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.MenuItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{"deleted_at": at, "updated_at": at}).Error
}

// ActiveNeighbor finds the nearest active item strictly before ("up")
// or after ("down") the given index. Returns nil when the item is
// already at the boundary.
func (r *MenuRepositoryImpl) ActiveNeighbor(ctx context.Context, dailyMenuID string, orderIndex int, direction Direction) (*domain.MenuItem, error) {
	query := r.db.WithContext(ctx).
		Where("daily_menu_id = ? AND deleted_at IS NULL", dailyMenuID)
	if direction == DirectionUp {
		query = query.Where("order_index < ?", orderIndex).Order("order_index DESC")
	} else {
		query = query.Where("order_index > ?", orderIndex).Order("order_index ASC")
	}

	var neighbor domain.MenuItem
	err := query.First(&neighbor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &neighbor, nil
}

// SwapOrderIndex exchanges the two items' index values. Both updates
// apply in one transaction: a reader must never observe a half-applied
// swap or two active items sharing an index.
func (r *MenuRepositoryImpl) SwapOrderIndex(ctx context.Context, a, b *domain.MenuItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Model(&domain.MenuItem{}).
			Where("id = ?", a.ID).
			Updates(map[string]any{"order_index": b.OrderIndex, "updated_at": now}).Error; err != nil {
			return err
		}
		return tx.Model(&domain.MenuItem{}).
			Where("id = ?", b.ID).
			Updates(map[string]any{"order_index": a.OrderIndex, "updated_at": now}).Error
	})
}
