package menu

import (
	"context"
	defError "errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"shared-daily-menu/internal/dates"
	"shared-daily-menu/internal/domain"
	"shared-daily-menu/internal/errors"
	"shared-daily-menu/internal/worker"
	"shared-daily-menu/redis"

	"gorm.io/gorm"
)

const maxItemNameLength = 100

type Service interface {
	ListItems(ctx context.Context, actor *domain.Actor, dateYmd string) (*DailyMenuResponse, error)
	AddItem(ctx context.Context, actor *domain.Actor, dateYmd, name string) (*ItemResponse, error)
	RenameItem(ctx context.Context, actor *domain.Actor, itemID, name string) (*ItemResponse, error)
	DeleteItem(ctx context.Context, actor *domain.Actor, itemID string) error
	MoveItem(ctx context.Context, actor *domain.Actor, itemID string, direction Direction) (*MoveResponse, error)
}

type DefaultService struct {
	repository MenuRepository
	cache      *redis.Cache
	pool       *worker.WorkerPool
}

func NewService(repository MenuRepository, cache *redis.Cache, pool *worker.WorkerPool) Service {
	return &DefaultService{
		repository: repository,
		cache:      cache,
		pool:       pool,
	}
}

type ItemResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AddedBy    string `json:"addedBy"`
	OrderIndex int    `json:"orderIndex"`
}

// ListItemResponse adds the per-requester edit flag to the item shape.
// The flag is always emitted, false included.
type ListItemResponse struct {
	ItemResponse
	CanEdit bool `json:"canEdit"`
}

type DailyMenuResponse struct {
	Date    string             `json:"date"`
	Items   []ListItemResponse `json:"items"`
	IsOwner bool               `json:"isOwner"`
}

type MoveResponse struct {
	OK    bool `json:"ok"`
	Moved bool `json:"moved"`
}

func (s *DefaultService) ListItems(ctx context.Context, actor *domain.Actor, dateYmd string) (*DailyMenuResponse, error) {
	if dateYmd == "" {
		dateYmd = dates.Today()
	}
	date, err := dates.ToInstant(dateYmd)
	if err != nil {
		return nil, err
	}
	// Alias spellings of one civil day ("2024-02-31", "2024-03-02")
	// must share cache keys, so the key string is always derived from
	// the normalized instant.
	dateYmd = dates.FromInstant(date)

	items, err := s.activeItemsCached(ctx, actor.RoomID, dateYmd, date)
	if err != nil {
		return nil, err
	}

	resp := &DailyMenuResponse{
		Date:    dateYmd,
		Items:   make([]ListItemResponse, 0, len(items)),
		IsOwner: actor.IsOwner,
	}
	for i := range items {
		it := &items[i]
		resp.Items = append(resp.Items, ListItemResponse{
			ItemResponse: ItemResponse{
				ID:         it.ID,
				Name:       it.Name,
				AddedBy:    it.CreatedByDisplayName,
				OrderIndex: it.OrderIndex,
			},
			CanEdit: actor.CanEdit(it),
		})
	}
	return resp, nil
}

// activeItemsCached serves the day's rows from the versioned cache.
// The cached value is requester-neutral; canEdit is computed per
// request by the caller.
func (s *DefaultService) activeItemsCached(ctx context.Context, roomID, dateYmd string, date time.Time) ([]domain.MenuItem, error) {
	versionKey := VersionKey(roomID, dateYmd)
	v := s.cache.GetVersion(ctx, versionKey)
	cacheKey := fmt.Sprintf("menu:r:%s:d:%s:v:%d", roomID, dateYmd, v)

	var cached []domain.MenuItem
	found, _ := s.cache.Get(ctx, cacheKey, &cached)
	if found {
		return cached, nil
	}

	menu, err := s.repository.FindDailyMenu(ctx, roomID, date)
	if err != nil {
		return nil, err
	}
	items := []domain.MenuItem{}
	if menu != nil {
		items, err = s.repository.ActiveItems(ctx, menu.ID)
		if err != nil {
			return nil, err
		}
	}

	// populate the cache off the request path
	snapshot := items
	s.pool.Submit(func(taskCtx context.Context) error {
		return s.cache.Set(taskCtx, cacheKey, snapshot, 24*time.Hour)
	})

	return items, nil
}

func (s *DefaultService) AddItem(ctx context.Context, actor *domain.Actor, dateYmd, name string) (*ItemResponse, error) {
	if dateYmd == "" {
		dateYmd = dates.Today()
	}
	date, err := dates.ToInstant(dateYmd)
	if err != nil {
		return nil, err
	}
	dateYmd = dates.FromInstant(date)

	name, err = validateItemName(name)
	if err != nil {
		return nil, err
	}

	item := &domain.MenuItem{
		Name:                 name,
		CreatedByDeviceHash:  actor.DeviceHash,
		CreatedByDisplayName: actor.DisplayName,
	}
	if err := s.repository.CreateItemForDate(ctx, actor.RoomID, date, item); err != nil {
		return nil, err
	}

	s.bumpVersion(ctx, actor.RoomID, dateYmd)

	return &ItemResponse{
		ID:         item.ID,
		Name:       item.Name,
		AddedBy:    item.CreatedByDisplayName,
		OrderIndex: item.OrderIndex,
	}, nil
}

func (s *DefaultService) RenameItem(ctx context.Context, actor *domain.Actor, itemID, name string) (*ItemResponse, error) {
	item, err := s.loadEditableItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}

	name, err = validateItemName(name)
	if err != nil {
		return nil, err
	}

	// Only the name changes: createdByDisplayName keeps the original
	// author's attribution even after an owner rename.
	if err := s.repository.UpdateItemName(ctx, item.ID, name); err != nil {
		return nil, err
	}

	s.bumpVersionForMenu(ctx, actor.RoomID, item.DailyMenuID)

	return &ItemResponse{
		ID:         item.ID,
		Name:       name,
		AddedBy:    item.CreatedByDisplayName,
		OrderIndex: item.OrderIndex,
	}, nil
}

func (s *DefaultService) DeleteItem(ctx context.Context, actor *domain.Actor, itemID string) error {
	item, err := s.loadEditableItem(ctx, actor, itemID)
	if err != nil {
		return err
	}

	if err := s.repository.SoftDeleteItem(ctx, item.ID, time.Now().UTC()); err != nil {
		return err
	}

	s.bumpVersionForMenu(ctx, actor.RoomID, item.DailyMenuID)
	return nil
}

func (s *DefaultService) MoveItem(ctx context.Context, actor *domain.Actor, itemID string, direction Direction) (*MoveResponse, error) {
	if direction != DirectionUp && direction != DirectionDown {
		return nil, errors.BadRequest("direction must be up/down", nil)
	}

	item, err := s.loadEditableItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}

	neighbor, err := s.repository.ActiveNeighbor(ctx, item.DailyMenuID, item.OrderIndex, direction)
	if err != nil {
		return nil, err
	}
	if neighbor == nil {
		// already first/last, nothing to exchange
		return &MoveResponse{OK: true, Moved: false}, nil
	}

	if err := s.repository.SwapOrderIndex(ctx, item, neighbor); err != nil {
		return nil, err
	}

	s.bumpVersionForMenu(ctx, actor.RoomID, item.DailyMenuID)
	return &MoveResponse{OK: true, Moved: true}, nil
}

// loadEditableItem resolves an item within the actor's room and
// enforces the edit gate: owner, or the item's original author.
func (s *DefaultService) loadEditableItem(ctx context.Context, actor *domain.Actor, itemID string) (*domain.MenuItem, error) {
	item, err := s.repository.FindActiveItem(ctx, actor.RoomID, itemID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("item not found", err)
		}
		return nil, err
	}

	if !actor.CanEdit(item) {
		return nil, errors.Forbidden("forbidden", nil)
	}
	return item, nil
}

func validateItemName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.BadRequest("name required", nil)
	}
	if utf8.RuneCountInString(name) > maxItemNameLength {
		return "", errors.BadRequest("name too long", nil)
	}
	return name, nil
}

// VersionKey is the cache version key for one room's day. Bumping it
// invalidates every cached read of that day.
func VersionKey(roomID, dateYmd string) string {
	return fmt.Sprintf("menu:r:%s:d:%s:version", roomID, dateYmd)
}

func (s *DefaultService) bumpVersion(ctx context.Context, roomID, dateYmd string) {
	s.cache.IncrementVersion(ctx, VersionKey(roomID, dateYmd))
}

// bumpVersionForMenu invalidates the cached day an item belongs to.
// Item mutations arrive keyed by item id, so the day is recovered from
// the menu row.
func (s *DefaultService) bumpVersionForMenu(ctx context.Context, roomID, dailyMenuID string) {
	menu, err := s.repository.FindDailyMenuByID(ctx, dailyMenuID)
	if err != nil || menu == nil {
		return
	}
	s.bumpVersion(ctx, roomID, dates.FromInstant(menu.Date))
}
