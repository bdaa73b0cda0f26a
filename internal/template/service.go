package template

import (
	"context"
	defError "errors"
	"strings"
	"time"
	"unicode/utf8"

	"shared-daily-menu/internal/dates"
	"shared-daily-menu/internal/domain"
	"shared-daily-menu/internal/errors"
	"shared-daily-menu/internal/menu"
	"shared-daily-menu/redis"

	"gorm.io/gorm"
)

const maxTemplateNameLength = 50

// MenuProvider is the slice of the menu repository templates need:
// reading a day's active items for a snapshot, and materializing rows
// onto a target day.
type MenuProvider interface {
	FindDailyMenu(ctx context.Context, roomID string, date time.Time) (*domain.DailyMenu, error)
	EnsureDailyMenu(ctx context.Context, roomID string, date time.Time) (*domain.DailyMenu, error)
	ActiveItems(ctx context.Context, dailyMenuID string) ([]domain.MenuItem, error)
	CreateItems(ctx context.Context, items []domain.MenuItem) error
}

type Service interface {
	ListTemplates(ctx context.Context, actor *domain.Actor) ([]TemplateResponse, error)
	SaveTemplate(ctx context.Context, actor *domain.Actor, dateYmd, name string) (*TemplateResponse, error)
	ApplyTemplate(ctx context.Context, actor *domain.Actor, templateID, dateYmd string) (*ApplyResponse, error)
	DeleteTemplate(ctx context.Context, actor *domain.Actor, templateID string) error
}

type DefaultService struct {
	repository TemplateRepository
	menus      MenuProvider
	cache      *redis.Cache
}

func NewService(repository TemplateRepository, menus MenuProvider, cache *redis.Cache) Service {
	return &DefaultService{
		repository: repository,
		menus:      menus,
		cache:      cache,
	}
}

type TemplateResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

type ApplyResponse struct {
	OK      bool `json:"ok"`
	Applied int  `json:"applied"`
}

func (s *DefaultService) ListTemplates(ctx context.Context, actor *domain.Actor) ([]TemplateResponse, error) {
	templates, err := s.repository.ListByRoom(ctx, actor.RoomID)
	if err != nil {
		return nil, err
	}

	result := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		result = append(result, TemplateResponse{
			ID:        t.ID,
			Name:      t.Name,
			Count:     len(t.Items),
			CreatedAt: t.CreatedAt,
		})
	}
	return result, nil
}

// SaveTemplate snapshots the day's active items by value. The copy is
// disconnected from any later mutation of the source day.
func (s *DefaultService) SaveTemplate(ctx context.Context, actor *domain.Actor, dateYmd, name string) (*TemplateResponse, error) {
	if !actor.IsOwner {
		return nil, errors.Forbidden("only owner can save template", nil)
	}

	name = strings.TrimSpace(name)
	if name == "" || dateYmd == "" {
		return nil, errors.BadRequest("name and date required", nil)
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLength {
		return nil, errors.BadRequest("name too long", nil)
	}

	date, err := dates.ToInstant(dateYmd)
	if err != nil {
		return nil, err
	}

	daily, err := s.menus.FindDailyMenu(ctx, actor.RoomID, date)
	if err != nil {
		return nil, err
	}
	var items []domain.MenuItem
	if daily != nil {
		items, err = s.menus.ActiveItems(ctx, daily.ID)
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, errors.BadRequest("no items to save", nil)
	}

	t := &domain.Template{
		RoomID:              actor.RoomID,
		Name:                name,
		CreatedByDeviceHash: actor.DeviceHash,
		Items:               make([]domain.TemplateItem, 0, len(items)),
	}
	for _, it := range items {
		t.Items = append(t.Items, domain.TemplateItem{
			Name:       it.Name,
			OrderIndex: it.OrderIndex,
		})
	}

	if err := s.repository.Create(ctx, t); err != nil {
		return nil, err
	}

	return &TemplateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Count:     len(t.Items),
		CreatedAt: t.CreatedAt,
	}, nil
}

// ApplyTemplate bulk-inserts one item per template row onto the target
// day, attributed to the applying actor. Templates are additive
// overlays: applying twice duplicates, never merges.
func (s *DefaultService) ApplyTemplate(ctx context.Context, actor *domain.Actor, templateID, dateYmd string) (*ApplyResponse, error) {
	if !actor.IsOwner {
		return nil, errors.Forbidden("only owner can apply template", nil)
	}

	if dateYmd == "" {
		return nil, errors.BadRequest("date required", nil)
	}
	date, err := dates.ToInstant(dateYmd)
	if err != nil {
		return nil, err
	}

	t, err := s.repository.FindInRoom(ctx, actor.RoomID, templateID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("template not found", err)
		}
		return nil, err
	}

	daily, err := s.menus.EnsureDailyMenu(ctx, actor.RoomID, date)
	if err != nil {
		return nil, err
	}

	items := make([]domain.MenuItem, 0, len(t.Items))
	for _, ti := range t.Items {
		items = append(items, domain.MenuItem{
			DailyMenuID:          daily.ID,
			Name:                 ti.Name,
			OrderIndex:           ti.OrderIndex,
			CreatedByDeviceHash:  actor.DeviceHash,
			CreatedByDisplayName: actor.DisplayName,
		})
	}
	if err := s.menus.CreateItems(ctx, items); err != nil {
		return nil, err
	}

	s.cache.IncrementVersion(ctx, menu.VersionKey(actor.RoomID, dateYmd))

	return &ApplyResponse{OK: true, Applied: len(items)}, nil
}

func (s *DefaultService) DeleteTemplate(ctx context.Context, actor *domain.Actor, templateID string) error {
	if !actor.IsOwner {
		return errors.Forbidden("only owner can delete template", nil)
	}

	deleted, err := s.repository.DeleteInRoom(ctx, actor.RoomID, templateID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return errors.NotFound("template not found", nil)
	}
	return nil
}
