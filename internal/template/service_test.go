package template

import (
	"context"
	"net/http"
	"testing"
	"time"

	"shared-daily-menu/internal/dates"
	"shared-daily-menu/internal/domain"
	apiError "shared-daily-menu/internal/errors"
	"shared-daily-menu/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockRepository is a mock implementation of the TemplateRepository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Template, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Template), args.Error(1)
}

func (m *MockRepository) FindInRoom(ctx context.Context, roomID, templateID string) (*domain.Template, error) {
	args := m.Called(ctx, roomID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, t *domain.Template) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) DeleteInRoom(ctx context.Context, roomID, templateID string) (int64, error) {
	args := m.Called(ctx, roomID, templateID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMenuProvider is a mock implementation of the MenuProvider interface
type MockMenuProvider struct {
	mock.Mock
}

func (m *MockMenuProvider) FindDailyMenu(ctx context.Context, roomID string, date time.Time) (*domain.DailyMenu, error) {
	args := m.Called(ctx, roomID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyMenu), args.Error(1)
}

func (m *MockMenuProvider) EnsureDailyMenu(ctx context.Context, roomID string, date time.Time) (*domain.DailyMenu, error) {
	args := m.Called(ctx, roomID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyMenu), args.Error(1)
}

func (m *MockMenuProvider) ActiveItems(ctx context.Context, dailyMenuID string) ([]domain.MenuItem, error) {
	args := m.Called(ctx, dailyMenuID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MenuItem), args.Error(1)
}

func (m *MockMenuProvider) CreateItems(ctx context.Context, items []domain.MenuItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func newTestService(repo TemplateRepository, menus MenuProvider) Service {
	return NewService(repo, menus, redis.NewCache(nil))
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	apiErr, ok := err.(*apiError.APIError)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	return apiErr.Status
}

var (
	owner = &domain.Actor{RoomID: "room-1", DeviceHash: "owner-hash", DisplayName: "Alice", IsOwner: true}
	guest = &domain.Actor{RoomID: "room-1", DeviceHash: "guest-hash", DisplayName: "Carol"}
)

func TestListTemplates(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockMenuProvider))

	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mockRepo.On("ListByRoom", mock.Anything, "room-1").Return([]domain.Template{
		{ID: "tpl-1", Name: "Weekday", CreatedAt: created, Items: []domain.TemplateItem{{Name: "Rice"}, {Name: "Soup"}}},
	}, nil)

	result, err := service.ListTemplates(context.Background(), guest)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "Weekday", result[0].Name)
	assert.Equal(t, 2, result[0].Count)
	assert.Equal(t, created, result[0].CreatedAt)
}

func TestSaveTemplate_SnapshotsActiveItems(t *testing.T) {
	mockRepo := new(MockRepository)
	mockMenus := new(MockMenuProvider)
	service := newTestService(mockRepo, mockMenus)

	date, _ := dates.ToInstant("2024-05-01")
	mockMenus.On("FindDailyMenu", mock.Anything, "room-1", date).
		Return(&domain.DailyMenu{ID: "menu-1"}, nil)
	mockMenus.On("ActiveItems", mock.Anything, "menu-1").Return([]domain.MenuItem{
		{ID: "item-1", Name: "Rice", OrderIndex: 0, CreatedByDeviceHash: "guest-hash"},
		{ID: "item-2", Name: "Soup", OrderIndex: 2, CreatedByDeviceHash: "owner-hash"},
	}, nil)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(tpl *domain.Template) bool {
		// names and order copied by value, item authorship not carried
		return tpl.RoomID == "room-1" &&
			tpl.Name == "Weekday" &&
			tpl.CreatedByDeviceHash == "owner-hash" &&
			len(tpl.Items) == 2 &&
			tpl.Items[0].Name == "Rice" && tpl.Items[0].OrderIndex == 0 &&
			tpl.Items[1].Name == "Soup" && tpl.Items[1].OrderIndex == 2
	})).Return(nil).Run(func(args mock.Arguments) {
		tpl := args.Get(1).(*domain.Template)
		tpl.ID = "tpl-1"
		tpl.CreatedAt = time.Now().UTC()
	})

	result, err := service.SaveTemplate(context.Background(), owner, "2024-05-01", " Weekday ")

	assert.NoError(t, err)
	assert.Equal(t, "tpl-1", result.ID)
	assert.Equal(t, 2, result.Count)
	mockRepo.AssertExpectations(t)
}

func TestSaveTemplate_OwnerOnly(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockMenuProvider))

	_, err := service.SaveTemplate(context.Background(), guest, "2024-05-01", "Weekday")

	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaveTemplate_EmptyDay(t *testing.T) {
	mockRepo := new(MockRepository)
	mockMenus := new(MockMenuProvider)
	service := newTestService(mockRepo, mockMenus)

	date, _ := dates.ToInstant("2024-05-01")
	mockMenus.On("FindDailyMenu", mock.Anything, "room-1", date).Return(nil, nil)

	_, err := service.SaveTemplate(context.Background(), owner, "2024-05-01", "Weekday")

	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaveTemplate_Validation(t *testing.T) {
	service := newTestService(new(MockRepository), new(MockMenuProvider))

	_, err := service.SaveTemplate(context.Background(), owner, "2024-05-01", "   ")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = service.SaveTemplate(context.Background(), owner, "", "Weekday")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	long := make([]rune, 51)
	for i := range long {
		long[i] = 'x'
	}
	_, err = service.SaveTemplate(context.Background(), owner, "2024-05-01", string(long))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestApplyTemplate_AttributesApplier(t *testing.T) {
	mockRepo := new(MockRepository)
	mockMenus := new(MockMenuProvider)
	service := newTestService(mockRepo, mockMenus)

	date, _ := dates.ToInstant("2024-05-02")
	mockRepo.On("FindInRoom", mock.Anything, "room-1", "tpl-1").Return(&domain.Template{
		ID:     "tpl-1",
		RoomID: "room-1",
		Name:   "Weekday",
		Items: []domain.TemplateItem{
			{Name: "Rice", OrderIndex: 0},
			{Name: "Soup", OrderIndex: 1},
		},
	}, nil)
	mockMenus.On("EnsureDailyMenu", mock.Anything, "room-1", date).
		Return(&domain.DailyMenu{ID: "menu-2"}, nil)
	mockMenus.On("CreateItems", mock.Anything, mock.MatchedBy(func(items []domain.MenuItem) bool {
		if len(items) != 2 {
			return false
		}
		for _, it := range items {
			if it.DailyMenuID != "menu-2" ||
				it.CreatedByDeviceHash != "owner-hash" ||
				it.CreatedByDisplayName != "Alice" {
				return false
			}
		}
		return items[0].Name == "Rice" && items[1].Name == "Soup"
	})).Return(nil)

	result, err := service.ApplyTemplate(context.Background(), owner, "tpl-1", "2024-05-02")

	assert.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 2, result.Applied)
	mockMenus.AssertExpectations(t)
}

// Applying the same template to the same day twice inserts its full
// item set both times. Rows are never merged against what the day
// already holds.
func TestApplyTemplate_TwiceDuplicates(t *testing.T) {
	mockRepo := new(MockRepository)
	mockMenus := new(MockMenuProvider)
	service := newTestService(mockRepo, mockMenus)

	date, _ := dates.ToInstant("2024-05-02")
	mockRepo.On("FindInRoom", mock.Anything, "room-1", "tpl-1").Return(&domain.Template{
		ID:     "tpl-1",
		RoomID: "room-1",
		Name:   "Weekday",
		Items: []domain.TemplateItem{
			{Name: "Rice", OrderIndex: 0},
			{Name: "Soup", OrderIndex: 1},
		},
	}, nil)
	mockMenus.On("EnsureDailyMenu", mock.Anything, "room-1", date).
		Return(&domain.DailyMenu{ID: "menu-2"}, nil)
	mockMenus.On("CreateItems", mock.Anything, mock.MatchedBy(func(items []domain.MenuItem) bool {
		return len(items) == 2 && items[0].Name == "Rice" && items[1].Name == "Soup"
	})).Return(nil)

	first, err := service.ApplyTemplate(context.Background(), owner, "tpl-1", "2024-05-02")
	assert.NoError(t, err)
	assert.Equal(t, 2, first.Applied)

	second, err := service.ApplyTemplate(context.Background(), owner, "tpl-1", "2024-05-02")
	assert.NoError(t, err)
	assert.Equal(t, 2, second.Applied)

	mockMenus.AssertNumberOfCalls(t, "CreateItems", 2)
}

func TestApplyTemplate_OwnerOnly(t *testing.T) {
	service := newTestService(new(MockRepository), new(MockMenuProvider))

	_, err := service.ApplyTemplate(context.Background(), guest, "tpl-1", "2024-05-02")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestApplyTemplate_MissingDate(t *testing.T) {
	service := newTestService(new(MockRepository), new(MockMenuProvider))

	_, err := service.ApplyTemplate(context.Background(), owner, "tpl-1", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

// Another room's template reads as absent, not forbidden.
func TestApplyTemplate_CrossRoomNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	mockMenus := new(MockMenuProvider)
	service := newTestService(mockRepo, mockMenus)

	mockRepo.On("FindInRoom", mock.Anything, "room-1", "tpl-other").
		Return(nil, gorm.ErrRecordNotFound)

	_, err := service.ApplyTemplate(context.Background(), owner, "tpl-other", "2024-05-02")

	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	mockMenus.AssertNotCalled(t, "CreateItems", mock.Anything, mock.Anything)
}

func TestDeleteTemplate_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockMenuProvider))

	mockRepo.On("DeleteInRoom", mock.Anything, "room-1", "tpl-1").Return(int64(1), nil)

	err := service.DeleteTemplate(context.Background(), owner, "tpl-1")
	assert.NoError(t, err)
}

func TestDeleteTemplate_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockMenuProvider))

	mockRepo.On("DeleteInRoom", mock.Anything, "room-1", "tpl-missing").Return(int64(0), nil)

	err := service.DeleteTemplate(context.Background(), owner, "tpl-missing")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestDeleteTemplate_OwnerOnly(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockMenuProvider))

	err := service.DeleteTemplate(context.Background(), guest, "tpl-1")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	mockRepo.AssertNotCalled(t, "DeleteInRoom", mock.Anything, mock.Anything, mock.Anything)
}
