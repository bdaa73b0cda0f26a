package room

import (
	"context"
	defError "errors"
	"strings"
	"time"

	"shared-daily-menu/internal/crypto"
	"shared-daily-menu/internal/domain"
	"shared-daily-menu/internal/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const guestDisplayName = "guest"

type Service interface {
	CreateRoom(ctx context.Context, deviceID, displayName, roomName string) (*SetupResponse, error)
	JoinRoom(ctx context.Context, roomID, deviceID, displayName, inviteToken string) error
	ResolveActor(ctx context.Context, roomID, deviceID, displayName string) (*domain.Actor, error)
}

type DefaultService struct {
	repository RoomRepository
	hasher     *crypto.Hasher

	// Single server-wide invite secret. When non-empty, joins are
	// verified against it instead of the per-room token hash. One
	// strategy is active per deployment, never both.
	fixedInviteToken string
}

func NewService(repository RoomRepository, hasher *crypto.Hasher, fixedInviteToken string) Service {
	return &DefaultService{
		repository:       repository,
		hasher:           hasher,
		fixedInviteToken: fixedInviteToken,
	}
}

// SetupResponse carries the invite token's only plaintext exposure.
// It is stored hashed and can never be retrieved again.
type SetupResponse struct {
	RoomID      string `json:"roomId"`
	InviteToken string `json:"inviteToken"`
}

func (s *DefaultService) CreateRoom(ctx context.Context, deviceID, displayName, roomName string) (*SetupResponse, error) {
	deviceID = strings.TrimSpace(deviceID)
	displayName = strings.TrimSpace(displayName)
	if deviceID == "" || displayName == "" {
		return nil, errors.BadRequest("deviceId and displayName required", nil)
	}

	inviteToken, err := crypto.NewInviteToken()
	if err != nil {
		return nil, errors.Internal(err)
	}

	ownerHash := s.hasher.DeviceHash(deviceID)
	room := &domain.Room{
		ID:              uuid.NewString(),
		OwnerDeviceHash: ownerHash,
		InviteTokenHash: crypto.TokenHash(inviteToken),
	}
	if name := strings.TrimSpace(roomName); name != "" {
		room.Name = &name
	}

	owner := &domain.Device{
		DeviceHash:  ownerHash,
		DisplayName: displayName,
	}

	if err := s.repository.Create(ctx, room, owner); err != nil {
		return nil, err
	}

	return &SetupResponse{RoomID: room.ID, InviteToken: inviteToken}, nil
}

// JoinRoom is the only invite-verified path. The token gates room
// discovery, not per-request access: authenticated endpoints upsert
// devices without re-verifying it.
func (s *DefaultService) JoinRoom(ctx context.Context, roomID, deviceID, displayName, inviteToken string) error {
	deviceID = strings.TrimSpace(deviceID)
	displayName = strings.TrimSpace(displayName)
	if deviceID == "" || displayName == "" {
		return errors.BadRequest("deviceId and displayName required", nil)
	}

	room, err := s.repository.FindByID(ctx, roomID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("room not found", err)
		}
		return err
	}

	if !s.verifyInviteToken(room, inviteToken) {
		return errors.Forbidden("invalid invite token", nil)
	}

	device := &domain.Device{
		RoomID:      room.ID,
		DeviceHash:  s.hasher.DeviceHash(deviceID),
		DisplayName: displayName,
	}
	return s.repository.UpsertDevice(ctx, device, true)
}

func (s *DefaultService) verifyInviteToken(room *domain.Room, token string) bool {
	if s.fixedInviteToken != "" {
		return token == s.fixedInviteToken
	}
	return crypto.TokenHash(token) == room.InviteTokenHash
}

// ResolveActor resolves or lazily registers the calling device and
// derives its owner status. Called by every authenticated request.
func (s *DefaultService) ResolveActor(ctx context.Context, roomID, deviceID, displayName string) (*domain.Actor, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, errors.Unauthorized("missing device info", nil)
	}

	room, err := s.repository.FindByID(ctx, roomID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("room not found", err)
		}
		return nil, err
	}

	displayName = strings.TrimSpace(displayName)
	hasName := displayName != ""
	if !hasName {
		displayName = guestDisplayName
	}

	deviceHash := s.hasher.DeviceHash(deviceID)
	device := &domain.Device{
		RoomID:      room.ID,
		DeviceHash:  deviceHash,
		DisplayName: displayName,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.repository.UpsertDevice(ctx, device, hasName); err != nil {
		return nil, err
	}

	return &domain.Actor{
		RoomID:      room.ID,
		DeviceHash:  deviceHash,
		DisplayName: displayName,
		IsOwner:     deviceHash == room.OwnerDeviceHash,
	}, nil
}
