package domain

import "time"

// Room is the tenant boundary. Ownership is never stored as a role:
// a device owns the room iff its hash equals OwnerDeviceHash.
type Room struct {
	ID              string  `gorm:"primaryKey;size:36"`
	Name            *string `gorm:"size:100"`
	OwnerDeviceHash string  `gorm:"size:64;not null"`
	InviteTokenHash string  `gorm:"size:64;not null"`
	CreatedAt       time.Time

	Devices   []Device
	Menus     []DailyMenu
	Templates []Template
}

// Device is a participant identity within one room, keyed by the
// salted hash of a client-supplied identifier. Created on first
// contact, never deleted.
type Device struct {
	RoomID      string `gorm:"primaryKey;size:36"`
	DeviceHash  string `gorm:"primaryKey;size:64"`
	DisplayName string `gorm:"size:100;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DailyMenu is the ordered item list for one room and one calendar
// day. Date is the civil day's midnight in the fixed offset zone,
// stored as UTC.
type DailyMenu struct {
	ID        string    `gorm:"primaryKey;size:36"`
	RoomID    string    `gorm:"size:36;not null;uniqueIndex:idx_daily_menus_room_date"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_daily_menus_room_date"`
	CreatedAt time.Time

	Items []MenuItem
}

type MenuItem struct {
	ID          string `gorm:"primaryKey;size:36"`
	DailyMenuID string `gorm:"size:36;not null;index"`
	Name        string `gorm:"size:100;not null"`
	OrderIndex  int    `gorm:"not null"`

	// Authorship captured at creation. CreatedByDisplayName is a
	// snapshot and is never updated, even if the device later renames
	// itself or an owner renames the item.
	CreatedByDeviceHash  string `gorm:"size:64;not null"`
	CreatedByDisplayName string `gorm:"size:100;not null"`

	// Soft-delete marker. Active items have DeletedAt == nil.
	DeletedAt *time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Template is an immutable named snapshot of a day's active items.
type Template struct {
	ID                  string `gorm:"primaryKey;size:36"`
	RoomID              string `gorm:"size:36;not null;index"`
	Name                string `gorm:"size:50;not null"`
	CreatedByDeviceHash string `gorm:"size:64;not null"`
	CreatedAt           time.Time

	Items []TemplateItem `gorm:"constraint:OnDelete:CASCADE"`
}

type TemplateItem struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	TemplateID string `gorm:"size:36;not null;index"`
	Name       string `gorm:"size:100;not null"`
	OrderIndex int    `gorm:"not null"`
}

// Actor is the resolved identity of one authenticated request.
// IsOwner is recomputed on every request, never persisted.
type Actor struct {
	RoomID      string
	DeviceHash  string
	DisplayName string
	IsOwner     bool
}

// CanEdit reports whether the actor may rename, delete, or move the
// item: owners may edit anything in their room, everyone else only
// what they created.
func (a *Actor) CanEdit(item *MenuItem) bool {
	return a.IsOwner || a.DeviceHash == item.CreatedByDeviceHash
}
