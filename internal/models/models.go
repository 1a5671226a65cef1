package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Account types. Role names use the same enum: the default role for a new
// user is the role whose name equals the user's type.
const (
	TypeAdmin = "admin"
	TypeUser  = "user"
	TypeOwner = "owner"
)

// ValidType reports whether t is one of the known account types.
func ValidType(t string) bool {
	switch t {
	case TypeAdmin, TypeUser, TypeOwner:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Type      string    `gorm:"size:16;not null;default:user" json:"type"`
	ProfileID *uuid.UUID `gorm:"type:uuid" json:"-"`
	Profile   *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Roles     []Role    `gorm:"many2many:role_users" json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile is owned one-to-one by its User and created in the same
// transaction on registration.
type Profile struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName   string          `gorm:"size:255" json:"first_name"`
	LastName    string          `gorm:"size:255" json:"last_name"`
	DateOfBirth *datatypes.Date `json:"date_of_birth,omitempty"`
	Status      string          `gorm:"size:64" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Role struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:16;not null" json:"name"` // admin|user|owner
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:role_users" json:"users,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (r *Role) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Permission is an atomic capability string, e.g. READ_users.
type Permission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Roles     []Role    `gorm:"many2many:role_permissions" json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Permission) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// RoleRef is the short projection returned when a mutation touches roles
// indirectly (e.g. cascading permission delete reports affected roles).
type RoleRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
