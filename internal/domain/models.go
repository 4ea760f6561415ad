// Package domain defines the persistence models for the users resource that
// the HTTP layer exposes. These types are mapped with GORM.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account. Email is unique among live rows; Version
// increments on every update and guards concurrent renames.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: display name.
//   - Age: positive age in years.
//   - Email: login address, unique among rows that are not soft deleted.
//   - Version: optimistic lock counter, starts at 1.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
//   - Tags: labels attached to the user.
type User struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string         `json:"name"       gorm:"type:varchar(255);not null"`
	Age       int            `json:"age"        gorm:"not null;check:age > 0"`
	Email     string         `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email,where:deleted_at IS NULL"`
	Version   int            `json:"version"    gorm:"not null;default:1"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`

	Tags []Tag `json:"tags,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Tag is a short label owned by a user. A user cannot carry the same tag
// twice (enforced by unique index).
type Tag struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"-"          gorm:"type:char(36);not null;index;uniqueIndex:ux_tags_user_name"`
	Name      string    `json:"name"       gorm:"type:varchar(32);not null;uniqueIndex:ux_tags_user_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }
