// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User and
// Tag models.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run inside transactions. They hold no business rules; classification of
// their errors into API failures happens in the service layer.
//
// Error semantics:
//   - Missing users yield gorm.ErrRecordNotFound (also exported as ErrNotFound).
//   - A rename against an outdated version yields ErrStaleVersion.
//   - Unique-index collisions yield gorm.ErrDuplicatedKey.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-error-advice/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrStaleVersion is returned by RenameUser when the stored version differs
// from the one the caller read.
var ErrStaleVersion = errors.New("stale version")

// CreateUser inserts a new User with a random UUID and version 1.
func CreateUser(ctx context.Context, db *gorm.DB, name, email string, age int) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Age:       age,
		Email:     email,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user and its tags by ID.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at asc, name asc") }).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountUsers returns the total number of live users.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error
	return total, err
}

// ListUsersPage returns a slice of users ordered by creation time, newest
// first. Ties break on ID so pages are stable.
func ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Order("created_at desc, id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// RenameUser sets a new name when the stored version equals version, and
// bumps the version. It returns the updated row.
func RenameUser(ctx context.Context, db *gorm.DB, id, name string, version int) (*domain.User, error) {
	var out *domain.User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).
			Where("id = ? AND version = ?", id, version).
			Updates(map[string]any{
				"name":       name,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrStaleVersion
		}
		var u domain.User
		if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
			return err
		}
		out = &u
		return nil
	})
	return out, err
}

// DeleteUser soft-deletes a user. Tags stay until the row is purged.
func DeleteUser(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddTags attaches names to the user atomically. Either every tag is stored
// or none is.
func AddTags(ctx context.Context, db *gorm.DB, userID string, names []string) ([]domain.Tag, error) {
	now := time.Now().UTC()
	tags := make([]domain.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, domain.Tag{ID: uuid.NewString(), UserID: userID, Name: n, CreatedAt: now})
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").Where("id = ?", userID).First(&domain.User{}).Error; err != nil {
			return err
		}
		return tx.Create(&tags).Error
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
