// Package services – UserService
//
// This file implements the UserService, which owns the business rules of the
// users resource: age limits, optimistic renames, tag constraints, paging
// bounds and the maintenance switch. Every rule violation is returned as a
// catalog failure so the HTTP layer can hand it to the dispatcher unchanged.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-error-advice/internal/domain"
	"github.com/tbourn/go-error-advice/internal/failure"
)

// UserRepo defines the repository contract required by UserService.
type UserRepo interface {
	CreateUser(ctx context.Context, db *gorm.DB, name, email string, age int) (*domain.User, error)
	GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)
	CountUsers(ctx context.Context, db *gorm.DB) (int64, error)
	ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.User, error)
	// RenameUser must return ErrStaleVersion when version no longer matches.
	RenameUser(ctx context.Context, db *gorm.DB, id, name string, version int) (*domain.User, error)
	DeleteUser(ctx context.Context, db *gorm.DB, id string) error
	AddTags(ctx context.Context, db *gorm.DB, userID string, names []string) ([]domain.Tag, error)
}

// ErrStaleVersion is the sentinel a UserRepo returns for a version mismatch.
// The router shim maps the repository's own sentinel onto it.
var ErrStaleVersion = errors.New("stale version")

// UserService provides user operations.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the user repository used by this service.
	Repo UserRepo

	// Maintenance rejects every write with an IllegalState failure.
	Maintenance bool
	// MaxAge is the largest accepted age.
	MaxAge int
	// MaxPageSize caps page_size on listings.
	MaxPageSize int
	// MaxTagRunes caps the length of a single tag.
	MaxTagRunes int
}

// NewUserService constructs a UserService with default limits.
func NewUserService(db *gorm.DB, r UserRepo) *UserService {
	return &UserService{
		DB:          db,
		Repo:        r,
		MaxAge:      150,
		MaxPageSize: 100,
		MaxTagRunes: 32,
	}
}

// Create registers a new user. Syntactic checks (required fields, email
// shape, positive age) happen at binding time; here the semantic ones run.
func (s *UserService) Create(ctx context.Context, name, email string, age int) (*domain.User, error) {
	if s.Maintenance {
		return nil, ErrMaintenance
	}
	if age > s.MaxAge {
		return nil, failure.UnprocessableEntity(fmt.Sprintf("age must be at most %d", s.MaxAge))
	}
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Repo.CreateUser(ctx, s.DB, strings.TrimSpace(name), email, age)
	if isDuplicate(err) {
		return nil, failure.Wrap(failure.KindConflict, fmt.Sprintf("user with email %s already exists", email), err)
	}
	if err != nil {
		return nil, storeErr(ctx, "create user", err)
	}
	return u, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.Repo.GetUser(ctx, s.DB, id)
	if isNotFound(err) {
		return nil, failure.NotFound(fmt.Sprintf("user %s not found", id))
	}
	if err != nil {
		return nil, storeErr(ctx, "get user", err)
	}
	return u, nil
}

// ListPage returns one page of users and the total count. Out-of-range
// paging arguments are rejected rather than clamped.
func (s *UserService) ListPage(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	if page < 1 {
		return nil, 0, failure.InvalidArgument("page must be at least 1")
	}
	if pageSize < 1 || pageSize > s.MaxPageSize {
		return nil, 0, failure.InvalidArgument(fmt.Sprintf("page_size must be between 1 and %d", s.MaxPageSize))
	}

	total, err := s.Repo.CountUsers(ctx, s.DB)
	if err != nil {
		return nil, 0, storeErr(ctx, "count users", err)
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}

	items, err := s.Repo.ListUsersPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, storeErr(ctx, "list users", err)
	}
	return items, total, nil
}

// Rename changes a user's name if the caller saw the current version.
func (s *UserService) Rename(ctx context.Context, id, name string, version int) (*domain.User, error) {
	if s.Maintenance {
		return nil, ErrMaintenance
	}
	u, err := s.Repo.RenameUser(ctx, s.DB, id, strings.TrimSpace(name), version)
	switch {
	case err == nil:
		return u, nil
	case isNotFound(err):
		return nil, failure.NotFound(fmt.Sprintf("user %s not found", id))
	case errors.Is(err, ErrStaleVersion):
		return nil, failure.Wrap(failure.KindConflict, "version mismatch", err)
	}
	return nil, storeErr(ctx, "rename user", err)
}

// Delete soft-deletes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if s.Maintenance {
		return ErrMaintenance
	}
	err := s.Repo.DeleteUser(ctx, s.DB, id)
	if isNotFound(err) {
		return failure.NotFound(fmt.Sprintf("user %s not found", id))
	}
	return storeErr(ctx, "delete user", err)
}

// AddTags attaches tags to a user. Every tag is checked before anything is
// stored and all violations are reported together, in input order.
func (s *UserService) AddTags(ctx context.Context, id string, names []string) ([]domain.Tag, error) {
	if s.Maintenance {
		return nil, ErrMaintenance
	}
	if len(names) == 0 {
		return nil, failure.Constraint(failure.Violation{PropertyPath: "tags", Detail: "must not be empty"})
	}

	clean := make([]string, len(names))
	seen := make(map[string]int, len(names))
	var violations []failure.Violation
	for i, raw := range names {
		path := fmt.Sprintf("tags[%d].name", i)
		n := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case n == "":
			violations = append(violations, failure.Violation{PropertyPath: path, Detail: "must not be blank"})
		case utf8.RuneCountInString(n) > s.MaxTagRunes:
			violations = append(violations, failure.Violation{PropertyPath: path, Detail: fmt.Sprintf("must be at most %d characters", s.MaxTagRunes)})
		default:
			if j, dup := seen[n]; dup {
				violations = append(violations, failure.Violation{PropertyPath: path, Detail: fmt.Sprintf("duplicates tags[%d].name", j)})
			} else {
				seen[n] = i
			}
		}
		clean[i] = n
	}
	if len(violations) > 0 {
		return nil, failure.Constraint(violations...)
	}

	tags, err := s.Repo.AddTags(ctx, s.DB, id, clean)
	switch {
	case err == nil:
		return tags, nil
	case isNotFound(err):
		return nil, failure.NotFound(fmt.Sprintf("user %s not found", id))
	case isDuplicate(err):
		return nil, failure.Wrap(failure.KindConflict, "tag already attached to user", err)
	}
	return nil, storeErr(ctx, "add tags", err)
}
