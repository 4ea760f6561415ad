// User HTTP handlers.
//
// This file exposes REST endpoints for user resources:
//   - POST   /users              (create)
//   - GET    /users              (list, paginated)
//   - GET    /users/{id}         (fetch)
//   - PUT    /users/{id}         (rename, optimistic lock on version)
//   - DELETE /users/{id}         (soft delete)
//   - POST   /users/{id}/tags    (attach tags)
//
// Handlers are transport-thin: they bind input, call the service, and either
// write the success body or record the failure with fail().
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-error-advice/internal/domain"
	"github.com/tbourn/go-error-advice/internal/failure"
	"github.com/tbourn/go-error-advice/internal/utils"
)

// UserService defines the user operations consumed by HTTP handlers.
//
// Implementations must honor the provided context for cancellation and
// timeouts, and return catalog failures for predictable outcomes.
type UserService interface {
	Create(ctx context.Context, name, email string, age int) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.User, int64, error)
	Rename(ctx context.Context, id, name string, version int) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	AddTags(ctx context.Context, id string, names []string) ([]domain.Tag, error)
}

// Handlers groups the HTTP endpoints of the users resource.
type Handlers struct {
	users UserService
}

// New constructs and returns a Handlers instance bound to the given service.
func New(users UserService) *Handlers {
	return &Handlers{users: users}
}

//
// DTOs
//

// CreateUserRequest is the JSON payload for creating a user.
type CreateUserRequest struct {
	Name  string `json:"name"  binding:"required"`
	Age   int    `json:"age"   binding:"gt=0"`
	Email string `json:"email" binding:"required,email"`
}

// RenameUserRequest is the JSON payload for renaming a user. Version must be
// the version the client last read.
type RenameUserRequest struct {
	Name    string `json:"name"    binding:"required,max=255"`
	Version int    `json:"version" binding:"gt=0"`
}

// TagInput is a single tag in an AddTagsRequest.
type TagInput struct {
	Name string `json:"name"`
}

// AddTagsRequest is the JSON payload for attaching tags. Tag contents are
// checked by the service so every bad entry is reported at once.
type AddTagsRequest struct {
	Tags []TagInput `json:"tags"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListUsersResponse wraps a page of users and pagination information.
type ListUsersResponse struct {
	Users      []domain.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

//
// Helpers
//

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// userID returns the :id path parameter, or records an InvalidArgument
// failure when it is not a UUID.
func userID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, failure.Wrap(failure.KindInvalidArgument, "id: must be a valid UUID", err))
		return "", false
	}
	return id, true
}

// intQuery reads an integer query parameter, recording an InvalidArgument
// failure when it is present but malformed.
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	n, valid := utils.IntQuery(c.Query(key), def)
	if !valid {
		fail(c, failure.InvalidArgument(key+": must be an integer"))
	}
	return n, valid
}

//
// Handlers
//

// CreateUser handles POST /users.
func (h *Handlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	u, err := h.users.Create(c.Request.Context(), req.Name, req.Email, req.Age)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Location", c.Request.URL.Path+"/"+u.ID)
	ok(c, http.StatusCreated, u)
}

// GetUser handles GET /users/:id.
func (h *Handlers) GetUser(c *gin.Context) {
	id, valid := userID(c)
	if !valid {
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// ListUsers handles GET /users?page=&page_size=.
func (h *Handlers) ListUsers(c *gin.Context) {
	page, valid := intQuery(c, "page", defaultPage)
	if !valid {
		return
	}
	pageSize, valid := intQuery(c, "page_size", defaultPageSize)
	if !valid {
		return
	}

	items, total, err := h.users.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	pages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListUsersResponse{
		Users: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: pages,
			HasNext:    page < pages,
		},
	})
}

// RenameUser handles PUT /users/:id.
func (h *Handlers) RenameUser(c *gin.Context) {
	id, valid := userID(c)
	if !valid {
		return
	}
	var req RenameUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	u, err := h.users.Rename(c.Request.Context(), id, req.Name, req.Version)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// DeleteUser handles DELETE /users/:id.
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, valid := userID(c)
	if !valid {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

// AddTags handles POST /users/:id/tags.
func (h *Handlers) AddTags(c *gin.Context) {
	id, valid := userID(c)
	if !valid {
		return
	}
	var req AddTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	names := make([]string, len(req.Tags))
	for i, t := range req.Tags {
		names[i] = t.Name
	}
	tags, err := h.users.AddTags(c.Request.Context(), id, names)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, tags)
}
