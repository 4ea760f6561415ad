package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-error-advice/internal/domain"
	"github.com/tbourn/go-error-advice/internal/failure"
)

// ----- Fake repo -----

type fakeUserRepo struct {
	createName, createEmail string
	createAge               int
	createErr               error

	getUser *domain.User
	getErr  error

	countTotal int64
	countErr   error

	pageOffset, pageLimit int
	pageItems             []domain.User
	pageErr               error

	renameErr error

	deleteErr error

	tagNames []string
	tagErr   error
}

func (r *fakeUserRepo) CreateUser(_ context.Context, _ *gorm.DB, name, email string, age int) (*domain.User, error) {
	r.createName, r.createEmail, r.createAge = name, email, age
	if r.createErr != nil {
		return nil, r.createErr
	}
	return &domain.User{ID: "u1", Name: name, Email: email, Age: age, Version: 1}, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, _ *gorm.DB, _ string) (*domain.User, error) {
	return r.getUser, r.getErr
}

func (r *fakeUserRepo) CountUsers(_ context.Context, _ *gorm.DB) (int64, error) {
	return r.countTotal, r.countErr
}

func (r *fakeUserRepo) ListUsersPage(_ context.Context, _ *gorm.DB, offset, limit int) ([]domain.User, error) {
	r.pageOffset, r.pageLimit = offset, limit
	return r.pageItems, r.pageErr
}

func (r *fakeUserRepo) RenameUser(_ context.Context, _ *gorm.DB, id, name string, version int) (*domain.User, error) {
	if r.renameErr != nil {
		return nil, r.renameErr
	}
	return &domain.User{ID: id, Name: name, Version: version + 1}, nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, _ *gorm.DB, _ string) error {
	return r.deleteErr
}

func (r *fakeUserRepo) AddTags(_ context.Context, _ *gorm.DB, userID string, names []string) ([]domain.Tag, error) {
	r.tagNames = names
	if r.tagErr != nil {
		return nil, r.tagErr
	}
	out := make([]domain.Tag, len(names))
	for i, n := range names {
		out[i] = domain.Tag{ID: fmt.Sprint(i), UserID: userID, Name: n}
	}
	return out, nil
}

// requireKind fails unless err is a catalog failure of kind k with message msg.
func requireKind(t *testing.T, err error, k failure.Kind, msg string) {
	t.Helper()
	fe, ok := failure.As(err)
	if !ok {
		t.Fatalf("expected %v failure, got %v", k, err)
	}
	if fe.Kind() != k || fe.Message() != msg {
		t.Fatalf("got %v %q; want %v %q", fe.Kind(), fe.Message(), k, msg)
	}
}

// ----- Tests -----

func TestNewUserService_Defaults(t *testing.T) {
	r := &fakeUserRepo{}
	s := NewUserService(nil, r)
	if s.Repo != r || s.MaxAge != 150 || s.MaxPageSize != 100 || s.MaxTagRunes != 32 || s.Maintenance {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestCreate_NormalizesInput(t *testing.T) {
	r := &fakeUserRepo{}
	s := NewUserService(nil, r)

	u, err := s.Create(context.Background(), "  Ana ", " Ana@Example.COM ", 30)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.createName != "Ana" || r.createEmail != "ana@example.com" || u.Age != 30 {
		t.Fatalf("unexpected repo args: %+v", r)
	}
}

func TestCreate_AgeAboveLimitIsUnprocessable(t *testing.T) {
	s := NewUserService(nil, &fakeUserRepo{})
	_, err := s.Create(context.Background(), "Old", "old@example.com", 151)
	requireKind(t, err, failure.KindUnprocessableEntity, "age must be at most 150")
}

func TestCreate_DuplicateEmailIsConflict(t *testing.T) {
	s := NewUserService(nil, &fakeUserRepo{createErr: gorm.ErrDuplicatedKey})
	_, err := s.Create(context.Background(), "Ana", "ana@example.com", 30)
	requireKind(t, err, failure.KindConflict, "user with email ana@example.com already exists")
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("cause should be preserved")
	}
}

func TestCreate_UnknownStoreErrorStaysUnrecognized(t *testing.T) {
	s := NewUserService(nil, &fakeUserRepo{createErr: errors.New("disk I/O error")})
	_, err := s.Create(context.Background(), "Ana", "ana@example.com", 30)
	if _, ok := failure.From(err); ok {
		t.Fatalf("store error must not be classified: %v", err)
	}
	if !strings.Contains(err.Error(), "create user: disk I/O error") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestWrites_RejectedInMaintenance(t *testing.T) {
	s := NewUserService(nil, &fakeUserRepo{})
	s.Maintenance = true
	ctx := context.Background()

	_, err1 := s.Create(ctx, "Ana", "ana@example.com", 30)
	_, err2 := s.Rename(ctx, "u1", "x", 1)
	_, err3 := s.AddTags(ctx, "u1", []string{"a"})
	err4 := s.Delete(ctx, "u1")
	for _, err := range []error{err1, err2, err3, err4} {
		requireKind(t, err, failure.KindIllegalState, "service is in maintenance mode; writes are disabled")
	}

	// Reads keep working.
	s.Repo = &fakeUserRepo{getUser: &domain.User{ID: "u1"}}
	if _, err := s.Get(ctx, "u1"); err != nil {
		t.Fatalf("Get in maintenance: %v", err)
	}
}

func TestGet_NotFoundNamesTheUser(t *testing.T) {
	s := NewUserService(nil, &fakeUserRepo{getErr: gorm.ErrRecordNotFound})
	_, err := s.Get(context.Background(), "42")
	requireKind(t, err, failure.KindNotFound, "user 42 not found")
}

func TestGet_DeadlineIsTimeout(t *testing.T) {
	s := NewUserService(nil, &fakeUserRepo{getErr: fmt.Errorf("query: %w", context.DeadlineExceeded)})
	_, err := s.Get(context.Background(), "42")
	requireKind(t, err, failure.KindTimeout, "get user timed out")
}

func TestGet_ExpiredContextIsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	s := NewUserService(nil, &fakeUserRepo{getErr: errors.New("interrupted")})
	_, err := s.Get(ctx, "42")
	requireKind(t, err, failure.KindTimeout, "get user timed out")
}

func TestListPage_RejectsBadBounds(t *testing.T) {
	s := NewUserService(nil, &fakeUserRepo{})
	ctx := context.Background()

	_, _, err := s.ListPage(ctx, 0, 10)
	requireKind(t, err, failure.KindInvalidArgument, "page must be at least 1")

	_, _, err = s.ListPage(ctx, 1, 101)
	requireKind(t, err, failure.KindInvalidArgument, "page_size must be between 1 and 100")
}

func TestListPage_OffsetAndEmpty(t *testing.T) {
	r := &fakeUserRepo{countTotal: 25, pageItems: []domain.User{{ID: "a"}}}
	s := NewUserService(nil, r)

	items, total, err := s.ListPage(context.Background(), 3, 10)
	if err != nil || total != 25 || len(items) != 1 {
		t.Fatalf("ListPage = %v, %d, %v", items, total, err)
	}
	if r.pageOffset != 20 || r.pageLimit != 10 {
		t.Fatalf("offset/limit = %d/%d", r.pageOffset, r.pageLimit)
	}

	s.Repo = &fakeUserRepo{}
	items, total, err = s.ListPage(context.Background(), 1, 10)
	if err != nil || total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("empty store should give empty page, got %v %d %v", items, total, err)
	}
}

func TestRename_Outcomes(t *testing.T) {
	ctx := context.Background()

	s := NewUserService(nil, &fakeUserRepo{})
	u, err := s.Rename(ctx, "u1", "  New  ", 3)
	if err != nil || u.Name != "New" || u.Version != 4 {
		t.Fatalf("Rename = %+v, %v", u, err)
	}

	s.Repo = &fakeUserRepo{renameErr: ErrStaleVersion}
	_, err = s.Rename(ctx, "u1", "x", 1)
	requireKind(t, err, failure.KindConflict, "version mismatch")

	s.Repo = &fakeUserRepo{renameErr: gorm.ErrRecordNotFound}
	_, err = s.Rename(ctx, "u9", "x", 1)
	requireKind(t, err, failure.KindNotFound, "user u9 not found")
}

func TestDelete_Outcomes(t *testing.T) {
	ctx := context.Background()

	s := NewUserService(nil, &fakeUserRepo{})
	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	s.Repo = &fakeUserRepo{deleteErr: gorm.ErrRecordNotFound}
	requireKind(t, s.Delete(ctx, "u2"), failure.KindNotFound, "user u2 not found")
}

func TestAddTags_CollectsViolationsInOrder(t *testing.T) {
	r := &fakeUserRepo{}
	s := NewUserService(nil, r)

	_, err := s.AddTags(context.Background(), "u1", []string{"ok", " ", strings.Repeat("x", 33), "OK"})
	fe, isFailure := failure.As(err)
	if !isFailure || fe.Kind() != failure.KindConstraintViolation {
		t.Fatalf("expected constraint violation, got %v", err)
	}
	got := fe.Violations()
	want := []failure.Violation{
		{PropertyPath: "tags[1].name", Detail: "must not be blank"},
		{PropertyPath: "tags[2].name", Detail: "must be at most 32 characters"},
		{PropertyPath: "tags[3].name", Detail: "duplicates tags[0].name"},
	}
	if len(got) != len(want) {
		t.Fatalf("violations = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("violation %d = %+v; want %+v", i, got[i], want[i])
		}
	}
	if r.tagNames != nil {
		t.Fatalf("nothing should be stored when a tag is invalid")
	}

	_, err = s.AddTags(context.Background(), "u1", nil)
	requireKind(t, err, failure.KindConstraintViolation, "constraint violation")
}

func TestAddTags_StoreOutcomes(t *testing.T) {
	ctx := context.Background()

	r := &fakeUserRepo{}
	s := NewUserService(nil, r)
	tags, err := s.AddTags(ctx, "u1", []string{" Admin ", "beta"})
	if err != nil || len(tags) != 2 || r.tagNames[0] != "admin" {
		t.Fatalf("AddTags = %+v, %v (stored %v)", tags, err, r.tagNames)
	}

	s.Repo = &fakeUserRepo{tagErr: gorm.ErrRecordNotFound}
	_, err = s.AddTags(ctx, "u7", []string{"a"})
	requireKind(t, err, failure.KindNotFound, "user u7 not found")

	s.Repo = &fakeUserRepo{tagErr: gorm.ErrDuplicatedKey}
	_, err = s.AddTags(ctx, "u1", []string{"a"})
	requireKind(t, err, failure.KindConflict, "tag already attached to user")
}

func TestStoreErr_Classification(t *testing.T) {
	ctx := context.Background()
	if storeErr(ctx, "op", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	requireKind(t, storeErr(ctx, "op", gorm.ErrRecordNotFound), failure.KindNotFound, "record not found")
	requireKind(t, storeErr(ctx, "op", gorm.ErrDuplicatedKey), failure.KindConflict, "resource already exists")
	requireKind(t, storeErr(ctx, "op", context.DeadlineExceeded), failure.KindTimeout, "op timed out")
}
