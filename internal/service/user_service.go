package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/cache"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
	"github.com/spec-kit/user-service/internal/validation"
	"github.com/spec-kit/user-service/pkg/util/errorutil"
)

// DeleteConfirmation is the message returned on successful soft delete.
const DeleteConfirmation = "User marked as deleted"

// UserService coordinates user lifecycle workflows: validation, uniqueness,
// status transitions, and derived projections. It is stateless between
// requests; uniqueness under concurrency is delegated to the store's
// partial unique indexes rather than the pre-checks done here for friendly
// error messages.
type UserService struct {
	users      repository.UserRepository
	cache      *cache.UserCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	pagination config.PaginationConfig
}

// UserDependencies bundles collaborator requirements for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Cache      *cache.UserCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Security.BcryptCost,
		pagination: cfg.Pagination,
	}
}

// Create validates the payload, enforces uniqueness among non-deleted users,
// hashes the password, and inserts the record with status active.
func (s *UserService) Create(ctx context.Context, input validation.CreateInput) (*domain.User, error) {
	if errs := validation.ValidateCreate(&input); errs != nil {
		return nil, errorutil.NewValidationError("validation failed", errs.Details())
	}

	if err := s.checkUniqueness(ctx, input.Username, input.Email, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Bio:          input.Bio,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("id", user.ID), zap.String("username", user.Username))
	s.publish(ctx, events.Event{
		Type:   events.EventUserCreated,
		UserID: user.ID,
		Payload: events.UserCreatedPayload{
			Username: user.Username,
			Email:    user.Email,
			Status:   user.Status,
		},
	})
	return user, nil
}

// Get returns a user by id. Soft-deleted users are invisible unless the
// caller asks for them through the admin includeDeleted flag.
func (s *UserService) Get(ctx context.Context, id string, includeDeleted bool) (*domain.User, error) {
	if !includeDeleted {
		if user, ok := s.cache.Get(ctx, id); ok {
			return user, nil
		}
	}
	user, err := s.users.GetByID(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	if !user.Deleted() {
		s.cache.Set(ctx, user)
	}
	return user, nil
}

// GetByUsername returns a non-deleted user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, normalize(username))
}

// GetByEmail returns a non-deleted user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, normalize(email))
}

// List returns non-deleted users in creation order. Defaults: skip=0,
// limit from config; limit is clamped to the configured maximum.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = s.pagination.DefaultPageSize
	}
	if limit > s.pagination.MaxPageSize {
		limit = s.pagination.MaxPageSize
	}
	return s.users.List(ctx, skip, limit)
}

// Update applies a partial update. Absent fields are untouched. The current
// record is re-fetched so a racing delete is observed rather than trusted
// from a stale copy.
func (s *UserService) Update(ctx context.Context, id string, input validation.UpdateInput) (*domain.User, error) {
	if input.Empty() {
		return nil, errorutil.NewValidationError("no fields provided for update", nil)
	}
	if errs := validation.ValidateUpdate(&input); errs != nil {
		return nil, errorutil.NewValidationError("validation failed", errs.Details())
	}

	user, err := s.users.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	var changed []string
	if input.Username != nil && *input.Username != user.Username {
		if err := s.checkUniqueness(ctx, *input.Username, "", user.ID); err != nil {
			return nil, err
		}
		user.Username = *input.Username
		changed = append(changed, "username")
	}
	if input.Email != nil && *input.Email != user.Email {
		if err := s.checkUniqueness(ctx, "", *input.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *input.Email
		changed = append(changed, "email")
	}
	if input.FirstName != nil {
		user.FirstName = input.FirstName
		changed = append(changed, "first_name")
	}
	if input.LastName != nil {
		user.LastName = input.LastName
		changed = append(changed, "last_name")
	}
	if input.Bio != nil {
		user.Bio = input.Bio
		changed = append(changed, "bio")
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, errorutil.NewInternalError(err)
		}
		user.PasswordHash = hash
		changed = append(changed, "password")
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, user.ID)

	s.logger.Info("user updated", zap.String("id", user.ID), zap.Strings("fields", changed))
	s.publish(ctx, events.Event{
		Type:    events.EventUserUpdated,
		UserID:  user.ID,
		Payload: events.UserUpdatedPayload{Fields: changed},
	})
	return user, nil
}

// Delete marks the user as deleted. The tombstone is terminal: a second
// delete fails with AlreadyDeleted, not idempotent success.
func (s *UserService) Delete(ctx context.Context, id string) (string, error) {
	user, err := s.users.GetByID(ctx, id, true)
	if err != nil {
		return "", err
	}
	if err := s.users.MarkDeleted(ctx, id); err != nil {
		return "", err
	}
	s.cache.Invalidate(ctx, id)

	s.logger.Info("user deleted", zap.String("id", id), zap.String("username", user.Username))
	s.publish(ctx, events.Event{
		Type:    events.EventUserDeleted,
		UserID:  id,
		Payload: events.UserDeletedPayload{Username: user.Username},
	})
	return DeleteConfirmation, nil
}

// ChangeStatus switches between active and suspended. Deletion is not
// reachable through this path, and a deleted user's status is frozen.
func (s *UserService) ChangeStatus(ctx context.Context, id string, newStatus domain.UserStatus) (*domain.User, error) {
	if !newStatus.Valid() || newStatus == domain.UserStatusDeleted {
		return nil, errorutil.NewInvalidTransition("status " + string(newStatus) + " is not reachable through this operation")
	}

	user, err := s.users.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if user.Deleted() {
		return nil, errorutil.NewInvalidTransition("cannot change status of a deleted user")
	}

	oldStatus := user.Status
	user.Status = newStatus
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, user.ID)

	s.logger.Info("user status changed",
		zap.String("id", user.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(newStatus)))
	s.publish(ctx, events.Event{
		Type:   events.EventUserStatusChanged,
		UserID: user.ID,
		Payload: events.UserStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return user, nil
}

// Export returns all non-deleted users as a flat sequence, bounded by the
// configured hard cap.
func (s *UserService) Export(ctx context.Context) ([]domain.User, error) {
	return s.users.ListAll(ctx, s.pagination.ExportMax)
}

// Stats returns aggregate per-status counts, recomputed per call.
func (s *UserService) Stats(ctx context.Context) (domain.UserStats, error) {
	return s.users.CountByStatus(ctx)
}

// checkUniqueness pre-checks username/email collisions among non-deleted
// users for friendly errors. The store's unique indexes remain the
// authoritative guard under concurrency.
func (s *UserService) checkUniqueness(ctx context.Context, username, email, selfID string) error {
	if username != "" {
		existing, err := s.users.GetByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != selfID:
			return errorutil.NewConflict("username already exists", map[string]any{"field": "username"})
		case err != nil && !errorutil.IsCode(err, errorutil.CodeNotFound):
			return err
		}
	}
	if email != "" {
		existing, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != selfID:
			return errorutil.NewConflict("email already exists", map[string]any{"field": "email"})
		case err != nil && !errorutil.IsCode(err, errorutil.CodeNotFound):
			return err
		}
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
