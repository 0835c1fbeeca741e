package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/pkg/util/errorutil"
)

// memoryUserRepository is an in-memory backend used by tests and local
// development. It honors the same contract as the Postgres implementation:
// creation-order listing, soft-delete tombstones, and uniqueness scoped to
// non-deleted users, checked atomically under the lock.
type memoryUserRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domain.User
	order []string
}

// NewMemoryUserRepository returns an empty in-memory repository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{byID: make(map[string]*domain.User)}
}

func (r *memoryUserRepository) Insert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(user.Username, user.Email, ""); err != nil {
		return err
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.byID[user.ID] = &stored
	r.order = append(r.order, user.ID)
	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok || current.Deleted() {
		return errorutil.NewNotFound("user", user.ID)
	}
	if err := r.checkUnique(user.Username, user.Email, user.ID); err != nil {
		return err
	}

	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now()

	stored := *user
	r.byID[user.ID] = &stored
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string, includeDeleted bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok || (user.Deleted() && !includeDeleted) {
		return nil, errorutil.NewNotFound("user", id)
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.byID {
		if !user.Deleted() && user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errorutil.NewNotFound("user", username)
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.byID {
		if !user.Deleted() && user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errorutil.NewNotFound("user", email)
}

func (r *memoryUserRepository) List(_ context.Context, skip, limit int) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.User{}
	seen := 0
	for _, id := range r.order {
		user := r.byID[id]
		if user.Deleted() {
			continue
		}
		if seen < skip {
			seen++
			continue
		}
		if len(result) >= limit {
			break
		}
		result = append(result, *user)
	}
	return result, nil
}

func (r *memoryUserRepository) ListAll(ctx context.Context, max int) ([]domain.User, error) {
	return r.List(ctx, 0, max)
}

func (r *memoryUserRepository) MarkDeleted(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return errorutil.NewNotFound("user", id)
	}
	if user.Deleted() {
		return errorutil.NewAlreadyDeleted("user", id)
	}
	user.Status = domain.UserStatusDeleted
	user.UpdatedAt = time.Now()
	return nil
}

func (r *memoryUserRepository) CountByStatus(_ context.Context) (domain.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.UserStats
	for _, user := range r.byID {
		stats.Total++
		switch user.Status {
		case domain.UserStatusActive:
			stats.Active++
		case domain.UserStatusSuspended:
			stats.Suspended++
		case domain.UserStatusDeleted:
			stats.Deleted++
		}
	}
	return stats, nil
}

// checkUnique mirrors the partial unique indexes of the Postgres backend.
func (r *memoryUserRepository) checkUnique(username, email, selfID string) error {
	for _, other := range r.byID {
		if other.ID == selfID || other.Deleted() {
			continue
		}
		if other.Username == username {
			return errorutil.NewConflict("username already exists", map[string]any{"field": "username"})
		}
		if other.Email == email {
			return errorutil.NewConflict("email already exists", map[string]any{"field": "email"})
		}
	}
	return nil
}
