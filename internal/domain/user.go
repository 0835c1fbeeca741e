package domain

import "time"

// UserStatus represents lifecycle states for a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// Valid reports whether the status is a known lifecycle state.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusDeleted:
		return true
	}
	return false
}

// User is the domain model for a managed user account. A deleted user is a
// tombstone: the record stays in storage with status set to deleted.
type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    *string
	LastName     *string
	Bio          *string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Deleted reports whether the user carries the soft-delete tombstone.
func (u *User) Deleted() bool {
	return u.Status == UserStatusDeleted
}

// UserStats aggregates per-status counts over the whole collection.
type UserStats struct {
	Total     int64
	Active    int64
	Suspended int64
	Deleted   int64
}
