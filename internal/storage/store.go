// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/rachadinha/internal/models"
)

var (
	// ErrNotFound is wrapped by every store when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForeignMember is returned when an item member is not a participant of the item's session.
	ErrForeignMember = errors.New("participant does not belong to the item's session")
)

// Store defines the storage operations behind a session.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
//
// Every mutation runs in a single transaction, so readers see either the
// snapshot before the change or the one after it. Concurrent writers are
// last-write-wins; callers refetch with GetSession after each mutation.
type Store interface {
	SessionStore
	ParticipantStore
	ItemStore
	SettingsStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// SessionStore manages sessions.
type SessionStore interface {
	// CreateSession persists a new session and its first participants in one
	// transaction: on error nothing is stored. The ID, CreatedAt, Status,
	// InviteCode and empty Name are filled in by the store, and Participants
	// is set to the inserted rows in the order given.
	CreateSession(ctx context.Context, session *models.Session, participantNames []string) error

	// GetSession returns the full snapshot: participants ordered by name and
	// items ordered by creation, each with its member IDs. The snapshot is
	// read atomically, so every member ID belongs to a listed participant.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// ListSessionsByOwner returns the owner's sessions, newest first,
	// without participants or items.
	ListSessionsByOwner(ctx context.Context, ownerID string) ([]*models.Session, error)

	UpdateServiceCharge(ctx context.Context, sessionID string, percent float64) error
	UpdateTableNumber(ctx context.Context, sessionID, tableNumber string) error
	UpdateSessionStatus(ctx context.Context, sessionID, status string) error

	// DeleteSession removes the session with its participants and items.
	DeleteSession(ctx context.Context, sessionID string) error
}

// ParticipantStore manages participants.
type ParticipantStore interface {
	AddParticipant(ctx context.Context, sessionID, name string) (*models.Participant, error)

	// BulkAddParticipants adds all names in one transaction.
	BulkAddParticipants(ctx context.Context, sessionID string, names []string) ([]*models.Participant, error)

	// RemoveParticipant deletes the participant and removes it from every item.
	// Items left without members are kept.
	RemoveParticipant(ctx context.Context, participantID string) error

	SetParticipantPaid(ctx context.Context, participantID string, paid bool) error
}

// ItemStore manages items and their membership.
type ItemStore interface {
	// AddItem persists the item with its initial members (possibly none).
	AddItem(ctx context.Context, item *models.Item) error

	// UpdateItem changes the name and price of an item.
	UpdateItem(ctx context.Context, itemID, name string, price float64) error

	RemoveItem(ctx context.Context, itemID string) error

	// SetItemMember adds or removes one participant from an item.
	// Adding an existing member or removing a non-member is a no-op.
	SetItemMember(ctx context.Context, itemID, participantID string, member bool) error
}

// SettingsStore manages application-wide settings.
type SettingsStore interface {
	// GetAppSettings returns stored settings. FlatFeeSet is false when no
	// flat fee has been stored.
	GetAppSettings(ctx context.Context) (*models.AppSettings, error)

	SetFlatFee(ctx context.Context, fee float64) error
}

// UserStore manages user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail and GetUserByID return ErrNotFound when no user matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
