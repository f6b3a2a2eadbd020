package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/rachadinha/internal/models"
	"github.com/mmynk/rachadinha/internal/storage"
)

// AddParticipant adds one participant to a session.
func (s *SQLiteStore) AddParticipant(ctx context.Context, sessionID, name string) (*models.Participant, error) {
	added, err := s.BulkAddParticipants(ctx, sessionID, []string{name})
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return nil, fmt.Errorf("participant name is required")
	}
	return added[0], nil
}

// BulkAddParticipants adds several participants to a session in one transaction.
// Blank and repeated names are skipped.
func (s *SQLiteStore) BulkAddParticipants(ctx context.Context, sessionID string, names []string) ([]*models.Participant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := sessionExists(ctx, tx, sessionID); err != nil {
		return nil, err
	}

	added, err := insertParticipants(ctx, tx, sessionID, storage.CleanNames(names))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return added, nil
}

// RemoveParticipant deletes a participant and its item memberships.
func (s *SQLiteStore) RemoveParticipant(ctx context.Context, participantID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM item_members WHERE participant_id = ?", participantID); err != nil {
		return fmt.Errorf("failed to delete item members: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", participantID)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if err := expectOneRow(res, "participant", participantID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SetParticipantPaid marks a participant as paid or unpaid.
func (s *SQLiteStore) SetParticipantPaid(ctx context.Context, participantID string, paid bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE participants SET paid = ? WHERE id = ?", paid, participantID)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return expectOneRow(res, "participant", participantID)
}

// insertParticipants inserts already cleaned names inside tx.
func insertParticipants(ctx context.Context, tx *sql.Tx, sessionID string, names []string) ([]*models.Participant, error) {
	now := time.Now().Unix()
	added := make([]*models.Participant, 0, len(names))
	for _, name := range names {
		p := &models.Participant{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Name:      name,
			CreatedAt: now,
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO participants (id, session_id, name, paid, created_at) VALUES (?, ?, ?, 0, ?)",
			p.ID, p.SessionID, p.Name, p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert participant: %w", err)
		}
		added = append(added, p)
	}
	return added, nil
}

func sessionExists(ctx context.Context, tx *sql.Tx, sessionID string) error {
	var exists int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", sessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check session existence: %w", err)
	}
	return nil
}
