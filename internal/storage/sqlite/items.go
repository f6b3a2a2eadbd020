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

// AddItem persists a new item together with its initial members.
func (s *SQLiteStore) AddItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := sessionExists(ctx, tx, item.SessionID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO items (id, session_id, name, price, created_at) VALUES (?, ?, ?, ?, ?)",
		item.ID, item.SessionID, item.Name, item.Price, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	for _, participantID := range item.MemberIDs {
		if err := addMember(ctx, tx, item.ID, item.SessionID, participantID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateItem changes the name and price of an item.
func (s *SQLiteStore) UpdateItem(ctx context.Context, itemID, name string, price float64) error {
	res, err := s.db.ExecContext(ctx, "UPDATE items SET name = ?, price = ? WHERE id = ?", name, price, itemID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return expectOneRow(res, "item", itemID)
}

// RemoveItem deletes an item and its memberships.
func (s *SQLiteStore) RemoveItem(ctx context.Context, itemID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM item_members WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("failed to delete item members: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM items WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if err := expectOneRow(res, "item", itemID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetItemMember adds or removes a participant from an item.
func (s *SQLiteStore) SetItemMember(ctx context.Context, itemID, participantID string, member bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sessionID string
	err = tx.QueryRowContext(ctx, "SELECT session_id FROM items WHERE id = ?", itemID).Scan(&sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}

	if member {
		err = addMember(ctx, tx, itemID, sessionID, participantID)
	} else {
		_, err = tx.ExecContext(ctx,
			"DELETE FROM item_members WHERE item_id = ? AND participant_id = ?",
			itemID, participantID,
		)
		if err != nil {
			err = fmt.Errorf("failed to delete item member: %w", err)
		}
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// addMember links a participant to an item after checking both belong to the same session.
func addMember(ctx context.Context, tx *sql.Tx, itemID, sessionID, participantID string) error {
	var participantSession string
	err := tx.QueryRowContext(ctx, "SELECT session_id FROM participants WHERE id = ?", participantID).Scan(&participantSession)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get participant: %w", err)
	}
	if participantSession != sessionID {
		return fmt.Errorf("participant %s: %w", participantID, storage.ErrForeignMember)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO item_members (item_id, participant_id) VALUES (?, ?)",
		itemID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item member: %w", err)
	}
	return nil
}
