// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/rachadinha/internal/models"
	"github.com/mmynk/rachadinha/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession persists a new session together with its first participants
// in one transaction.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.Session, participantNames []string) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt == 0 {
		session.CreatedAt = time.Now().Unix()
	}
	if session.Status == "" {
		session.Status = models.StatusActive
	}
	if session.InviteCode == "" {
		session.InviteCode = storage.NewInviteCode()
	}
	session.Name = storage.SessionName(session.Name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, owner_id, name, service_charge, status, table_number, invite_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.OwnerID, session.Name, session.ServiceChargePercent,
		session.Status, session.TableNumber, session.InviteCode, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	added, err := insertParticipants(ctx, tx, session.ID, storage.CleanNames(participantNames))
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	session.Participants = session.Participants[:0]
	for _, p := range added {
		session.Participants = append(session.Participants, *p)
	}
	return nil
}

// GetSession retrieves a session by ID, including participants, items and memberships.
// All four reads share one read-only transaction, so a concurrent mutation is
// seen either entirely or not at all.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session := &models.Session{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, owner_id, name, service_charge, status, table_number, invite_code, created_at
		 FROM sessions WHERE id = ?`,
		sessionID,
	).Scan(&session.ID, &session.OwnerID, &session.Name, &session.ServiceChargePercent,
		&session.Status, &session.TableNumber, &session.InviteCode, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// Get participants
	rows, err := tx.QueryContext(ctx,
		`SELECT id, session_id, name, paid, created_at
		 FROM participants WHERE session_id = ? ORDER BY name, rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Name, &p.Paid, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		session.Participants = append(session.Participants, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	// Get items
	itemRows, err := tx.QueryContext(ctx,
		`SELECT id, session_id, name, price, created_at
		 FROM items WHERE session_id = ? ORDER BY rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	itemIndex := make(map[string]int)
	for itemRows.Next() {
		var item models.Item
		if err := itemRows.Scan(&item.ID, &item.SessionID, &item.Name, &item.Price, &item.CreatedAt); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		itemIndex[item.ID] = len(session.Items)
		session.Items = append(session.Items, item)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	// Get memberships for all items at once
	memberRows, err := tx.QueryContext(ctx,
		`SELECT m.item_id, m.participant_id
		 FROM item_members m JOIN items i ON i.id = m.item_id
		 WHERE i.session_id = ? ORDER BY m.rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item members: %w", err)
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var itemID, participantID string
		if err := memberRows.Scan(&itemID, &participantID); err != nil {
			return nil, fmt.Errorf("failed to scan item member: %w", err)
		}
		if i, ok := itemIndex[itemID]; ok {
			session.Items[i].MemberIDs = append(session.Items[i].MemberIDs, participantID)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item members: %w", err)
	}
	memberRows.Close()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to end read transaction: %w", err)
	}
	return session, nil
}

// ListSessionsByOwner retrieves all sessions started by a user, newest first.
func (s *SQLiteStore) ListSessionsByOwner(ctx context.Context, ownerID string) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, service_charge, status, table_number, invite_code, created_at
		 FROM sessions WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session := &models.Session{}
		if err := rows.Scan(&session.ID, &session.OwnerID, &session.Name, &session.ServiceChargePercent,
			&session.Status, &session.TableNumber, &session.InviteCode, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// UpdateServiceCharge sets the service charge percentage of a session.
func (s *SQLiteStore) UpdateServiceCharge(ctx context.Context, sessionID string, percent float64) error {
	return s.updateSession(ctx, sessionID, "service_charge", percent)
}

// UpdateTableNumber sets the table number of a session.
func (s *SQLiteStore) UpdateTableNumber(ctx context.Context, sessionID, tableNumber string) error {
	return s.updateSession(ctx, sessionID, "table_number", tableNumber)
}

// UpdateSessionStatus archives or reactivates a session.
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, sessionID, status string) error {
	return s.updateSession(ctx, sessionID, "status", status)
}

// updateSession sets one column; column is never user input.
func (s *SQLiteStore) updateSession(ctx context.Context, sessionID, column string, value any) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET "+column+" = ? WHERE id = ?",
		value, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", column, err)
	}
	return expectOneRow(res, "session", sessionID)
}

// DeleteSession removes a session with its participants, items and memberships.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	children := []string{
		"DELETE FROM item_members WHERE item_id IN (SELECT id FROM items WHERE session_id = ?)",
		"DELETE FROM items WHERE session_id = ?",
		"DELETE FROM participants WHERE session_id = ?",
	}
	for _, stmt := range children {
		if _, err := tx.ExecContext(ctx, stmt, sessionID); err != nil {
			return fmt.Errorf("failed to delete session children: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := expectOneRow(res, "session", sessionID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// expectOneRow maps "no rows affected" to storage.ErrNotFound.
func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
