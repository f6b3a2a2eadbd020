// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/rachadinha/internal/models"
	"github.com/mmynk/rachadinha/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, verifies the connection and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// CreateSession persists a new session together with its first participants
// in one transaction.
func (s *Store) CreateSession(ctx context.Context, session *models.Session, participantNames []string) error {
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, owner_id, name, service_charge, status, table_number, invite_code, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
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

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	session.Participants = session.Participants[:0]
	for _, p := range added {
		session.Participants = append(session.Participants, *p)
	}
	return nil
}

// GetSession retrieves the full session snapshot. The reads run in one
// repeatable-read transaction so they all see the same committed state.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	session := &models.Session{}
	err = tx.QueryRow(ctx,
		`SELECT id, owner_id, name, service_charge, status, table_number, invite_code, created_at
		 FROM sessions WHERE id = $1`,
		sessionID,
	).Scan(&session.ID, &session.OwnerID, &session.Name, &session.ServiceChargePercent,
		&session.Status, &session.TableNumber, &session.InviteCode, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT id, session_id, name, paid, created_at
		 FROM participants WHERE session_id = $1 ORDER BY name, seq`,
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

	itemRows, err := tx.Query(ctx,
		`SELECT id, session_id, name, price, created_at
		 FROM items WHERE session_id = $1 ORDER BY seq`,
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

	memberRows, err := tx.Query(ctx,
		`SELECT m.item_id, m.participant_id
		 FROM item_members m JOIN items i ON i.id = m.item_id
		 WHERE i.session_id = $1 ORDER BY m.seq`,
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

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to end read transaction: %w", err)
	}
	return session, nil
}

// ListSessionsByOwner retrieves a user's sessions, newest first.
func (s *Store) ListSessionsByOwner(ctx context.Context, ownerID string) ([]*models.Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, name, service_charge, status, table_number, invite_code, created_at
		 FROM sessions WHERE owner_id = $1 ORDER BY created_at DESC, seq DESC`,
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

func (s *Store) UpdateServiceCharge(ctx context.Context, sessionID string, percent float64) error {
	return s.exec(ctx, "session", sessionID, "UPDATE sessions SET service_charge = $1 WHERE id = $2", percent, sessionID)
}

func (s *Store) UpdateTableNumber(ctx context.Context, sessionID, tableNumber string) error {
	return s.exec(ctx, "session", sessionID, "UPDATE sessions SET table_number = $1 WHERE id = $2", tableNumber, sessionID)
}

func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID, status string) error {
	return s.exec(ctx, "session", sessionID, "UPDATE sessions SET status = $1 WHERE id = $2", status, sessionID)
}

// DeleteSession removes a session; participants, items and memberships cascade.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	return s.exec(ctx, "session", sessionID, "DELETE FROM sessions WHERE id = $1", sessionID)
}

// AddParticipant adds one participant to a session.
func (s *Store) AddParticipant(ctx context.Context, sessionID, name string) (*models.Participant, error) {
	added, err := s.BulkAddParticipants(ctx, sessionID, []string{name})
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return nil, fmt.Errorf("participant name is required")
	}
	return added[0], nil
}

// BulkAddParticipants adds several participants in one transaction.
func (s *Store) BulkAddParticipants(ctx context.Context, sessionID string, names []string) ([]*models.Participant, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists int
	err = tx.QueryRow(ctx, "SELECT 1 FROM sessions WHERE id = $1", sessionID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}

	added, err := insertParticipants(ctx, tx, sessionID, storage.CleanNames(names))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return added, nil
}

// insertParticipants inserts already cleaned names inside tx.
func insertParticipants(ctx context.Context, tx pgx.Tx, sessionID string, names []string) ([]*models.Participant, error) {
	now := time.Now().Unix()
	added := make([]*models.Participant, 0, len(names))
	for _, name := range names {
		p := &models.Participant{ID: uuid.New().String(), SessionID: sessionID, Name: name, CreatedAt: now}
		_, err := tx.Exec(ctx,
			"INSERT INTO participants (id, session_id, name, paid, created_at) VALUES ($1, $2, $3, FALSE, $4)",
			p.ID, p.SessionID, p.Name, p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert participant: %w", err)
		}
		added = append(added, p)
	}
	return added, nil
}

// RemoveParticipant deletes a participant; memberships cascade.
func (s *Store) RemoveParticipant(ctx context.Context, participantID string) error {
	return s.exec(ctx, "participant", participantID, "DELETE FROM participants WHERE id = $1", participantID)
}

func (s *Store) SetParticipantPaid(ctx context.Context, participantID string, paid bool) error {
	return s.exec(ctx, "participant", participantID, "UPDATE participants SET paid = $1 WHERE id = $2", paid, participantID)
}

// AddItem persists a new item with its initial members.
func (s *Store) AddItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"INSERT INTO items (id, session_id, name, price, created_at) VALUES ($1, $2, $3, $4, $5)",
		item.ID, item.SessionID, item.Name, item.Price, item.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("session %s: %w", item.SessionID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	for _, participantID := range item.MemberIDs {
		if err := addMember(ctx, tx, item.ID, item.SessionID, participantID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) UpdateItem(ctx context.Context, itemID, name string, price float64) error {
	return s.exec(ctx, "item", itemID, "UPDATE items SET name = $1, price = $2 WHERE id = $3", name, price, itemID)
}

// RemoveItem deletes an item; memberships cascade.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	return s.exec(ctx, "item", itemID, "DELETE FROM items WHERE id = $1", itemID)
}

// SetItemMember adds or removes a participant from an item.
func (s *Store) SetItemMember(ctx context.Context, itemID, participantID string, member bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var sessionID string
	err = tx.QueryRow(ctx, "SELECT session_id FROM items WHERE id = $1", itemID).Scan(&sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}

	if member {
		if err := addMember(ctx, tx, itemID, sessionID, participantID); err != nil {
			return err
		}
	} else {
		_, err = tx.Exec(ctx, "DELETE FROM item_members WHERE item_id = $1 AND participant_id = $2", itemID, participantID)
		if err != nil {
			return fmt.Errorf("failed to delete item member: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func addMember(ctx context.Context, tx pgx.Tx, itemID, sessionID, participantID string) error {
	var participantSession string
	err := tx.QueryRow(ctx, "SELECT session_id FROM participants WHERE id = $1", participantID).Scan(&participantSession)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get participant: %w", err)
	}
	if participantSession != sessionID {
		return fmt.Errorf("participant %s: %w", participantID, storage.ErrForeignMember)
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO item_members (item_id, participant_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		itemID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item member: %w", err)
	}
	return nil
}

// GetAppSettings reads the application-wide settings.
func (s *Store) GetAppSettings(ctx context.Context) (*models.AppSettings, error) {
	settings := &models.AppSettings{}
	var value string
	err := s.pool.QueryRow(ctx, "SELECT value FROM app_settings WHERE key = $1", models.SettingFlatFee).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app settings: %w", err)
	}

	fee, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s setting %q: %w", models.SettingFlatFee, value, err)
	}
	settings.FlatFee = fee
	settings.FlatFeeSet = true
	return settings, nil
}

// SetFlatFee stores the flat per-participant fee.
func (s *Store) SetFlatFee(ctx context.Context, fee float64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO app_settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		models.SettingFlatFee, strconv.FormatFloat(fee, 'f', -1, 64),
	)
	if err != nil {
		return fmt.Errorf("failed to set flat fee: %w", err)
	}
	return nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, is_admin, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.IsAdmin, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) getUser(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, is_admin, created_at, updated_at
		 FROM users WHERE `+column+` = $1`,
		value,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", value, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return user, nil
}

// exec runs a single-row statement and maps zero affected rows to storage.ErrNotFound.
func (s *Store) exec(ctx context.Context, kind, id, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
