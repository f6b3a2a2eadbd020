package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/rachadinha/internal/calculator"
	"github.com/mmynk/rachadinha/internal/format"
	"github.com/mmynk/rachadinha/internal/metrics"
	"github.com/mmynk/rachadinha/internal/middleware"
	"github.com/mmynk/rachadinha/internal/models"
	"github.com/mmynk/rachadinha/internal/storage"
	"github.com/mmynk/rachadinha/pkg/api"
)

var _ api.SessionServiceHandler = (*SessionService)(nil)

// Defaults apply when a session or the app settings carry no value.
type Defaults struct {
	FlatFee              float64
	ServiceChargePercent float64
}

// GuestTokens issues the tokens handed to participants who join by invite.
type GuestTokens interface {
	GenerateGuest(sessionID, participantID string) (string, error)
}

// SessionService implements the Connect SessionService.
// Every mutation answers with the refetched snapshot and its breakdown.
type SessionService struct {
	store    storage.Store
	guests   GuestTokens
	defaults Defaults
	metrics  *metrics.Metrics
}

// NewSessionService creates a SessionService. m may be nil.
func NewSessionService(store storage.Store, guests GuestTokens, defaults Defaults, m *metrics.Metrics) *SessionService {
	return &SessionService{store: store, guests: guests, defaults: defaults, metrics: m}
}

// CreateSession starts a new split owned by the caller.
func (s *SessionService) CreateSession(ctx context.Context, req *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	percent := s.defaults.ServiceChargePercent
	if req.Msg.ServiceChargePercent != nil {
		percent = *req.Msg.ServiceChargePercent
	}
	if err := validatePercent(percent); err != nil {
		return nil, err
	}

	session := &models.Session{
		OwnerID:              userID,
		Name:                 req.Msg.Name,
		ServiceChargePercent: percent,
		TableNumber:          strings.TrimSpace(req.Msg.TableNumber),
	}
	if err := s.store.CreateSession(ctx, session, storage.CleanNames(req.Msg.Participants)); err != nil {
		slog.Error("CreateSession failed", "owner_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Session created", "session_id", session.ID, "owner_id", userID)
	return s.respond(ctx, session.ID)
}

// JoinSession adds the caller as a participant of a session shared by invite
// code and returns a guest token scoped to that participant.
func (s *SessionService) JoinSession(ctx context.Context, req *connect.Request[api.JoinSessionRequest]) (*connect.Response[api.JoinSessionResponse], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant name is required"))
	}
	if req.Msg.SessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}

	session, err := s.store.GetSession(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if session.InviteCode == "" || subtle.ConstantTimeCompare([]byte(session.InviteCode), []byte(req.Msg.InviteCode)) != 1 {
		slog.Warn("JoinSession rejected invite code", "session_id", session.ID)
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("invalid invite code"))
	}
	if session.Status == models.StatusArchived {
		return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("session %s is archived", session.ID))
	}

	participant, err := s.store.AddParticipant(ctx, session.ID, name)
	if err != nil {
		slog.Error("JoinSession failed", "session_id", session.ID, "error", err)
		return nil, toConnectError(err)
	}
	token, err := s.guests.GenerateGuest(session.ID, participant.ID)
	if err != nil {
		slog.Error("Failed to sign guest token", "session_id", session.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	snapshot, err := s.respond(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	slog.Info("Participant joined", "session_id", session.ID, "participant_id", participant.ID)
	return connect.NewResponse(&api.JoinSessionResponse{
		ParticipantID: participant.ID,
		Token:         token,
		Session:       snapshot.Msg,
	}), nil
}

// GetSession returns the snapshot with its breakdown and collection status.
// Guests may read the session they joined.
func (s *SessionService) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	session, _, err := s.loadReadable(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	resp, err := s.buildResponse(ctx, session)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

// ListSessions returns the caller's sessions, newest first, without contents.
func (s *SessionService) ListSessions(ctx context.Context, req *connect.Request[api.ListSessionsRequest]) (*connect.Response[api.ListSessionsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := s.store.ListSessionsByOwner(ctx, userID)
	if err != nil {
		slog.Error("ListSessions failed", "owner_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.ListSessionsResponse{Sessions: []*api.Session{}}
	for _, session := range sessions {
		if session.Status == models.StatusArchived && !req.Msg.IncludeArchived {
			continue
		}
		resp.Sessions = append(resp.Sessions, toAPISession(session))
	}
	return connect.NewResponse(resp), nil
}

// DeleteSession removes a session and everything in it.
func (s *SessionService) DeleteSession(ctx context.Context, req *connect.Request[api.DeleteSessionRequest]) (*connect.Response[api.DeleteSessionResponse], error) {
	if _, err := s.loadOwned(ctx, req.Msg.SessionID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteSession(ctx, req.Msg.SessionID); err != nil {
		slog.Error("DeleteSession failed", "session_id", req.Msg.SessionID, "error", err)
		return nil, toConnectError(err)
	}
	slog.Info("Session deleted", "session_id", req.Msg.SessionID)
	return connect.NewResponse(&api.DeleteSessionResponse{}), nil
}

// ArchiveSession archives or reactivates a session.
func (s *SessionService) ArchiveSession(ctx context.Context, req *connect.Request[api.ArchiveSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	status := models.StatusActive
	if req.Msg.Archived {
		status = models.StatusArchived
	}
	return s.mutate(ctx, req.Msg.SessionID, func(*models.Session) error {
		return s.store.UpdateSessionStatus(ctx, req.Msg.SessionID, status)
	})
}

// UpdateServiceCharge sets the service charge percentage.
func (s *SessionService) UpdateServiceCharge(ctx context.Context, req *connect.Request[api.UpdateServiceChargeRequest]) (*connect.Response[api.SessionResponse], error) {
	if err := validatePercent(req.Msg.Percent); err != nil {
		return nil, err
	}
	return s.mutate(ctx, req.Msg.SessionID, func(*models.Session) error {
		return s.store.UpdateServiceCharge(ctx, req.Msg.SessionID, req.Msg.Percent)
	})
}

// UpdateTableNumber sets the free-form table identifier.
func (s *SessionService) UpdateTableNumber(ctx context.Context, req *connect.Request[api.UpdateTableNumberRequest]) (*connect.Response[api.SessionResponse], error) {
	return s.mutate(ctx, req.Msg.SessionID, func(*models.Session) error {
		return s.store.UpdateTableNumber(ctx, req.Msg.SessionID, strings.TrimSpace(req.Msg.TableNumber))
	})
}

// AddParticipant adds one named participant.
func (s *SessionService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.SessionResponse], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant name is required"))
	}
	return s.mutate(ctx, req.Msg.SessionID, func(*models.Session) error {
		_, err := s.store.AddParticipant(ctx, req.Msg.SessionID, name)
		return err
	})
}

// BulkAddParticipants adds several participants at once. Blank and repeated names are skipped.
func (s *SessionService) BulkAddParticipants(ctx context.Context, req *connect.Request[api.BulkAddParticipantsRequest]) (*connect.Response[api.SessionResponse], error) {
	names := storage.CleanNames(req.Msg.Names)
	if len(names) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("at least one participant name is required"))
	}
	return s.mutate(ctx, req.Msg.SessionID, func(*models.Session) error {
		_, err := s.store.BulkAddParticipants(ctx, req.Msg.SessionID, names)
		return err
	})
}

// RemoveParticipant deletes a participant and drops it from every item.
func (s *SessionService) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.SessionResponse], error) {
	return s.mutate(ctx, req.Msg.SessionID, func(session *models.Session) error {
		if err := participantInSession(session, req.Msg.ParticipantID); err != nil {
			return err
		}
		return s.store.RemoveParticipant(ctx, req.Msg.ParticipantID)
	})
}

// SetParticipantPaid marks a participant as paid or pending.
func (s *SessionService) SetParticipantPaid(ctx context.Context, req *connect.Request[api.SetParticipantPaidRequest]) (*connect.Response[api.SessionResponse], error) {
	return s.mutate(ctx, req.Msg.SessionID, func(session *models.Session) error {
		if err := participantInSession(session, req.Msg.ParticipantID); err != nil {
			return err
		}
		return s.store.SetParticipantPaid(ctx, req.Msg.ParticipantID, req.Msg.Paid)
	})
}

// AddItem adds a priced item with its initial members.
func (s *SessionService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.SessionResponse], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if err := validateItem(name, req.Msg.Price); err != nil {
		return nil, err
	}
	return s.mutate(ctx, req.Msg.SessionID, func(session *models.Session) error {
		for _, id := range req.Msg.MemberIDs {
			if err := participantInSession(session, id); err != nil {
				return err
			}
		}
		return s.store.AddItem(ctx, &models.Item{
			SessionID: req.Msg.SessionID,
			Name:      name,
			Price:     req.Msg.Price,
			MemberIDs: req.Msg.MemberIDs,
		})
	})
}

// UpdateItem changes an item's name and price.
func (s *SessionService) UpdateItem(ctx context.Context, req *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.SessionResponse], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if err := validateItem(name, req.Msg.Price); err != nil {
		return nil, err
	}
	return s.mutate(ctx, req.Msg.SessionID, func(session *models.Session) error {
		if _, ok := session.FindItem(req.Msg.ItemID); !ok {
			return fmt.Errorf("item %s: %w", req.Msg.ItemID, storage.ErrNotFound)
		}
		return s.store.UpdateItem(ctx, req.Msg.ItemID, name, req.Msg.Price)
	})
}

// RemoveItem deletes an item.
func (s *SessionService) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.SessionResponse], error) {
	return s.mutate(ctx, req.Msg.SessionID, func(session *models.Session) error {
		if _, ok := session.FindItem(req.Msg.ItemID); !ok {
			return fmt.Errorf("item %s: %w", req.Msg.ItemID, storage.ErrNotFound)
		}
		return s.store.RemoveItem(ctx, req.Msg.ItemID)
	})
}

// ToggleItemMember adds the participant to the item, or removes it when already a member.
func (s *SessionService) ToggleItemMember(ctx context.Context, req *connect.Request[api.ToggleItemMemberRequest]) (*connect.Response[api.SessionResponse], error) {
	return s.mutate(ctx, req.Msg.SessionID, func(session *models.Session) error {
		item, ok := session.FindItem(req.Msg.ItemID)
		if !ok {
			return fmt.Errorf("item %s: %w", req.Msg.ItemID, storage.ErrNotFound)
		}
		if err := participantInSession(session, req.Msg.ParticipantID); err != nil {
			return err
		}
		return s.store.SetItemMember(ctx, item.ID, req.Msg.ParticipantID, !item.HasMember(req.Msg.ParticipantID))
	})
}

// GetSummary renders a plain-text receipt for sharing.
func (s *SessionService) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	text, err := s.Summary(ctx, req.Msg.SessionID, req.Msg.ParticipantID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetSummaryResponse{Text: text}), nil
}

// Summary returns one participant's receipt, or the whole bill when
// participantID is empty. Owners may read any receipt. Guests only get
// their own, which is also the default for them.
func (s *SessionService) Summary(ctx context.Context, sessionID, participantID string) (string, error) {
	session, guest, err := s.loadReadable(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if guest != nil {
		if participantID == "" {
			participantID = guest.ParticipantID
		}
		if participantID != guest.ParticipantID {
			return "", connect.NewError(connect.CodePermissionDenied, fmt.Errorf("guests can only read their own summary"))
		}
	}
	b, err := s.breakdown(ctx, session)
	if err != nil {
		return "", err
	}

	if participantID == "" {
		return format.SessionSummary(session, b), nil
	}
	pb, ok := b.ByID(participantID)
	if !ok {
		return "", connect.NewError(connect.CodeNotFound, fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound))
	}
	return format.Summary(pb.Name, pb, session.ServiceChargePercent, session.Name), nil
}

// GetAppSettings returns the application-wide flat fee.
func (s *SessionService) GetAppSettings(ctx context.Context, req *connect.Request[api.GetAppSettingsRequest]) (*connect.Response[api.AppSettings], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AppSettings{FlatFee: settings.FlatFee, IsDefault: !settings.FlatFeeSet}), nil
}

// UpdateFlatFee stores the flat fee charged to every participant.
// Only admins may change it.
func (s *SessionService) UpdateFlatFee(ctx context.Context, req *connect.Request[api.UpdateFlatFeeRequest]) (*connect.Response[api.AppSettings], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("unknown user"))
		}
		return nil, toConnectError(err)
	}
	if !user.IsAdmin {
		slog.Warn("UpdateFlatFee denied", "user_id", userID)
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("only admins can change the flat fee"))
	}

	fee := req.Msg.FlatFee
	if math.IsNaN(fee) || math.IsInf(fee, 0) || fee < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %v", calculator.ErrNegativeFee, fee))
	}

	if err := s.store.SetFlatFee(ctx, fee); err != nil {
		slog.Error("UpdateFlatFee failed", "error", err)
		return nil, toConnectError(err)
	}
	slog.Info("Flat fee updated", "flat_fee", fee, "user_id", userID)
	return connect.NewResponse(&api.AppSettings{FlatFee: fee}), nil
}

// mutate checks ownership, applies fn and answers with the refetched snapshot.
func (s *SessionService) mutate(ctx context.Context, sessionID string, fn func(*models.Session) error) (*connect.Response[api.SessionResponse], error) {
	session, err := s.loadOwned(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		slog.Warn("Session mutation failed", "session_id", sessionID, "error", err)
		return nil, toConnectError(err)
	}
	return s.respond(ctx, sessionID)
}

func (s *SessionService) respond(ctx context.Context, sessionID string) (*connect.Response[api.SessionResponse], error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		slog.Error("Failed to refetch session", "session_id", sessionID, "error", err)
		return nil, toConnectError(err)
	}
	resp, err := s.buildResponse(ctx, session)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

func (s *SessionService) buildResponse(ctx context.Context, session *models.Session) (*api.SessionResponse, error) {
	b, err := s.breakdown(ctx, session)
	if err != nil {
		return nil, err
	}

	paid := make(map[string]bool, len(session.Participants))
	for _, p := range session.Participants {
		paid[p.ID] = p.Paid
	}
	collection := calculator.CollectionStatus(b, paid)

	apiSession := toAPISession(session)
	if middleware.GetUserID(ctx) != session.OwnerID {
		apiSession.InviteCode = ""
	}

	return &api.SessionResponse{
		Session:    apiSession,
		Breakdown:  toAPIBreakdown(b),
		Collection: toAPICollection(collection),
	}, nil
}

func (s *SessionService) breakdown(ctx context.Context, session *models.Session) (*calculator.Breakdown, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	b, err := calculator.ComputeBreakdown(session, settings.FlatFee)
	if err != nil {
		slog.Error("ComputeBreakdown failed", "session_id", session.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.ObserveBreakdown(b.TotalBill)
	return b, nil
}

// settings returns stored settings with the configured default filled in.
func (s *SessionService) settings(ctx context.Context) (*models.AppSettings, error) {
	settings, err := s.store.GetAppSettings(ctx)
	if err != nil {
		slog.Error("GetAppSettings failed", "error", err)
		return nil, toConnectError(err)
	}
	if !settings.FlatFeeSet {
		settings.FlatFee = s.defaults.FlatFee
	}
	return settings, nil
}

// loadOwned fetches a session the caller owns.
func (s *SessionService) loadOwned(ctx context.Context, sessionID string) (*models.Session, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if session.OwnerID != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("session %s belongs to another user", sessionID))
	}
	return session, nil
}

// loadReadable fetches a session the caller owns or joined as a guest.
// The returned guest is nil for owners.
func (s *SessionService) loadReadable(ctx context.Context, sessionID string) (*models.Session, *middleware.Guest, error) {
	guest, ok := middleware.GetGuest(ctx)
	if !ok {
		session, err := s.loadOwned(ctx, sessionID)
		return session, nil, err
	}
	if sessionID == "" {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}
	if sessionID != guest.SessionID {
		return nil, nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("guest token is for another session"))
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, toConnectError(err)
	}
	if _, ok := session.FindParticipant(guest.ParticipantID); !ok {
		return nil, nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("participant %s was removed", guest.ParticipantID))
	}
	return session, &guest, nil
}

func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		if _, ok := middleware.GetGuest(ctx); ok {
			return "", connect.NewError(connect.CodePermissionDenied, fmt.Errorf("guests have read-only access"))
		}
		return "", connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	return userID, nil
}

func participantInSession(session *models.Session, participantID string) error {
	if _, ok := session.FindParticipant(participantID); !ok {
		return fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	return nil
}

func validatePercent(percent float64) error {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return connect.NewError(connect.CodeInvalidArgument, calculator.ErrInvalidAmount)
	}
	if percent < 0 {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %v", calculator.ErrNegativePercent, percent))
	}
	return nil
}

func validateItem(name string, price float64) error {
	if name == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("item name is required"))
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return connect.NewError(connect.CodeInvalidArgument, calculator.ErrInvalidAmount)
	}
	if price < 0 {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %v", calculator.ErrNegativePrice, price))
	}
	return nil
}

// toConnectError maps storage and calculator errors to Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrForeignMember),
		errors.Is(err, calculator.ErrNegativePrice),
		errors.Is(err, calculator.ErrNegativePercent),
		errors.Is(err, calculator.ErrNegativeFee),
		errors.Is(err, calculator.ErrInvalidAmount):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
