package api

// Session is the wire form of a session snapshot.
type Session struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	ServiceChargePercent float64        `json:"serviceChargePercent"`
	Status               string         `json:"status"`
	TableNumber          string         `json:"tableNumber,omitempty"`
	InviteCode           string         `json:"inviteCode,omitempty"` // owner only
	Participants         []*Participant `json:"participants"`
	Items                []*Item        `json:"items"`
	CreatedAt            int64          `json:"createdAt"`
}

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Paid bool   `json:"paid"`
}

type Item struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	MemberIDs []string `json:"memberIds"`
}

// ParticipantBreakdown carries unrounded amounts; clients round at display time.
type ParticipantBreakdown struct {
	ParticipantID        string  `json:"participantId"`
	Name                 string  `json:"name"`
	IndividualItemsTotal float64 `json:"individualItemsTotal"`
	SharedItemsShare     float64 `json:"sharedItemsShare"`
	Subtotal             float64 `json:"subtotal"`
	ServiceChargePortion float64 `json:"serviceChargePortion"`
	FlatFee              float64 `json:"flatFee"`
	Total                float64 `json:"total"`
}

type Breakdown struct {
	Participants          []*ParticipantBreakdown `json:"participants"`
	TotalConsumed         float64                 `json:"totalConsumed"`
	TotalServiceCharge    float64                 `json:"totalServiceCharge"`
	TotalFlatFee          float64                 `json:"totalFlatFee"`
	TotalBill             float64                 `json:"totalBill"`
	ServiceChargePercent  float64                 `json:"serviceChargePercent"`
	FlatFeePerParticipant float64                 `json:"flatFeePerParticipant"`
}

type Collection struct {
	Collected    float64  `json:"collected"`
	Outstanding  float64  `json:"outstanding"`
	PaidCount    int      `json:"paidCount"`
	PendingCount int      `json:"pendingCount"`
	PendingIDs   []string `json:"pendingIds"`
}

// SessionResponse is returned by GetSession and by every session mutation:
// the fresh snapshot with its recomputed breakdown.
type SessionResponse struct {
	Session    *Session    `json:"session"`
	Breakdown  *Breakdown  `json:"breakdown"`
	Collection *Collection `json:"collection"`
}

type CreateSessionRequest struct {
	Name string `json:"name"`
	// ServiceChargePercent defaults to the server's configured value when nil.
	ServiceChargePercent *float64 `json:"serviceChargePercent,omitempty"`
	TableNumber          string   `json:"tableNumber,omitempty"`
	Participants         []string `json:"participants,omitempty"`
}

// JoinSessionRequest adds the caller to a session as a participant. No login
// is needed; the invite code shared by the owner authorizes the join.
type JoinSessionRequest struct {
	SessionID  string `json:"sessionId"`
	InviteCode string `json:"inviteCode"`
	Name       string `json:"name"`
}

// JoinSessionResponse carries a guest token that lets the new participant
// read the session and their own summary.
type JoinSessionResponse struct {
	ParticipantID string           `json:"participantId"`
	Token         string           `json:"token"`
	Session       *SessionResponse `json:"session"`
}

type GetSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type ListSessionsRequest struct {
	IncludeArchived bool `json:"includeArchived,omitempty"`
}

type ListSessionsResponse struct {
	Sessions []*Session `json:"sessions"`
}

type DeleteSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type DeleteSessionResponse struct{}

type ArchiveSessionRequest struct {
	SessionID string `json:"sessionId"`
	// Archived false reactivates the session.
	Archived bool `json:"archived"`
}

type UpdateServiceChargeRequest struct {
	SessionID string  `json:"sessionId"`
	Percent   float64 `json:"percent"`
}

type UpdateTableNumberRequest struct {
	SessionID   string `json:"sessionId"`
	TableNumber string `json:"tableNumber"`
}

type AddParticipantRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

type BulkAddParticipantsRequest struct {
	SessionID string   `json:"sessionId"`
	Names     []string `json:"names"`
}

type RemoveParticipantRequest struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
}

type SetParticipantPaidRequest struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	Paid          bool   `json:"paid"`
}

type AddItemRequest struct {
	SessionID string   `json:"sessionId"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	MemberIDs []string `json:"memberIds,omitempty"`
}

type UpdateItemRequest struct {
	SessionID string  `json:"sessionId"`
	ItemID    string  `json:"itemId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type RemoveItemRequest struct {
	SessionID string `json:"sessionId"`
	ItemID    string `json:"itemId"`
}

type ToggleItemMemberRequest struct {
	SessionID     string `json:"sessionId"`
	ItemID        string `json:"itemId"`
	ParticipantID string `json:"participantId"`
}

type GetSummaryRequest struct {
	SessionID string `json:"sessionId"`
	// ParticipantID selects one participant's receipt; empty returns the whole bill.
	ParticipantID string `json:"participantId,omitempty"`
}

type GetSummaryResponse struct {
	Text string `json:"text"`
}

type GetAppSettingsRequest struct{}

type UpdateFlatFeeRequest struct {
	FlatFee float64 `json:"flatFee"`
}

type AppSettings struct {
	FlatFee float64 `json:"flatFee"`
	// IsDefault is true when no flat fee was stored and the server default applies.
	IsDefault bool `json:"isDefault"`
}

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}
