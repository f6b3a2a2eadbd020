package models

// Session statuses.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// DefaultSessionName is used when a session is created without a name.
const DefaultSessionName = "Nova Rachadinha"

// DefaultServiceChargePercent is the service charge of a new session.
const DefaultServiceChargePercent = 10.0

// Session represents one bill-splitting instance.
// It is the snapshot the calculator consumes.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// OwnerID is the user who started the split.
	OwnerID string

	// Name is the human-readable name (usually the bar or restaurant).
	Name string

	// ServiceChargePercent is the percentage surcharge applied to consumption (e.g. 10 for 10%).
	ServiceChargePercent float64

	// Status is either StatusActive or StatusArchived.
	Status string

	// TableNumber is an optional free-form table identifier.
	TableNumber string

	// InviteCode lets people without an account join as participants.
	InviteCode string

	// Participants are ordered by name.
	Participants []Participant

	// Items are ordered by creation time.
	Items []Item

	// CreatedAt is the Unix timestamp when the session was created.
	CreatedAt int64
}

// Participant represents a person sharing the bill.
type Participant struct {
	ID        string
	SessionID string
	Name      string

	// Paid is set once the participant has settled their total.
	Paid bool

	CreatedAt int64
}

// Item represents a single priced line item.
type Item struct {
	ID        string
	SessionID string

	// Name is the description of the item (e.g., "Pizza", "Chopp").
	Name string

	// Price is the full price of the item, before service charge.
	Price float64

	// MemberIDs are the participants sharing this item.
	// Empty: nobody pays for it. One: individual item. More: split evenly.
	MemberIDs []string

	CreatedAt int64
}

// ParticipantIDs returns the IDs of the session's participants in order.
func (s *Session) ParticipantIDs() []string {
	ids := make([]string, len(s.Participants))
	for i, p := range s.Participants {
		ids[i] = p.ID
	}
	return ids
}

// FindParticipant returns the participant with the given ID, if present.
func (s *Session) FindParticipant(id string) (Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// FindItem returns the item with the given ID, if present.
func (s *Session) FindItem(id string) (Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// HasMember reports whether participantID shares the item.
func (i *Item) HasMember(participantID string) bool {
	for _, id := range i.MemberIDs {
		if id == participantID {
			return true
		}
	}
	return false
}
