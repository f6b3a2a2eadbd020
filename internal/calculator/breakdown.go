// Package calculator computes how much each participant of a session owes.
//
// The computation is a pure function of a session snapshot and the flat fee:
// it performs no I/O, keeps no state and is safe to call concurrently.
package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/rachadinha/internal/models"
)

var (
	ErrNegativePrice   = errors.New("item price cannot be negative")
	ErrNegativePercent = errors.New("service charge percent cannot be negative")
	ErrNegativeFee     = errors.New("flat fee cannot be negative")
	ErrInvalidAmount   = errors.New("amount must be a finite number")
)

// ParticipantBreakdown is one participant's share of the bill.
type ParticipantBreakdown struct {
	ParticipantID string
	Name          string

	// IndividualItemsTotal sums items this participant consumed alone.
	IndividualItemsTotal float64

	// SharedItemsShare sums price/members over shared items this participant is part of.
	SharedItemsShare float64

	// Subtotal = IndividualItemsTotal + SharedItemsShare
	Subtotal float64

	// ServiceChargePortion = Subtotal / TotalConsumed × TotalServiceCharge
	ServiceChargePortion float64

	// FlatFee is charged regardless of consumption.
	FlatFee float64

	// Total = Subtotal + ServiceChargePortion + FlatFee
	Total float64
}

// Breakdown is the result of ComputeBreakdown.
type Breakdown struct {
	// Participants follow the order of the session's participants.
	Participants []ParticipantBreakdown

	TotalConsumed      float64
	TotalServiceCharge float64
	TotalFlatFee       float64
	TotalBill          float64

	ServiceChargePercent  float64
	FlatFeePerParticipant float64
}

// ByID returns the breakdown of the given participant.
func (b *Breakdown) ByID(participantID string) (ParticipantBreakdown, bool) {
	for _, p := range b.Participants {
		if p.ParticipantID == participantID {
			return p, true
		}
	}
	return ParticipantBreakdown{}, false
}

// Validate checks the numeric fields of a snapshot and the flat fee.
// Negative or non-finite values are rejected, never clamped.
func Validate(session *models.Session, flatFee float64) error {
	if err := checkAmount(session.ServiceChargePercent); err != nil {
		return fmt.Errorf("service charge: %w", err)
	}
	if session.ServiceChargePercent < 0 {
		return fmt.Errorf("%w: %v", ErrNegativePercent, session.ServiceChargePercent)
	}
	if err := checkAmount(flatFee); err != nil {
		return fmt.Errorf("flat fee: %w", err)
	}
	if flatFee < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeFee, flatFee)
	}
	for _, item := range session.Items {
		if err := checkAmount(item.Price); err != nil {
			return fmt.Errorf("item %q: %w", item.Name, err)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %q costs %v", ErrNegativePrice, item.Name, item.Price)
		}
	}
	return nil
}

func checkAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	return nil
}

// ComputeBreakdown splits a session's bill among its participants.
//
// Algorithm:
//   - an item with one member is charged in full to that member
//   - an item with N > 1 members charges price/N to each of them
//   - an item with no members is ignored
//   - service charge = total consumed × percent / 100, distributed
//     proportionally to each participant's subtotal
//   - every participant pays the flat fee, even with nothing consumed
//
// Member IDs that do not belong to a current participant are ignored, as are
// repeated IDs within one item. Classification and the split divisor only
// count known members, so the sum of participant totals always equals TotalBill.
// No rounding is applied; callers round when displaying.
func ComputeBreakdown(session *models.Session, flatFee float64) (*Breakdown, error) {
	if session == nil {
		return nil, errors.New("session snapshot is required")
	}
	if err := Validate(session, flatFee); err != nil {
		return nil, err
	}

	b := &Breakdown{
		Participants:          make([]ParticipantBreakdown, len(session.Participants)),
		ServiceChargePercent:  session.ServiceChargePercent,
		FlatFeePerParticipant: flatFee,
	}

	// Index participants by ID
	index := make(map[string]int, len(session.Participants))
	for i, p := range session.Participants {
		b.Participants[i] = ParticipantBreakdown{
			ParticipantID: p.ID,
			Name:          p.Name,
			FlatFee:       flatFee,
		}
		index[p.ID] = i
	}

	for _, item := range session.Items {
		members := knownMembers(item.MemberIDs, index)
		switch len(members) {
		case 0:
			continue
		case 1:
			b.Participants[members[0]].IndividualItemsTotal += item.Price
		default:
			share := item.Price / float64(len(members))
			for _, m := range members {
				b.Participants[m].SharedItemsShare += share
			}
		}
	}

	for i := range b.Participants {
		p := &b.Participants[i]
		p.Subtotal = p.IndividualItemsTotal + p.SharedItemsShare
		b.TotalConsumed += p.Subtotal
	}

	b.TotalServiceCharge = b.TotalConsumed * (session.ServiceChargePercent / 100)
	b.TotalFlatFee = flatFee * float64(len(session.Participants))

	for i := range b.Participants {
		p := &b.Participants[i]
		if b.TotalConsumed > 0 {
			p.ServiceChargePortion = (p.Subtotal / b.TotalConsumed) * b.TotalServiceCharge
		}
		p.Total = p.Subtotal + p.ServiceChargePortion + p.FlatFee
	}

	b.TotalBill = b.TotalConsumed + b.TotalServiceCharge + b.TotalFlatFee
	return b, nil
}

// knownMembers maps member IDs to participant indexes, dropping unknown and repeated IDs.
func knownMembers(memberIDs []string, index map[string]int) []int {
	members := make([]int, 0, len(memberIDs))
	seen := make(map[int]bool, len(memberIDs))
	for _, id := range memberIDs {
		i, ok := index[id]
		if !ok || seen[i] {
			continue
		}
		seen[i] = true
		members = append(members, i)
	}
	return members
}
