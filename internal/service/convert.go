package service

import (
	"github.com/mmynk/rachadinha/internal/calculator"
	"github.com/mmynk/rachadinha/internal/models"
	"github.com/mmynk/rachadinha/pkg/api"
)

func toAPISession(s *models.Session) *api.Session {
	out := &api.Session{
		ID:                   s.ID,
		Name:                 s.Name,
		ServiceChargePercent: s.ServiceChargePercent,
		Status:               s.Status,
		TableNumber:          s.TableNumber,
		InviteCode:           s.InviteCode,
		Participants:         make([]*api.Participant, len(s.Participants)),
		Items:                make([]*api.Item, len(s.Items)),
		CreatedAt:            s.CreatedAt,
	}
	for i, p := range s.Participants {
		out.Participants[i] = &api.Participant{ID: p.ID, Name: p.Name, Paid: p.Paid}
	}
	for i, item := range s.Items {
		members := item.MemberIDs
		if members == nil {
			members = []string{}
		}
		out.Items[i] = &api.Item{ID: item.ID, Name: item.Name, Price: item.Price, MemberIDs: members}
	}
	return out
}

func toAPIBreakdown(b *calculator.Breakdown) *api.Breakdown {
	out := &api.Breakdown{
		Participants:          make([]*api.ParticipantBreakdown, len(b.Participants)),
		TotalConsumed:         b.TotalConsumed,
		TotalServiceCharge:    b.TotalServiceCharge,
		TotalFlatFee:          b.TotalFlatFee,
		TotalBill:             b.TotalBill,
		ServiceChargePercent:  b.ServiceChargePercent,
		FlatFeePerParticipant: b.FlatFeePerParticipant,
	}
	for i, p := range b.Participants {
		out.Participants[i] = &api.ParticipantBreakdown{
			ParticipantID:        p.ParticipantID,
			Name:                 p.Name,
			IndividualItemsTotal: p.IndividualItemsTotal,
			SharedItemsShare:     p.SharedItemsShare,
			Subtotal:             p.Subtotal,
			ServiceChargePortion: p.ServiceChargePortion,
			FlatFee:              p.FlatFee,
			Total:                p.Total,
		}
	}
	return out
}

func toAPICollection(c calculator.Collection) *api.Collection {
	out := &api.Collection{
		Collected:    c.Collected,
		Outstanding:  c.Outstanding,
		PaidCount:    c.PaidCount,
		PendingCount: c.PendingCount,
		PendingIDs:   make([]string, len(c.Pending)),
	}
	for i, p := range c.Pending {
		out.PendingIDs[i] = p.ParticipantID
	}
	return out
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
}
