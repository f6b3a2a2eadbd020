package calculator

// Collection summarizes how much of a bill has been marked as paid.
type Collection struct {
	Collected    float64 // Sum of totals of participants marked paid
	Outstanding  float64 // TotalBill - Collected
	PaidCount    int
	PendingCount int

	// Pending lists participants still owing money, in breakdown order.
	Pending []ParticipantBreakdown
}

// CollectionStatus applies the paid flags to a breakdown.
// Participants missing from paid count as pending; entries in paid that
// are not in the breakdown are ignored.
func CollectionStatus(b *Breakdown, paid map[string]bool) Collection {
	var c Collection
	if b == nil {
		return c
	}

	for _, p := range b.Participants {
		if paid[p.ParticipantID] {
			c.Collected += p.Total
			c.PaidCount++
			continue
		}
		c.PendingCount++
		c.Pending = append(c.Pending, p)
	}

	c.Outstanding = b.TotalBill - c.Collected
	// Avoid floating point noise once everyone paid
	if c.PendingCount == 0 {
		c.Outstanding = 0
	}
	return c
}
