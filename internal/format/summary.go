package format

import (
	"fmt"
	"strings"

	"github.com/mmynk/rachadinha/internal/calculator"
	"github.com/mmynk/rachadinha/internal/models"
)

// Summary renders one participant's bill as plain text, suitable for
// copying or sharing outside the app.
func Summary(participantName string, b calculator.ParticipantBreakdown, serviceChargePercent float64, sessionName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rachadinha: %s\n", sessionName)
	fmt.Fprintf(&sb, "Participante: %s\n", participantName)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Itens individuais: %s\n", Currency(b.IndividualItemsTotal))
	fmt.Fprintf(&sb, "Itens compartilhados: %s\n", Currency(b.SharedItemsShare))
	fmt.Fprintf(&sb, "Subtotal: %s\n", Currency(b.Subtotal))
	fmt.Fprintf(&sb, "Taxa de serviço (%s): %s\n", Percent(serviceChargePercent), Currency(b.ServiceChargePortion))
	fmt.Fprintf(&sb, "Taxa Rachadinha: %s\n", Currency(b.FlatFee))
	fmt.Fprintf(&sb, "Total: %s\n", Currency(b.Total))
	return sb.String()
}

// SessionSummary renders the whole bill: every participant's total followed
// by the session totals.
func SessionSummary(session *models.Session, b *calculator.Breakdown) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rachadinha: %s\n", session.Name)
	if session.TableNumber != "" {
		fmt.Fprintf(&sb, "Mesa: %s\n", session.TableNumber)
	}
	sb.WriteString("\n")

	paid := make(map[string]bool, len(session.Participants))
	for _, p := range session.Participants {
		paid[p.ID] = p.Paid
	}
	for _, p := range b.Participants {
		line := fmt.Sprintf("%s: %s", p.Name, Currency(p.Total))
		if paid[p.ParticipantID] {
			line += " (pago)"
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Subtotal: %s\n", Currency(b.TotalConsumed))
	fmt.Fprintf(&sb, "Serviço (%s): %s\n", Percent(b.ServiceChargePercent), Currency(b.TotalServiceCharge))
	fmt.Fprintf(&sb, "Taxa Rachadinha: %s\n", Currency(b.TotalFlatFee))
	fmt.Fprintf(&sb, "Total da Conta: %s\n", Currency(b.TotalBill))
	return sb.String()
}
