package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mmynk/rachadinha/internal/calculator"
	"github.com/mmynk/rachadinha/internal/format"
	"github.com/mmynk/rachadinha/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func computeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute [snapshot]",
		Short: "Show how much each participant owes",
		Long: `Compute the breakdown of a session stored in a YAML or JSON file:
individual and shared consumption, service charge portion, flat fee and total.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, d, err := loadDefaults()
			if err != nil {
				return err
			}
			session, flatFee, err := loadSnapshot(args[0], d)
			if err != nil {
				return err
			}
			b, err := calculator.ComputeBreakdown(session, flatFee)
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(b)
			}
			renderBreakdown(cmd.OutOrStdout(), session, b)
			return nil
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output unrounded values as JSON")

	return cmd
}

func renderBreakdown(w io.Writer, session *models.Session, b *calculator.Breakdown) {
	paid := make(map[string]bool, len(session.Participants))
	for _, p := range session.Participants {
		paid[p.ID] = p.Paid
	}

	rows := make([][]string, 0, len(b.Participants))
	for _, p := range b.Participants {
		status := pendingStyle.Render("pendente")
		if paid[p.ParticipantID] {
			status = successStyle.Render("pago")
		}
		rows = append(rows, []string{
			p.Name,
			format.Currency(p.IndividualItemsTotal),
			format.Currency(p.SharedItemsShare),
			format.Currency(p.ServiceChargePortion),
			format.Currency(p.FlatFee),
			format.Currency(p.Total),
			status,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("Participante", "Individual", "Compartilhado", "Serviço", "Taxa", "Total", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return titleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	title := session.Name
	if session.TableNumber != "" {
		title += " · Mesa " + session.TableNumber
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "Consumo: %s  Serviço (%s): %s  Taxa Rachadinha: %s\n",
		format.Currency(b.TotalConsumed), format.Percent(b.ServiceChargePercent),
		format.Currency(b.TotalServiceCharge), format.Currency(b.TotalFlatFee))
	fmt.Fprintln(w, titleStyle.Render("Total da Conta: "+format.Currency(b.TotalBill)))

	c := calculator.CollectionStatus(b, paid)
	if c.PaidCount > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Recebido: %s  Falta: %s",
			format.Currency(c.Collected), format.Currency(c.Outstanding))))
	}
}
