package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/rachadinha/internal/calculator"
	"github.com/mmynk/rachadinha/internal/format"
	"github.com/mmynk/rachadinha/pkg/api"
	"github.com/mmynk/rachadinha/pkg/client"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [snapshot]",
		Short: "Print a shareable text receipt",
		Args:  cobra.ExactArgs(1),
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

			name, _ := cmd.Flags().GetString("participant")
			if name == "" {
				fmt.Fprint(cmd.OutOrStdout(), format.SessionSummary(session, b))
				return nil
			}
			// Snapshot files use names as participant IDs
			p, ok := b.ByID(name)
			if !ok {
				return fmt.Errorf("participant %q not found", name)
			}
			fmt.Fprint(cmd.OutOrStdout(), format.Summary(p.Name, p, session.ServiceChargePercent, session.Name))
			return nil
		},
	}

	cmd.Flags().StringP("participant", "p", "", "Participant name (default: whole bill)")

	return cmd
}

func parseAmountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-amount [text]",
		Short: "Parse a typed amount such as \"R$ 1.234,56\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := format.ParseAmount(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", strconv.FormatFloat(v, 'f', -1, 64), format.Currency(v))
			return nil
		},
	}
}

func serviceChargeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service-charge [percent...]",
		Short: "Send service charge edits to a server session",
		Long: `Send one or more service charge edits to a running server. Edits are
debounced like the web client does: only the last value of a burst is saved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadDefaults()
			if err != nil {
				return err
			}
			server, _ := cmd.Flags().GetString("server")
			token, _ := cmd.Flags().GetString("token")
			sessionID, _ := cmd.Flags().GetString("session")
			delay, _ := cmd.Flags().GetDuration("debounce")
			if delay == 0 {
				delay = cfg.Debounce
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sessions := client.NewSessionClient(server, token)
			current, err := sessions.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: sessionID}))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			editor := client.NewServiceChargeEditor(sessions, sessionID, current.Msg.Session.ServiceChargePercent, delay,
				func(r *api.SessionResponse) {
					fmt.Fprintf(out, "Serviço: %s  Total da Conta: %s\n",
						format.Percent(r.Session.ServiceChargePercent), format.Currency(r.Breakdown.TotalBill))
				},
				func(err error) {
					fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("✖ "+err.Error()))
				},
			)

			for _, arg := range args {
				percent, err := format.ParseAmount(arg)
				if err != nil {
					return fmt.Errorf("invalid percent %q: %w", arg, err)
				}
				if err := editor.Set(percent); err != nil {
					return err
				}
			}

			closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return editor.Close(closeCtx)
		},
	}

	cmd.Flags().String("server", "http://localhost:8080", "Server base URL")
	cmd.Flags().String("token", "", "JWT from Login")
	cmd.Flags().String("session", "", "Session ID")
	cmd.Flags().Duration("debounce", 0, "Quiet period between edits (default: DEBOUNCE_MS)")
	cmd.MarkFlagRequired("token")
	cmd.MarkFlagRequired("session")

	return cmd
}
