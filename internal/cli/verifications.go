package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/adminboard/internal/adminapi"
	"github.com/rshade/adminboard/internal/config"
	"github.com/rshade/adminboard/internal/engine"
	"github.com/rshade/adminboard/internal/logging"
)

// ErrNotConfirmed is returned when a decision was not confirmed.
var ErrNotConfirmed = errors.New("decision not confirmed")

const (
	tabwriterMinWidth = 0
	tabwriterTabWidth = 8
	tabwriterPadding  = 2
	submittedLayout   = "2006-01-02 15:04"
)

// NewVerificationsListCmd creates "verifications list".
func NewVerificationsListCmd() *cobra.Command {
	var (
		status string
		limit  int
		sort   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supplier verification requests",
		Example: `  adminboard verifications list
  adminboard verifications list --status all --limit 50 --sort -submittedAt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := adminapi.ParseVerificationStatus(status)
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative, got %d", limit)
			}
			format, err := resolveOutput(output)
			if err != nil {
				return err
			}

			return withSession(cmd, func(ctx context.Context, sess *session) error {
				items, err := sess.source.ListVerifications(ctx, adminapi.ListOptions{Status: st, Limit: limit, Sort: sort})
				if err != nil {
					return err
				}
				logging.FromContext(ctx).Debug().Ctx(ctx).Int("count", len(items)).Msg("verifications listed")
				if format == config.FormatJSON {
					return engine.RenderJSON(cmd.OutOrStdout(), items)
				}
				return renderVerifications(cmd.OutOrStdout(), items)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", string(adminapi.VerificationPending),
		"filter by status (pending, approved, rejected, all)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 = server default)")
	cmd.Flags().StringVar(&sort, "sort", "", "sort field, prefix with - for descending")
	cmd.Flags().StringVar(&output, "output", "", "output format (table, json); default from config")

	return cmd
}

func renderVerifications(w io.Writer, items []adminapi.Verification) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No verification requests found.")
		return err
	}

	tw := tabwriter.NewWriter(w, tabwriterMinWidth, tabwriterTabWidth, tabwriterPadding, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCOMPANY\tEMAIL\tDOCUMENT\tSTATUS\tSUBMITTED")
	for _, v := range items {
		submitted := ""
		if !v.SubmittedAt.IsZero() {
			submitted = v.SubmittedAt.Local().Format(submittedLayout)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.CompanyName, v.Email, v.DocumentType, v.Status, submitted)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d request(s)\n", len(items))
	return err
}

// NewVerificationsApproveCmd creates "verifications approve".
func NewVerificationsApproveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a supplier verification request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return decide(cmd, decision{
				command:  "verifications approve",
				id:       id,
				question: fmt.Sprintf("Approve verification %s?", id),
				yes:      yes,
				apply: func(ctx context.Context, src dashboardSource) (adminapi.Verification, error) {
					return src.ApproveVerification(ctx, id)
				},
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// NewVerificationsRejectCmd creates "verifications reject".
func NewVerificationsRejectCmd() *cobra.Command {
	var (
		yes    bool
		reason string
	)

	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a supplier verification request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return decide(cmd, decision{
				command:  "verifications reject",
				id:       id,
				question: fmt.Sprintf("Reject verification %s?", id),
				yes:      yes,
				params:   map[string]string{"reason": reason},
				apply: func(ctx context.Context, src dashboardSource) (adminapi.Verification, error) {
					return src.RejectVerification(ctx, id, reason)
				},
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&reason, "reason", "", "reason shown to the supplier (required)")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

// decision is one approve or reject action.
type decision struct {
	command  string
	id       string
	question string
	yes      bool
	params   map[string]string
	apply    func(context.Context, dashboardSource) (adminapi.Verification, error)
}

// decide confirms, applies and audits a decision, then refreshes the
// summary so the pending count is current.
func decide(cmd *cobra.Command, d decision) error {
	if !d.yes {
		res := Confirm(cmd.ErrOrStderr(), cmd.InOrStdin(), d.question)
		switch {
		case res.NonInteractive:
			return fmt.Errorf("%w: no terminal to confirm, rerun with --yes", ErrNotConfirmed)
		case !res.Accepted:
			return ErrNotConfirmed
		}
	}

	return withSession(cmd, func(ctx context.Context, sess *session) error {
		params := map[string]string{"id": d.id}
		for k, v := range d.params {
			params[k] = v
		}
		audit := newAuditContext(ctx, d.command, params)
		log := logging.FromContext(ctx)

		v, err := d.apply(ctx, sess.source)
		if err != nil {
			log.Error().Ctx(ctx).Err(err).Str("id", d.id).Msg("verification decision failed")
			audit.logFailure(ctx, err)
			return err
		}
		audit.logSuccess(ctx)

		status := v.Status
		if status == "" {
			status = "updated"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Verification %s %s\n", d.id, status)

		summary, err := sess.orch.FetchSummary(ctx, true)
		if err != nil {
			// the decision itself succeeded
			log.Warn().Ctx(ctx).Err(err).Msg("could not refresh summary after decision")
			return nil
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Pending verifications: %d\n", summary.PendingVerifications)
		return nil
	})
}
