package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pageguard/internal/domain"
)

func newAuditCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit log",
	}

	cmd.AddCommand(newAuditListCmd(dbPath))
	cmd.AddCommand(newAuditPruneCmd(dbPath))
	return cmd
}

func newAuditListCmd(dbPath *string) *cobra.Command {
	var (
		principal  string
		action     string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit log entries, newest first",
		Example: `  # Show staff accesses to other users' pages
  pageguard audit list --action STAFF_ACCESS

  # Show everything staff1 did
  pageguard audit list --principal staff1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			filter := domain.AuditFilter{Page: domain.PageRequest{MaxResults: maxResults}}
			if principal != "" {
				filter.Principal = &principal
			}
			if action != "" {
				filter.Action = &action
			}

			entries, total, err := s.audit.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"entries": entries, "total": total})
			}

			tw := newTabWriter(cmd.OutOrStdout())
			fmt.Fprintln(tw, "TIME\tPRINCIPAL\tACTION\tPATH\tSTATUS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format(time.RFC3339), e.Principal, e.Action, e.Path, e.Status,
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "Filter by acting principal")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action (e.g. STAFF_ACCESS)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum number of entries to list")
	return cmd
}

func newAuditPruneCmd(dbPath *string) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete audit entries older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			s.audit.Prune(cmd.Context(), olderThan)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Retention window")
	return cmd
}
