package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pageguard/internal/domain"
)

func newUserCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users in the directory",
	}

	cmd.AddCommand(newUserCreateCmd(dbPath))
	cmd.AddCommand(newUserListCmd(dbPath))
	cmd.AddCommand(newUserDeleteCmd(dbPath))
	cmd.AddCommand(newUserSetStaffCmd(dbPath))
	cmd.AddCommand(newUserSetSuperuserCmd(dbPath))
	return cmd
}

func newUserCreateCmd(dbPath *string) *cobra.Command {
	var (
		email     string
		staff     bool
		superuser bool
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Register a new user",
		Example: `  # Register a regular user
  pageguard user create alice --email alice@example.com

  # Register a staff member
  pageguard user create staff1 --staff`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			created, err := s.users.Create(cmd.Context(), cliActor(), &domain.User{
				Username:  args[0],
				Email:     email,
				Staff:     staff,
				Superuser: superuser,
			})
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s\n", created.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().BoolVar(&staff, "staff", false, "Grant the staff flag")
	cmd.Flags().BoolVar(&superuser, "superuser", false, "Grant the superuser flag (implies staff)")
	return cmd
}

func newUserListCmd(dbPath *string) *cobra.Command {
	var maxResults int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			users, total, err := s.users.List(cmd.Context(), domain.PageRequest{MaxResults: maxResults})
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"users": users, "total": total})
			}

			tw := newTabWriter(cmd.OutOrStdout())
			fmt.Fprintln(tw, "USERNAME\tEMAIL\tSTAFF\tSUPERUSER\tCREATED")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					u.Username, u.Email,
					strconv.FormatBool(u.Staff), strconv.FormatBool(u.Superuser),
					u.CreatedAt.Format("2006-01-02 15:04:05"),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum number of users to list")
	return cmd
}

func newUserDeleteCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <username>",
		Short: "Remove a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.users.Delete(cmd.Context(), cliActor(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func newUserSetStaffCmd(dbPath *string) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "set-staff <username>",
		Short: "Grant or revoke the staff flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.users.SetStaff(cmd.Context(), cliActor(), args[0], !revoke); err != nil {
				return err
			}
			if revoke {
				fmt.Fprintf(cmd.OutOrStdout(), "Revoked staff from %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Granted staff to %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "Revoke instead of grant")
	return cmd
}

func newUserSetSuperuserCmd(dbPath *string) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "set-superuser <username>",
		Short: "Grant or revoke the superuser flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.users.SetSuperuser(cmd.Context(), cliActor(), args[0], !revoke); err != nil {
				return err
			}
			if revoke {
				fmt.Fprintf(cmd.OutOrStdout(), "Revoked superuser from %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Granted superuser to %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "Revoke instead of grant")
	return cmd
}
