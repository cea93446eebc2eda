// Package cli implements the pageguard admin command-line interface. It
// operates directly on the SQLite user store, so it works without a running
// server.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	internaldb "pageguard/internal/db"
	"pageguard/internal/repository"
	"pageguard/internal/service"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, map[string]interface{}{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		dbPath string
		output string
	)

	rootCmd := &cobra.Command{
		Use:           "pageguard",
		Short:         "User directory and access-control admin CLI",
		Long:          "Manage users, staff flags, audit logs, and dev tokens for the pageguard server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flag > env > default
			if !cmd.Flags().Changed("db") {
				if v := os.Getenv("DB_PATH"); v != "" {
					dbPath = v
				}
			}
			if output != "" && output != "table" && output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "pageguard.sqlite", "Path to the SQLite store")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newUserCmd(&dbPath))
	rootCmd.AddCommand(newAuditCmd(&dbPath))
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newCommandsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// store bundles the services a subcommand works with plus the handle to close.
type store struct {
	db    *sql.DB
	users *service.UserService
	audit *service.AuditService
}

func (s *store) Close() { _ = s.db.Close() }

// openStore opens the SQLite store at path and runs any pending migrations.
func openStore(path string) (*store, error) {
	db, err := internaldb.OpenSQLite(path, "write", 0)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	if err := internaldb.RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditLogRepo(db)
	return &store{
		db:    db,
		users: service.NewUserService(userRepo, auditRepo),
		audit: service.NewAuditService(auditRepo),
	}, nil
}

// cliActor is the principal recorded in the audit log for CLI mutations.
func cliActor() string {
	if u := os.Getenv("USER"); u != "" {
		return "cli:" + u
	}
	return "cli"
}
