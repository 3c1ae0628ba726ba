// Package main is the entry point for the caixa admin CLI.
// It manages users and the database schema without going through the API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sinuca-magalhaes/caixa/internal/config"
	"github.com/sinuca-magalhaes/caixa/internal/pkg/crypto"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
	"github.com/sinuca-magalhaes/caixa/internal/repository/driver"
	"github.com/sinuca-magalhaes/caixa/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs.
type app struct {
	configPath string
	stdin      io.Reader
	stdout     io.Writer
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout}

	cmd := &cobra.Command{
		Use:           "caixa-admin",
		Short:         "Administrative commands for the caixa ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (YAML); environment variables override it")

	cmd.AddCommand(a.userCmd())
	cmd.AddCommand(a.migrateCmd())
	cmd.AddCommand(a.versionCmd())
	return cmd
}

func (a *app) logger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()
}

// openDB loads configuration, opens the database and applies migrations.
func (a *app) openDB(ctx context.Context) (*config.Config, *driver.Result, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := driver.Open(ctx, cfg.Database, a.logger())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Database.Migrate(ctx); err != nil {
		db.Database.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return cfg, db, nil
}

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(a.userCreateCmd())
	cmd.AddCommand(a.userListCmd())
	return cmd
}

func (a *app) userCreateCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long:  `Create a user. The password is prompted for when --password is omitted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(a.stdout, "Password: ")
				var err error
				password, err = readPassword(a.stdin)
				fmt.Fprintln(a.stdout)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}

			cfg, db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Database.Close()

			users := service.NewUserService(db.Repos.User, crypto.NewBcryptHasher(cfg.Auth.BcryptCost), nil, a.logger())
			user, err := users.Register(cmd.Context(), service.RegisterInput{Username: username, Password: password})
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "User %s created with ID %d\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) userListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Database.Close()

			users := service.NewUserService(db.Repos.User, nil, nil, a.logger())
			result, err := users.List(cmd.Context(), repository.ListOptions{Offset: offset, Limit: limit})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tCREATED")
			for _, u := range result.Items {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Username, u.CreatedAt.Format(time.RFC3339))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%d of %d users\n", len(result.Items), result.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of users to show (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of users to skip")
	return cmd
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Database.Close()

			fmt.Fprintf(a.stdout, "Database (%s) is up to date\n", cfg.Database.Driver)
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "caixa-admin %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
		},
	}
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Non-terminal input (pipes, tests): first line.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
