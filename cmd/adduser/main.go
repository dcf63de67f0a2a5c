// Command adduser creates a dashboard account from the command line, going
// through the same validation and hashing as the users form.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/dmitrijs2005/dashboard/internal/dbx"
	"github.com/dmitrijs2005/dashboard/internal/logging"
	"github.com/dmitrijs2005/dashboard/internal/server/auth"
	"github.com/dmitrijs2005/dashboard/internal/server/config"
	"github.com/dmitrijs2005/dashboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dashboard/internal/server/services"
	"github.com/dmitrijs2005/dashboard/internal/server/validation"
	"github.com/dmitrijs2005/dashboard/internal/server/viewcache"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := newRootCmd(os.Stdin).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	var (
		name     string
		email    string
		password string
		driver   string
		dsn      string
	)

	cmd := &cobra.Command{
		Use:          "adduser",
		Short:        "Create a dashboard user",
		Long:         "Create a dashboard user. The password is prompted for when --password is omitted.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				var err error
				password, err = readPassword(stdin)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}

			return addUser(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), driver, dsn, validation.Form{
				"name":     name,
				"email":    email,
				"password": password,
			})
		},
	}

	defaults := &config.Config{}
	defaults.LoadDefaults()
	if cfg, err := config.LoadConfig(nil); err == nil {
		defaults = cfg
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "sign-in email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted for when omitted)")
	cmd.Flags().StringVar(&driver, "driver", defaults.DatabaseDriver, "database driver (postgres or sqlite)")
	cmd.Flags().StringVar(&dsn, "dsn", defaults.DatabaseDSN, "database DSN")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func addUser(ctx context.Context, stdout, stderr io.Writer, driver, dsn string, form validation.Form) error {
	dialect, err := dbx.ParseDialect(driver)
	if err != nil {
		return err
	}

	db, err := dbx.Open(ctx, dialect, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewSQLRepositoryManager(dialect)
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger := logging.New(stderr, logging.FormatText, slog.LevelWarn)
	us := services.NewUserService(db, rm, auth.NewBcryptHasher(), viewcache.New(1), logger)

	res, err := us.CreateUser(ctx, services.State{}, form)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case services.OutcomeRedirect:
		fmt.Fprintf(stdout, "User %s created\n", form.Get("email"))
		return nil
	case services.OutcomeValidationFailed:
		return errors.New(describe(res.State))
	default:
		return errors.New(res.State.Message)
	}
}

// describe flattens a failed state into one line, fields in name order.
func describe(s services.State) string {
	fields := make([]string, 0, len(s.Errors))
	for f := range s.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := []string{s.Message}
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(s.Errors[f], " ")))
	}
	return strings.Join(parts, " ")
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
