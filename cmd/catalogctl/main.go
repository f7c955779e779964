package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"media-catalog-go/internal/config"
	"media-catalog-go/internal/db"
	accountdomain "media-catalog-go/internal/domain/account"
	accountrepo "media-catalog-go/internal/repository/postgres/account"
	"media-catalog-go/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Administrative companion for the media catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newInviteCommand())
	cmd.AddCommand(newAccountCommand())

	return cmd
}

func newInviteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Manage registration invites",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "issue",
		Short: "Mint a fresh single-use invite token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(cmd.Context(), func(ctx context.Context, svc *accountdomain.Service) error {
				token, err := svc.IssueInvite(ctx)
				if err != nil {
					return err
				}
				fmt.Println(token)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <token>",
		Short: "Delete an invite that has not been claimed yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(cmd.Context(), func(ctx context.Context, svc *accountdomain.Service) error {
				removed, err := svc.RevokeInvite(ctx, args[0])
				if err != nil {
					return err
				}
				if removed < 1 {
					fmt.Println("nothing revoked (unknown or already claimed)")
					return nil
				}
				fmt.Println("revoked")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List outstanding invite tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(cmd.Context(), func(ctx context.Context, svc *accountdomain.Service) error {
				invites, err := svc.ListInvites(ctx)
				if err != nil {
					return err
				}
				for _, inv := range invites {
					fmt.Printf("%s\t%s\n", inv.ID, inv.DateAdded.Format(time.RFC3339))
				}
				return nil
			})
		},
	})

	return cmd
}

func newAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	var roles []string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Register an account, minting an invite for it on the spot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}

			return withAccounts(cmd.Context(), func(ctx context.Context, svc *accountdomain.Service) error {
				token, err := svc.IssueInvite(ctx)
				if err != nil {
					return err
				}
				username, err := svc.Register(ctx, args[0], password, roles, token)
				if err != nil {
					return err
				}
				fmt.Println("created", username)
				return nil
			})
		},
	}
	add.Flags().StringSliceVar(&roles, "role", nil, "role to grant (repeatable)")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(cmd.Context(), func(ctx context.Context, svc *accountdomain.Service) error {
				accounts, err := svc.List(ctx)
				if err != nil {
					return err
				}
				for _, acct := range accounts {
					fmt.Printf("%s\t%s\n", acct.Username, strings.Join(acct.Roles, ","))
				}
				return nil
			})
		},
	})

	return cmd
}

// withAccounts stands up just enough of the service to run one command
// against the database, then tears it down again.
func withAccounts(ctx context.Context, fn func(context.Context, *accountdomain.Service) error) error {
	log := logger.Discard()

	cfg, err := config.Load(log)
	if err != nil {
		return err
	}

	handles, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return err
	}
	defer handles.Close()

	if err := db.Migrate(handles.Writer); err != nil {
		return err
	}

	arbiter := db.NewArbiter(handles)
	svc := accountdomain.NewService(accountrepo.NewPostgres(arbiter), log)

	return fn(ctx, svc)
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
