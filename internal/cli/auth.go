package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"focussync/internal/service"
	"focussync/internal/timetracking"
)

type credentialFlags struct {
	email    string
	password string
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

func newRegisterCommand(opts *globalOptions) *cobra.Command {
	flags := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the time tracking server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate(cmd, opts, func(ctx context.Context, client *timetracking.HTTPClient) (*service.AuthResult, error) {
				return client.Register(ctx, flags.email, flags.password)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newLoginCommand(opts *globalOptions) *cobra.Command {
	flags := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the time tracking server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate(cmd, opts, func(ctx context.Context, client *timetracking.HTTPClient) (*service.AuthResult, error) {
				return client.Login(ctx, flags.email, flags.password)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newLogoutCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored login token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := cfg.ClearCredentials(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show which account the timers belong to",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Offline {
				fmt.Fprintf(out, "Offline as %s (%s)\n", cfg.LocalUserID, cfg.LocalDBPath)
				return nil
			}
			if cfg.Token == "" {
				return errNotLoggedIn
			}

			user, err := timetracking.NewHTTPClient(cfg.ServerURL, cfg.Token, nil).Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s on %s\n", user.Email, cfg.ServerURL)
			return nil
		},
	}
}

func authenticate(
	cmd *cobra.Command,
	opts *globalOptions,
	call func(ctx context.Context, client *timetracking.HTTPClient) (*service.AuthResult, error),
) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Offline {
		return errors.New("accounts live on the server; offline mode needs no login")
	}

	result, err := call(cmd.Context(), timetracking.NewHTTPClient(cfg.ServerURL, "", nil))
	if err != nil {
		return err
	}
	if err := cfg.SaveCredentials(result.User.Email, result.Token); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", result.User.Email)
	return nil
}
