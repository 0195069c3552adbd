package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/placementcell/portal/internal/cli/roleselect"
	"github.com/placementcell/portal/internal/cli/userconfig"
	"github.com/placementcell/portal/internal/models"
	"github.com/placementcell/portal/internal/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd(opts *Options) *cobra.Command {
	var email, password, role string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the placement portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts, email, password, role)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set PORTAL_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set PORTAL_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&role, "role", "", "Role to log in as: student or admin (will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *Options, email, password, roleName string) error {
	out := cmd.OutOrStdout()
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("PORTAL_EMAIL")
	}
	if password == "" {
		password = os.Getenv("PORTAL_PASSWORD")
	}

	remembered, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}

	// Fall back to the account last used against the same backend
	if email == "" {
		if baseURL, err := resolveBaseURL(opts.APIBaseURL); err == nil {
			email = remembered.EmailFor(baseURL)
		}
	}
	if email == "" {
		return fmt.Errorf("email is required (use --email flag or PORTAL_EMAIL env var)")
	}

	var role models.Role
	switch {
	case roleName != "":
		role, err = models.ParseRole(roleName)
		if err != nil {
			return err
		}
	case interactive:
		role, err = roleselect.Prompt(remembered.Role)
		if err != nil {
			return err
		}
	default:
		role = models.RoleStudent
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if !interactive {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or PORTAL_PASSWORD env var)")
		}
		fmt.Fprint(out, "Password: ")
		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Fprintln(out) // New line after password input
	}

	ctx := cmd.Context()
	e, err := connect(ctx, cmd, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Logging in to %s as %s...\n", e.baseURL, role)

	resp, err := e.api.Login(ctx, role, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	// The backend may hand back an account of another role
	if resp.User.Role != role {
		if err := e.api.Logout(ctx); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to clear mismatched session")
		}
		return fmt.Errorf("login failed: %s is not a %s account", email, role)
	}

	if err := userconfig.RememberLogin(e.baseURL, email, string(role)); err != nil {
		// Don't fail if we can't save, just continue
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to save user config: %v\n", err)
	}

	fmt.Fprintln(out, "✓ Login successful!")
	fmt.Fprintf(out, "  User: %s (%s)\n", resp.User.Name, resp.User.Email)
	if resp.User.IsAdmin() {
		fmt.Fprintln(out, "  Role: Admin")
	}

	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}

			if !e.store.Snapshot().IsAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}

			if err := e.api.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(opts *Options) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx, cmd, opts)
			if err != nil {
				return err
			}
			if err := authorize(cmd, e); err != nil {
				return err
			}

			snap := e.store.Snapshot()
			user := snap.User
			if remote {
				user, err = e.api.Me(ctx)
				if err != nil {
					return err
				}
				if user == nil {
					return fmt.Errorf("backend returned no user")
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:    %s (%s)\n", user.Name, user.Email)
			fmt.Fprintf(out, "Role:    %s\n", user.Role)
			fmt.Fprintf(out, "Backend: %s\n", e.baseURL)
			if exp, ok := session.TokenExpiry(snap.Token); ok {
				fmt.Fprintf(out, "Expires: %s\n", exp.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Ask the backend instead of the stored session")

	return cmd
}
