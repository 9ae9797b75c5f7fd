package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/performative/internal/spotify"
	"github.com/ayusman/performative/internal/ui"
)

const loginTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Spotify authentication",
	Long:  `Commands for managing the cached Spotify OAuth credentials.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Spotify",
	Long:  `Opens a browser to authenticate with Spotify using the OAuth PKCE flow.`,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Spotify credentials",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if cfg.Spotify.ClientID == "" {
		return fmt.Errorf("spotify.client_id not configured. Set it in ~/.performativerc or via SPOTIFY_CLIENT_ID")
	}

	pkce, err := spotify.NewPKCE()
	if err != nil {
		return fmt.Errorf("failed to generate PKCE: %w", err)
	}

	oauth := oauthConfig()
	callbackServer, err := spotify.NewCallbackServerFor(oauth.RedirectURI)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	callbackServer.Start()
	defer func() { _ = callbackServer.Shutdown(context.Background()) }()

	authURL := oauth.BuildAuthURL(pkce)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Opening browser for Spotify authentication...")
	if err := ui.NewRunner(0).OpenURL(cmd.Context(), authURL); err != nil {
		fmt.Fprintf(out, "Could not open browser automatically.\n")
		fmt.Fprintf(out, "Please open this URL in your browser:\n\n%s\n\n", authURL)
	}

	fmt.Fprintln(out, "Waiting for authentication...")
	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	result, err := callbackServer.Wait(ctx)
	if err != nil {
		return fmt.Errorf("authentication timed out: %w", err)
	}
	if result.Error != "" {
		return fmt.Errorf("authentication failed: %s", result.Error)
	}
	if result.State != pkce.State {
		return fmt.Errorf("state mismatch: possible CSRF attack")
	}

	token, err := oauth.ExchangeCode(ctx, result.Code, pkce.Verifier)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Tokens().Save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Fprintln(out, "Authenticated with Spotify. Token stored.")
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	exists, err := st.Tokens().Exists()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if !exists {
		fmt.Fprintln(out, "Not authenticated with Spotify.")
		return nil
	}

	if err := st.Tokens().Delete(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	fmt.Fprintln(out, "Logged out of Spotify.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	token, err := st.Tokens().Load()
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	out := cmd.OutOrStdout()
	if token == nil {
		fmt.Fprintln(out, "Not authenticated with Spotify.")
		fmt.Fprintln(out, "Run 'performative auth login' to authenticate.")
		return nil
	}

	fmt.Fprintln(out, "Authenticated with Spotify.")
	if token.IsExpired() {
		fmt.Fprintln(out, "  Access token expired; it will be refreshed on next use.")
	} else {
		fmt.Fprintf(out, "  Expires: %s\n", token.ExpiresAt.Local().Format(time.RFC1123))
	}
	if token.Scope != "" {
		fmt.Fprintf(out, "  Scopes:  %s\n", token.Scope)
	}
	return nil
}
