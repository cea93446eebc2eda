package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newTokenCmd() *cobra.Command {
	var (
		secret  string
		expires time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Generate a dev-mode JWT for a user",
		Long: "Generate an HS256 JWT accepted by a server running with the same JWT_SECRET. " +
			"The secret is read from --secret, the JWT_SECRET environment variable, or an " +
			"interactive prompt, in that order.",
		Example: `  # Mint a 24h token for alice
  pageguard token alice --secret dev-secret

  # Use the server's environment and a custom expiry
  JWT_SECRET=dev-secret pageguard token staff1 --expires 48h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveSecret(secret)
			if err != nil {
				return err
			}

			now := time.Now()
			claims := jwt.MapClaims{
				"sub": args[0],
				"iat": now.Unix(),
				"exp": now.Add(expires).Unix(),
			}

			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			signed, err := token.SignedString([]byte(key))
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HS256 signing secret (falls back to JWT_SECRET, then a prompt)")
	cmd.Flags().DurationVar(&expires, "expires", 24*time.Hour, "Token expiry duration")
	return cmd
}

// resolveSecret returns the signing secret from the flag, the environment, or
// a no-echo terminal prompt.
func resolveSecret(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return v, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no signing secret: pass --secret or set JWT_SECRET")
	}
	fmt.Fprint(os.Stderr, "Signing secret: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", fmt.Errorf("empty signing secret")
	}
	return key, nil
}
