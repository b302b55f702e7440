package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lingomeet/lingomeet/credentials"
)

// NewAuthCommand builds the auth command group for managing API secrets.
func NewAuthCommand(deps *CommandDeps) *cobra.Command {
	deps.defaults()

	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage API credentials",
		Long: `Manage API credentials for the summary backend.

The OpenAI API key is stored in the system keyring (macOS Keychain, Windows
Credential Manager, Linux Secret Service). For CI environments set
LINGOMEET_OPENAI_API_KEY instead.`,
	}

	var keyFlag string
	setKeyCmd := &cobra.Command{
		Use:   "set-key",
		Short: "Store the OpenAI API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := keyFlag
			if key == "" {
				var err error
				key, err = promptSecret(deps, "OpenAI API key: ")
				if err != nil {
					return err
				}
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return fmt.Errorf("no API key provided")
			}
			if err := deps.Secrets.Set(credentials.SecretOpenAIKey, key); err != nil {
				return err
			}
			fmt.Fprintln(deps.Out, "API key stored.")
			return nil
		},
	}
	setKeyCmd.Flags().StringVar(&keyFlag, "key", "", "API key (prompts when omitted)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := deps.Secrets.Get(credentials.SecretOpenAIKey)
			if errors.Is(err, credentials.ErrNotStored) {
				fmt.Fprintln(deps.Out, "No API key stored.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.Out, "API key stored (%s).\n", maskKey(key))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := deps.Secrets.Delete(credentials.SecretOpenAIKey); err != nil {
				return err
			}
			fmt.Fprintln(deps.Out, "API key removed.")
			return nil
		},
	}

	authCmd.AddCommand(setKeyCmd, statusCmd, clearCmd)
	return authCmd
}

// promptSecret reads a secret without echo when attached to a terminal, and
// falls back to a plain line read otherwise (pipes, tests).
func promptSecret(deps *CommandDeps, prompt string) (string, error) {
	fmt.Fprint(deps.Out, prompt)
	if f, ok := deps.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(deps.Out)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return string(raw), nil
	}

	reader := bufio.NewReader(deps.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// maskKey shows only enough of a key to recognize it.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
