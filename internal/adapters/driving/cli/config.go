package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// tokenKey is the setting holding the bearer token.
const tokenKey = "api.token"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage client settings",
	Long: `View and change the settings stored in config.toml.

Without a subcommand every setting is printed.`,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Store the API token",
	Long:  `Prompt for the API bearer token without echoing it and store it in config.toml.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigToken,
}

// passwordPrompt reads a secret; replaced in tests.
var passwordPrompt = readPassword

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configTokenCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	for _, key := range settingsService.Keys() {
		value, ok := settingsService.Value(key)
		cmd.Printf("  %-28s %s\n", key, displayValue(key, value, ok))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if !isKnownKey(args[0]) {
		return fmt.Errorf("unknown setting %q", args[0])
	}

	value, ok := settingsService.Value(args[0])
	cmd.Println(displayValue(args[0], value, ok))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s updated.\n", args[0])
	return nil
}

func runConfigToken(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("API token: ")
	token := strings.TrimSpace(passwordPrompt())
	cmd.Println()
	if token == "" {
		return errors.New("no token entered")
	}

	if err := settingsService.Set(tokenKey, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	cmd.Printf("Token %s stored.\n", maskAPIKey(token))
	return nil
}

func isKnownKey(key string) bool {
	return slices.Contains(settingsService.Keys(), key)
}

// displayValue renders a stored value, masking the token.
func displayValue(key string, value any, ok bool) string {
	if !ok {
		return "(not set)"
	}
	s := fmt.Sprint(value)
	if key == tokenKey {
		return maskAPIKey(s)
	}
	return s
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
