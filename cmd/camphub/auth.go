package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nhle/camphub/internal/app"
	"github.com/nhle/camphub/internal/credential"
	"github.com/nhle/camphub/internal/model"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Validate an API token and store it in the keyring",
	Long: `Checks the token against the backend at --base-url (or api.base_url),
then stores it in the system keyring and saves the base URL to the
config file. Without --token the token is prompted for, or read from
stdin when stdin is not a terminal.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token and the cached notifications",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func addAuthCommands(root *cobra.Command) {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "API token (prompted when empty)")

	root.AddCommand(loginCmd)
	root.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if e.vault == nil {
		return fmt.Errorf("no keyring available; set %s instead", credential.TokenEnv)
	}

	token := strings.TrimSpace(loginToken)
	if token == "" {
		token, err = promptToken()
		if err != nil {
			return err
		}
	}
	if token == "" {
		return errors.New("token is required")
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()

	label, err := app.Validate(ctx, *cfg, cfg.API.BaseURL, token, nil)
	if err != nil {
		return explain(err)
	}
	if err := e.vault.SetToken(token); err != nil {
		return err
	}
	if err := model.SaveConfig(configPath, cfg); err != nil {
		return err
	}

	if label == "" {
		label = "token saved"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in to %s: %s\n", cfg.API.BaseURL, label)
	return nil
}

// promptToken asks for the token on a terminal, or reads the first line
// of stdin otherwise.
func promptToken() (string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading token from stdin: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	var token string
	err := huh.NewInput().
		Title("API token").
		Description("Paste the bearer token from your CampHub session").
		EchoMode(huh.EchoModePassword).
		Value(&token).
		Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if e.vault != nil {
		if err := e.vault.ClearToken(); err != nil {
			return err
		}
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()
	if err := e.store.ReplaceNotifications(ctx, nil, time.Time{}); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}
