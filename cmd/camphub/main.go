package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/camphub/internal/app"
	"github.com/nhle/camphub/internal/credential"
	"github.com/nhle/camphub/internal/logging"
	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/store"
	"github.com/nhle/camphub/internal/theme"
)

var (
	// Global flags
	verbose    bool
	configPath string
	baseURL    string

	cfg    *model.AppConfig
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "camphub",
	Short: "CampHub notifications in the terminal",
	Long: `camphub keeps an eye on your CampHub notifications.

Run without arguments to open the interactive bell and dropdown. When
stdout is not a terminal the notification list is printed instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = model.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if baseURL != "" {
			cfg.API.BaseURL = baseURL
		}
		theme.Apply(cfg.Display.Theme)

		opts := logging.Options{Level: cfg.Log.Level, Verbose: verbose}
		// The terminal UI owns stderr.
		if interactive(cmd) {
			opts.File = cfg.Log.File
		}
		logger, err = logging.New(opts)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !stdoutIsTerminal() {
			return runList(cmd, args)
		}
		return runTUI(cmd)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive notification bell",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "Config file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend base URL (overrides api.base_url)")

	rootCmd.AddCommand(tuiCmd)
	addNotificationCommands(rootCmd)
	addAuthCommands(rootCmd)
	rootCmd.AddCommand(stubServerCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// interactive reports whether cmd is going to run the Bubble Tea program:
// `tui`, or the root command on a terminal.
func interactive(cmd *cobra.Command) bool {
	if !cmd.HasParent() {
		return stdoutIsTerminal()
	}
	return cmd.Name() == "tui" && !cmd.Parent().HasParent()
}

// env is the local state every command may need.
type env struct {
	store *store.SQLiteStore
	vault *credential.Vault
	token string
}

// openEnv opens the snapshot cache and the credential vault and resolves
// the token. A missing token is not an error here.
func openEnv() (*env, error) {
	st, err := store.NewSQLiteStore(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	e := &env{store: st}
	e.vault, err = credential.Open()
	if err != nil {
		logger.Warn("keyring unavailable", zap.Error(err))
	}

	e.token, err = credential.ResolveToken(e.vault)
	if err != nil && !errors.Is(err, credential.ErrNoToken) {
		logger.Warn("reading token", zap.Error(err))
	}
	return e, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		logger.Warn("closing cache", zap.Error(err))
	}
}

// connect builds a session, failing when no token is configured.
func (e *env) connect() (*app.Session, error) {
	if e.token == "" {
		return nil, errNoToken
	}
	return app.Connect(*cfg, cfg.API.BaseURL, e.token, e.store, logger, nil), nil
}

var errNoToken = fmt.Errorf("no API token: run `camphub login` or set %s", credential.TokenEnv)

func runTUI(cmd *cobra.Command) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	m := app.New(app.Options{
		Config:     *cfg,
		ConfigPath: configPath,
		Token:      e.token,
		Store:      e.store,
		Vault:      e.vault,
		Logger:     logger,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Close()
	} else {
		m.Close()
	}

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
