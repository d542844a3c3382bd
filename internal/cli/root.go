package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tmwangi/kitabu/internal/api"
	"github.com/tmwangi/kitabu/internal/config"
	"github.com/tmwangi/kitabu/internal/logger"
	"github.com/tmwangi/kitabu/internal/session"
	"github.com/tmwangi/kitabu/internal/tui"
)

var (
	serverURL  string
	logLevel   string
	logFile    string
	logConsole bool
)

var rootCmd = &cobra.Command{
	Use:   "kitabu",
	Short: "Kitabu - terminal learning dashboard",
	Long: `Kitabu is a terminal client for a course catalog: browse and filter
courses, enroll, and manage the catalog as an admin.

Run 'kitabu' without arguments to launch the interactive TUI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			cfg = config.DefaultConfig()
		}

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("server") {
			cfg.ServerURL = serverURL
			configChanged = true
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.Config{
			Level:    logger.ParseLevel(cfg.LogLevel),
			FilePath: cfg.LogFile,
			MaxSize:  10 * 1024 * 1024, // 10MB
			Console:  cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("Kitabu started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		cl, err := newClients()
		if err != nil {
			return err
		}

		logger.Info("Launching TUI")
		m := tui.NewModel(cl.session, cl.courses)
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("Kitabu exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// clients bundles everything a command needs to talk to the backend
type clients struct {
	tokens  *session.FileTokenStore
	auth    *api.AuthAPI
	courses *api.CourseAPI
	session *session.Store
}

// newClients wires the token store, HTTP client, gateways, and session
// store from the saved config
func newClients() (*clients, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	tokenPath, err := session.DefaultTokenPath()
	if err != nil {
		return nil, err
	}
	tokens := session.NewFileTokenStore(tokenPath)

	client := api.NewClient(cfg.ServerURL, tokens)
	auth := api.NewAuthAPI(client)

	return &clients{
		tokens:  tokens,
		auth:    auth,
		courses: api.NewCourseAPI(client),
		session: session.New(auth, tokens),
	}, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend server URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(adminCmd)
}
