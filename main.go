// Package main provides the lingomeet CLI entry point.
// lingomeet records, translates, and summarizes multilingual meetings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/lingomeet/lingomeet/cmd"
	"github.com/lingomeet/lingomeet/config"
	"github.com/lingomeet/lingomeet/credentials"
	"github.com/lingomeet/lingomeet/pkg/buildinfo"
	"github.com/lingomeet/lingomeet/pkg/logging"
	"github.com/lingomeet/lingomeet/pkg/meeting"
	"github.com/lingomeet/lingomeet/pkg/realtime"
	"github.com/lingomeet/lingomeet/pkg/storage"
)

// Global flags and state.
var (
	outputFormat string
	sourceLang   string
	targetLang   string
	debug        bool

	// cfg holds the loaded configuration.
	cfg *config.CLIConfig

	// deps carries the wired collaborators into the commands.
	deps = &cmd.CommandDeps{}

	// closers release the database pool and redis client on exit.
	closers []func()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lingomeet",
	Short: "Meeting recorder with live translation and summaries",
	Long: `lingomeet records meetings, timestamps every transcript line, translates
them to a target language, and produces a summary of the discussion.

COMMON WORKFLOWS:
  Record a meeting:   lingomeet record --title "Standup"
  Review a meeting:   lingomeet meeting list  →  lingomeet meeting show <id>
  Share a meeting:    lingomeet room create  →  lingomeet room join ABC-234
  Better summaries:   lingomeet auth set-key  →  lingomeet config set summarizer openai

Meetings are kept in memory unless a database section is configured; shared
rooms need a redis section. See 'lingomeet config show'.`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		// Skip initialization for commands that don't need it.
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		// Override with command-line flags.
		if outputFormat != "" {
			cfg.OutputFormat = config.OutputFormat(outputFormat)
		}
		if debug {
			cfg.Debug = true
		}
		if sourceLang != "" {
			cfg.SourceLanguage = meetingLanguage(sourceLang)
		}
		if targetLang != "" {
			cfg.TargetLanguage = meetingLanguage(targetLang)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		return initDeps(c.Context(), cfg)
	},
}

// initDeps wires the command dependencies from the configuration: logger,
// credential store, repository, and (when configured) the realtime backend.
func initDeps(ctx context.Context, cfg *config.CLIConfig) error {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	log := logging.NewLogger(&logging.Config{
		Level:       level,
		ServiceName: "lingomeet",
		Output:      os.Stderr,
	})

	deps.Config = cfg
	deps.Logger = log
	deps.Secrets = credentials.NewStore()
	deps.Registry = prometheus.DefaultRegisterer

	// Durable storage when configured, in-memory otherwise.
	if cfg.Database.IsConfigured() {
		pgCfg := storage.DefaultPostgresConfig()
		pgCfg.Host = cfg.Database.Host
		if cfg.Database.Port != 0 {
			pgCfg.Port = cfg.Database.Port
		}
		pgCfg.Database = cfg.Database.Database
		pgCfg.User = cfg.Database.User
		if cfg.Database.SSLMode != "" {
			pgCfg.SSLMode = cfg.Database.SSLMode
		}
		pgCfg.Password = os.Getenv("LINGOMEET_DB_PASSWORD")

		connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		pool, err := storage.Connect(connectCtx, pgCfg)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		closers = append(closers, pool.Close)

		repo := storage.NewPostgresRepository(pool, log)
		if err := repo.EnsureSchema(connectCtx); err != nil {
			return err
		}
		deps.Repo = repo
	} else {
		deps.Repo = storage.NewMemoryRepository()
	}

	// Realtime rooms when configured.
	if cfg.Redis.IsConfigured() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = client.Close() })

		store := realtime.NewRedisRoomStore(client, log)
		deps.Coordinator = realtime.NewCoordinator(store, deps.Repo, realtime.CoordinatorOptions{
			Logger: log,
		})
	}

	return nil
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(c *cobra.Command, args []string) error {
		info := buildinfo.Get()
		out := c.OutOrStdout()
		fmt.Fprintf(out, "lingomeet version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:  %s\n", info.Commit)
		fmt.Fprintf(out, "  built:   %s\n", info.BuildTime)
		fmt.Fprintf(out, "  go:      %s\n", info.GoVersion)
		return nil
	},
}

// configCmd manages CLI configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `View and modify the lingomeet CLI configuration settings.`,
}

// configShowCmd displays current configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(c *cobra.Command, args []string) error {
		configPath, _ := config.ConfigPath()

		fmt.Println("Current configuration:")
		fmt.Printf("  Config file:     %s\n", configPath)
		fmt.Printf("  Source language: %s (%s)\n", cfg.SourceLanguage, cfg.SourceLanguage.Label(meeting.LanguageEnglish))
		fmt.Printf("  Target language: %s (%s)\n", cfg.TargetLanguage, cfg.TargetLanguage.Label(meeting.LanguageEnglish))
		fmt.Printf("  Display name:    %s\n", valueOrDefault(cfg.DisplayName, "(not set)"))
		fmt.Printf("  Output format:   %s\n", cfg.OutputFormat)
		fmt.Printf("  Timeout:         %s\n", cfg.Timeout)
		fmt.Printf("  Summarizer:      %s\n", valueOrDefault(cfg.Summarizer, config.SummarizerLocal))
		fmt.Printf("  Debug:           %t\n", cfg.Debug)
		if cfg.Redis.IsConfigured() {
			fmt.Printf("  Redis:           %s\n", cfg.Redis.Addr)
		} else {
			fmt.Printf("  Redis:           (not configured, shared rooms disabled)\n")
		}
		if cfg.Database.IsConfigured() {
			fmt.Printf("  Database:        %s@%s/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Database)
		} else {
			fmt.Printf("  Database:        (not configured, meetings kept in memory)\n")
		}
		return nil
	},
}

// configInitCmd initializes configuration.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with default values if one doesn't exist.`,
	RunE: func(c *cobra.Command, args []string) error {
		configPath, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("getting config path: %w", err)
		}

		if _, err := os.Stat(configPath); err == nil {
			fmt.Printf("Configuration file already exists: %s\n", configPath)
			fmt.Println("Use 'lingomeet config show' to view current settings.")
			return nil
		}

		defaultCfg := config.DefaultConfig()
		if err := config.SaveConfig(defaultCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Printf("Created configuration file: %s\n", configPath)
		fmt.Println("\nDefault settings:")
		fmt.Printf("  Source language: %s\n", defaultCfg.SourceLanguage)
		fmt.Printf("  Target language: %s\n", defaultCfg.TargetLanguage)
		fmt.Printf("  Output format:   %s\n", defaultCfg.OutputFormat)
		return nil
	},
}

// configSetCmd sets a configuration value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Available keys:
  source_language  - Language spoken in meetings (ko, en, ja, zh)
  target_language  - Translation target language (ko, en, ja, zh)
  display_name     - Name shown to other participants
  output_format    - Default output format (text, json, yaml)
  timeout          - Remote call timeout (e.g., 30s, 1m)
  summarizer       - Summary backend (local, openai)
  openai_model     - Model for the openai summarizer
  mymemory_email   - Contact email for the translation service quota
  debug            - Enable debug mode (true/false)

Examples:
  lingomeet config set target_language ja
  lingomeet config set summarizer openai
  lingomeet config set timeout 1m`,
	Args: cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		currentCfg, err := config.LoadConfig()
		if err != nil {
			currentCfg = config.DefaultConfig()
		}

		switch key {
		case "source_language":
			currentCfg.SourceLanguage = meetingLanguage(value)
		case "target_language":
			currentCfg.TargetLanguage = meetingLanguage(value)
		case "display_name":
			currentCfg.DisplayName = value
		case "output_format":
			currentCfg.OutputFormat = config.OutputFormat(value)
		case "timeout":
			duration, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid timeout value: %w", err)
			}
			currentCfg.Timeout = duration
		case "summarizer":
			currentCfg.Summarizer = value
		case "openai_model":
			currentCfg.OpenAIModel = value
		case "mymemory_email":
			currentCfg.MyMemoryEmail = value
		case "debug":
			switch value {
			case "true", "1":
				currentCfg.Debug = true
			case "false", "0":
				currentCfg.Debug = false
			default:
				return fmt.Errorf("invalid debug value: %s (must be true or false)", value)
			}
		default:
			return fmt.Errorf("unknown configuration key: %s", key)
		}

		// SaveConfig validates, so a bad language or format fails here.
		if err := config.SaveConfig(currentCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

// meetingLanguage lower-cases user input; validation happens when the config
// is checked or saved.
func meetingLanguage(s string) meeting.Language {
	return meeting.Language(strings.ToLower(strings.TrimSpace(s)))
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func init() {
	// Global flags.
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "", "output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&sourceLang, "source-language", "", "default spoken language (ko, en, ja, zh)")
	rootCmd.PersistentFlags().StringVar(&targetLang, "target-language", "", "default translation target")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(cmd.NewRecordCommand(deps))
	rootCmd.AddCommand(cmd.NewMeetingCommand(deps))
	rootCmd.AddCommand(cmd.NewRoomCommand(deps))
	rootCmd.AddCommand(cmd.NewAuthCommand(deps))

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Ctrl-C cancels the command context; record and join react by saving
	// state and leaving cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	for _, closeFn := range closers {
		closeFn()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
