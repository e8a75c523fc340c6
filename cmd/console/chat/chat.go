package chatcmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/console/chat"
	"github.com/papercomputeco/console/cmd/console/sqlitepath"
	"github.com/papercomputeco/console/pkg/config"
	"github.com/papercomputeco/console/pkg/coordinator"
	"github.com/papercomputeco/console/pkg/logger"
	"github.com/papercomputeco/console/pkg/provider/openai"
	"github.com/papercomputeco/console/pkg/transcript"
)

const chatLongDesc string = `Start an interactive chat session in the terminal.

Configuration is read from ~/.console/config.toml (override with
--config), with OPENAI_API_KEY and OPENAI_BASE_URL taking precedence
over the file. If no valid credential is found, the chat opens with a
key entry prompt instead.

Every completed exchange is recorded to the local SQLite transcript
database unless --no-record is set.

Examples:
  console chat
  console chat --model gpt-4o
  console chat --config ./dev.toml --no-record`

const chatShortDesc string = "Start an interactive chat session"

type chatCommander struct {
	configPath string
	sqlitePath string
	model      string
	noRecord   bool
	debug      bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to transcript SQLite database")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model identifier (overrides config)")
	cmd.Flags().BoolVar(&cmder.noRecord, "no-record", false, "Do not record the session transcript")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *chatCommander) run() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("chat requires an interactive terminal")
	}

	configPath := c.configPath
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if c.model != "" {
		cfg.Model = c.model
	}
	if c.debug {
		cfg.Debug = true
	}

	// The TUI owns stdout, so logs go to a file.
	logPath, err := sqlitepath.ResolveLogPath()
	if err != nil {
		return err
	}
	log, err := logger.NewFileLogger(logPath, cfg.Debug)
	if err != nil {
		return fmt.Errorf("could not open log file %s: %w", logPath, err)
	}
	defer log.Sync()

	var store transcript.Store
	if !c.noRecord {
		dbPath, err := sqlitepath.ResolveSQLitePath(firstNonEmpty(c.sqlitePath, cfg.DBPath))
		if err != nil {
			return fmt.Errorf("could not resolve transcript database: %w", err)
		}
		store, err = transcript.NewSQLiteStore(dbPath)
		if err != nil {
			return fmt.Errorf("could not open transcript database %s: %w", dbPath, err)
		}
		defer store.Close()
	}

	factory := func(cfg config.Config) chat.Backend {
		client := openai.NewClient(cfg.BaseURL, cfg.APIKey, openai.WithLogger(log))
		return chat.Backend{
			Prober:      client,
			Coordinator: coordinator.New(client, cfg.Model, log),
		}
	}

	return chat.Run(chat.Params{
		Config:  cfg,
		Factory: factory,
		Store:   store,
		Logger:  log,
	}, configPath)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
