package servecmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/console/api"
	"github.com/papercomputeco/console/cmd/console/sqlitepath"
	"github.com/papercomputeco/console/pkg/logger"
	"github.com/papercomputeco/console/pkg/transcript"
)

const serveLongDesc string = `Serve the local transcript database over HTTP.

Exposes a read-only JSON API for browsing recorded sessions:
  GET /health
  GET /stats
  GET /sessions
  GET /sessions/:id

Examples:
  console serve
  console serve --listen :8080 --sqlite ./transcripts.db`

const serveShortDesc string = "Serve recorded transcripts over HTTP"

type serveCommander struct {
	listenAddr string
	sqlitePath string
	debug      bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listenAddr, "listen", "l", ":6061", "Address to listen on")
	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to transcript SQLite database")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *serveCommander) run() error {
	log := logger.NewLogger(c.debug)
	defer log.Sync()

	dbPath, err := sqlitepath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return fmt.Errorf("could not resolve transcript database: %w", err)
	}

	store, err := transcript.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("could not open transcript database %s: %w", dbPath, err)
	}
	defer store.Close()

	log.Info("serving transcripts",
		zap.String("listen", c.listenAddr),
		zap.String("db", dbPath),
	)

	srv := api.NewServer(api.Config{ListenAddr: c.listenAddr}, store, log)
	return srv.Run()
}
