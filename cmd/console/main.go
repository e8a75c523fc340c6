package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/console/cmd/console/chat"
	historycmder "github.com/papercomputeco/console/cmd/console/history"
	servecmder "github.com/papercomputeco/console/cmd/console/serve"
)

const rootLongDesc string = `console is a terminal chat client for OpenAI-compatible APIs.

Running console with no arguments starts a chat session. Completed
exchanges are recorded to a local SQLite database, browsable with
"console history" or served over HTTP with "console serve".`

func main() {
	// Best effort; running without a .env file is normal.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "console",
		Short: "Terminal chat for OpenAI-compatible APIs",
		Long:  rootLongDesc,
	}

	root.AddCommand(chatcmder.NewChatCmd())
	root.AddCommand(historycmder.NewHistoryCmd())
	root.AddCommand(servecmder.NewServeCmd())

	// Bare `console` starts a chat.
	if len(os.Args) == 1 {
		root.SetArgs([]string{"chat"})
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
