// Package main implements the repetix binary: the HTTP API server for
// AI assisted flashcards and the commands that manage its database schema.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/repetix/repetix-api/internal/config"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configFile string
	envFile    string
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.LoadWithOptions(config.Options{
		ConfigFile: o.configFile,
		EnvFile:    o.envFile,
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the binary without a
// subcommand is the same as "repetix serve".
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	serveCmd := newServeCmd(opts)

	root := &cobra.Command{
		Use:   "repetix",
		Short: "Repetix flashcard API server",
		Long: `Repetix turns study text into flashcards with the help of an LLM.

The server exposes a JSON API for authentication, AI generation of flashcard
candidates and management of the accepted flashcards.

Run without a subcommand to start the server.`,
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	root.Flags().AddFlagSet(serveCmd.Flags())

	root.PersistentFlags().StringVar(&opts.configFile, "config", "",
		"config file (default ./config.yaml when present)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env",
		"dotenv file exported before reading REPETIX_* variables")

	root.AddCommand(serveCmd, newMigrateCmd(opts), newHashPasswordCmd())
	return root
}
