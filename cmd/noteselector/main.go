package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vocdoni/note-selector/log"
)

const envPrefix = "NOTESELECTOR_"

var rootCmd = &cobra.Command{
	Use:   "noteselector",
	Short: "Privacy preserving note selection for shielded pools",
	Long: `noteselector chooses which private notes of a wallet fund a withdrawal,
trading anonymity set sizes against gas and wallet health.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := cmd.Flags().GetString("loglevel")
		if err != nil {
			return err
		}
		output, err := cmd.Flags().GetString("logoutput")
		if err != nil {
			return err
		}
		log.Init(level, output, nil)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("loglevel", envOr("LOGLEVEL", log.LogLevelInfo), "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("logoutput", envOr("LOGOUTPUT", "stderr"), "log output (stdout, stderr or a file path)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(selectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// envOr returns the NOTESELECTOR_ prefixed environment variable, or def if
// it is unset.
func envOr(name, def string) string {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		return v
	}
	return def
}
