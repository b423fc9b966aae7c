package main

import (
	"fmt"
	"os"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	config      Config
	backendAddr string
)

var rootCmd = &cobra.Command{
	Use:   "groupchat",
	Short: "Real-time group chat",
	Long: `Chat with the members of a group, live.

Sign in once with 'groupchat login', the session is kept between runs
and refreshed before it expires. Then run 'groupchat chat'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		if _, err := env.UnmarshalFromEnviron(&config); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if backendAddr != "" {
			config.BackendAddr = backendAddr
		}
		var err error
		config, err = config.withDefaults()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendAddr, "addr", "", "Backend address (or set GROUPCHAT_ADDR)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
