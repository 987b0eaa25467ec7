package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dgatewayd",
		Short: "Dytallix Testnet Gateway Daemon",
	}

	rootCmd.PersistentFlags().String("home", defaultHome(), "gateway home directory")

	InitRootCmd(rootCmd) // add subcommands like `start` and `version`

	return rootCmd
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dgateway"
	}
	return filepath.Join(home, ".dgateway")
}
