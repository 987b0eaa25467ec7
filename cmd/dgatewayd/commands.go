package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dytallix/testnet-gateway/api"
	"github.com/dytallix/testnet-gateway/config"
	"github.com/dytallix/testnet-gateway/db"
	"github.com/dytallix/testnet-gateway/gateway"
	"github.com/dytallix/testnet-gateway/logger"
	"github.com/dytallix/testnet-gateway/node"
	"github.com/dytallix/testnet-gateway/store"
	"github.com/dytallix/testnet-gateway/subscriber"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const dataSubdir = "data"

func InitRootCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the testnet gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := cmd.Flags().GetString("home")
			if err != nil {
				return err
			}

			cfg, err := config.Load(home)
			if err != nil {
				return err
			}

			log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)
			log.Info().Str("version", Version).Str("home", home).Msg("starting testnet gateway")

			database, err := db.OpenFileDB(fmt.Sprintf("%s/%s", home, dataSubdir), cfg.DBFileName, true)
			if err != nil {
				return err
			}
			defer database.Close()

			chainStore := store.NewChainStore(database.Client())

			nodeClient := node.New(
				cfg.NodeRPCURL,
				time.Duration(cfg.BroadcastTimeoutSeconds)*time.Second,
				log,
			)

			gw := gateway.New(
				gateway.Config{
					VerifyEnvelopes: cfg.VerifyEnvelopes,
					SignatureAlgo:   cfg.SignatureAlgo,
				},
				nodeClient,
				chainStore,
				log,
			)

			sub, err := subscriber.New(
				subscriber.Config{
					WSURL:          cfg.NodeWSURL,
					ReconnectDelay: time.Duration(cfg.ReconnectDelaySeconds) * time.Second,
				},
				chainStore,
				log,
			)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if err := sub.Start(ctx); err != nil {
				return err
			}

			server := api.NewServer(log, cfg.APIPort, gw, chainStore, database, nodeClient)
			if err := server.Start(); err != nil {
				_ = sub.Stop()
				return err
			}

			// Run until interrupted, then shut down cleanly: close the
			// event-stream connection, drain the HTTP server, close the DB.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Info().Str("signal", sig.String()).Msg("shutting down")

			if err := sub.Stop(); err != nil {
				log.Error().Err(err).Msg("failed to stop subscriber")
			}
			if err := server.Stop(); err != nil {
				log.Error().Err(err).Msg("failed to stop api server")
			}
			return nil
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file to the gateway home",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := cmd.Flags().GetString("home")
			if err != nil {
				return err
			}
			if err := config.Save(config.DefaultConfig(), home); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote default config under %s\n", home)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print dgatewayd version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Name:    dgatewayd\n")
			fmt.Printf("Version: %s\n", Version)
		},
	}
}
