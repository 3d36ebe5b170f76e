package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"timekeep/internal/config"
	"timekeep/internal/server"
	"timekeep/internal/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "timekeep-server",
		Short: "HTTP backend for timekeep",
		Long: `timekeep-server stores user accounts and their task documents. Clients
authenticate with a bearer token and read or replace their document as
a whole; the server never interprets its contents.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			utils.SetVerboseMode(verbose)
			return run(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to server config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func run(configPath string) error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return err
	}

	if cfg.LogFile != "" {
		utils.SetLogOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	secret := os.Getenv("TIMEKEEP_JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("TIMEKEEP_JWT_SECRET is not set")
	}

	store, err := server.OpenStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	srv, err := server.NewServer(store, []byte(secret))
	if err != nil {
		return err
	}

	utils.Infof("listening on %s (db: %s)", cfg.Addr, cfg.DBPath)
	return http.ListenAndServe(cfg.Addr, srv.Handler())
}
