package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timekeep/internal/api"
	"timekeep/internal/config"
	"timekeep/internal/localstore"
	"timekeep/internal/sync"
	"timekeep/internal/utils"
)

// App wires the engine together for every command.
type App struct {
	cfg    config.Client
	engine *sync.Engine
}

var (
	flagConfig  string
	flagVerbose bool
)

func newApp(cmd *cobra.Command) (*App, error) {
	utils.SetVerboseMode(flagVerbose)

	cfg, err := config.LoadClient(flagConfig)
	if err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir, err = localstore.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate data directory: %w", err)
		}
	}

	store, err := localstore.New(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	engine, err := sync.New(sync.Options{
		Store:          store,
		Remote:         api.NewClient(cfg.ServerURL),
		Debounce:       cfg.Debounce(),
		DisableKeyring: cfg.DisableKeyring,
		Notify: func(msg string) {
			fmt.Fprintln(cmd.ErrOrStderr(), "! "+msg)
		},
	})
	if err != nil {
		return nil, err
	}

	engine.Resolve(cmd.Context())
	return &App{cfg: cfg, engine: engine}, nil
}

func main() {
	var app *App

	rootCmd := &cobra.Command{
		Use:   "timekeep",
		Short: "Personal task and pomodoro tracker with offline-first sync",
		Long: `timekeep keeps your tasks and pomodoro history on this machine and,
once you log in, mirrors them to a timekeep server. Guest data stays
local; logging in adopts the account's cloud state.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			app, err = newApp(cmd)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				app.engine.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(
		newAddCmd(&app),
		newListCmd(&app),
		newDoneCmd(&app),
		newUndoneCmd(&app),
		newEditCmd(&app),
		newMoveCmd(&app),
		newRemoveCmd(&app),
		newTimerCmd(&app),
		newStatsCmd(&app),
		newSettingsCmd(&app),
		newExportCmd(&app),
		newImportCmd(&app),
		newLoginCmd(&app),
		newRegisterCmd(&app),
		newLogoutCmd(&app),
		newAccountCmd(&app),
		newSyncCmd(&app),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
