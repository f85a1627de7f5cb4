// Package cli wires the pressroom commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pressroom/app/repositories"
	"pressroom/app/sessions"
	"pressroom/config"
	"pressroom/routes"
)

const version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pressroom",
	Short: "Pressroom is a blogging web application",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		log, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := repositories.NewDatabase(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %v", err)
		}
		defer db.Close()

		store, err := sessions.NewStore(cfg.Sessions.Path, cfg.Sessions.TTL.Std())
		if err != nil {
			return fmt.Errorf("failed to open session store: %v", err)
		}
		defer store.Close()

		router := routes.Setup(routes.Deps{
			DB:       db,
			Sessions: store,
			Log:      log,
			MediaDir: cfg.Media.Dir,
		})

		log.Info("starting server", zap.String("addr", cfg.Server.Addr))
		return routes.StartServer(cfg.Server.Addr, router)
	},
}

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		db, err := repositories.NewDatabase(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %v", err)
		}
		defer db.Close()

		fmt.Printf("database ready at %s\n", cfg.Database.Path)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pressroom version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "pressroom.yaml", "config file path")
	rootCmd.AddCommand(serveCmd, initdbCmd, versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
