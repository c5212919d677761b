package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pickleballplayers/court-harvester/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin HTTP server for harvest and refinement runs",
	Long: `Serves /healthz and the token-protected /api/admin routes that start harvest
and refinement runs and list stored courts.

` + nominatimSpacingNote,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initHarvest(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		handler := server.NewRouter(env.Harvester, env.Refiner, env.Store, server.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AdminToken:     cfg.Server.AdminToken,
		})

		port := resolvePort(servePort, cfg.Server.Port)
		return server.ListenAndServe(ctx, fmt.Sprintf(":%d", port), handler)
	},
}

// resolvePort prefers the flag value over the configured port.
func resolvePort(flagPort, cfgPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return cfgPort
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
