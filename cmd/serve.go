package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hitensaxena/pathfinder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, log, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer a.Close()

		cfg := a.Config
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		auth, err := server.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			return fmt.Errorf("auth: %w (set auth.jwt_secret or PATHFINDER_AUTH_JWT_SECRET)", err)
		}

		srv := server.New(a, auth, log, cfg.Server.Mode)
		return srv.Run(cmd.Context(), cfg.Server.Addr, cfg.Server.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
