package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/chemquest/internal/api"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve levels, profiles and the mistake book over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		addr := e.cfg.API.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}
		if debug, _ := cmd.Flags().GetBool("debug"); !debug {
			gin.SetMode(gin.ReleaseMode)
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: api.NewRouter(api.NewHandler(e.game, e.cfg.UserID, e.logger)),
		}

		errc := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()
		e.logger.Info("api listening", "addr", addr, "remote_content", e.game.Remote(), "tutor", e.game.CanExplain())
		fmt.Printf("Listening on %s (Ctrl+C to stop)\n", addr)

		select {
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return nil
		case <-cmd.Context().Done():
		}

		e.logger.Info("shutting down api")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, then :8080)")
	serveCmd.Flags().Bool("debug", false, "Run gin in debug mode")
}
