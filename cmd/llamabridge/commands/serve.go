package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/expki/llamabridge"
	"github.com/expki/llamabridge/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the handle API over HTTP",
	Long: `Serve create, generate and destroy over HTTP:

  POST   /v1/sessions                  {"model_path": "..."}
  POST   /v1/sessions/:handle/generate {"prompt": "..."}
  DELETE /v1/sessions/:handle
  GET    /healthz`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Duration("tombstone-ttl", llamabridge.DefaultTombstoneTTL, "how long destroyed handles are reported as destroyed")

	v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	v.BindPFlag("server.tombstone_ttl", serveCmd.Flags().Lookup("tombstone-ttl"))
}

func runServe(cmd *cobra.Command, args []string) error {
	gin.SetMode(gin.ReleaseMode)

	reg := llamabridge.NewRegistry(
		llamabridge.WithTombstoneTTL(cfg.Server.TombstoneTTL),
		llamabridge.WithSessionOptions(sessionOptions(cfg)...),
	)
	defer func() {
		if err := reg.Close(); err != nil {
			log.WithError(err).Warn("closing sessions")
		}
	}()

	srv := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     server.SetupRouter(reg, log),
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
