package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/hr-task-review-api/internal/constants"
	"github.com/yukikurage/hr-task-review-api/internal/handlers"
	"github.com/yukikurage/hr-task-review-api/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(*configPath, true)
			if err != nil {
				return err
			}
			return rt.serve(cmd.Context())
		},
	}
}

func (rt *runtime) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(rt.cfg.GinMode)

	bus := rt.newBus()
	busCtx, stopBus := context.WithCancel(context.Background())
	bus.Start(busCtx, rt.cfg.EventWorkers)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(rt.log.WithField("component", "http")))

	// Setup session middleware with Redis
	redisAddr := rt.cfg.RedisHost + ":" + rt.cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(rt.cfg.SessionSecret),
	)
	if err != nil {
		stopBus()
		return err
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   rt.cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, rt.newServices(bus))

	srv := &http.Server{
		Addr:    rt.cfg.HTTPAddr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.WithField("addr", rt.cfg.HTTPAddr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stopBus()
		return err
	}

	rt.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.log.WithError(err).Warn("HTTP server did not shut down cleanly")
	}

	stopBus()
	bus.Wait()
	if n := bus.Drain(context.Background()); n > 0 {
		rt.log.WithField("events", n).Info("Flushed pending events")
	}
	return nil
}
