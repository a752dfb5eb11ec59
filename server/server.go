package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/asaskevich/EventBus"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/vidextract/vidextract/server/config"
	"github.com/vidextract/vidextract/server/internal/archive"
	"github.com/vidextract/vidextract/server/internal/logging"
	"github.com/vidextract/vidextract/server/internal/orchestrator"
	"github.com/vidextract/vidextract/server/openid"
	"github.com/vidextract/vidextract/server/rest"
	"github.com/vidextract/vidextract/server/rpc"
	"github.com/vidextract/vidextract/server/settings"
	"github.com/vidextract/vidextract/server/user"
)

type serverConfig struct {
	orc      *orchestrator.Orchestrator
	bus      EventBus.Bus
	settings *settings.Store
	records  *archive.Store
}

func Run(ctx context.Context) error {
	conf := config.Instance()

	// ---- LOGGING ---------------------------------------------------
	logWriters := []io.Writer{os.Stdout}

	if conf.Logging.EnableFileLogging {
		writer, err := logging.NewRotatingWriter(conf.Logging.LogPath)
		if err != nil {
			return err
		}
		logWriters = append(logWriters, writer)
	}

	logger := slog.New(slog.NewTextHandler(io.MultiWriter(logWriters...), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	// ----------------------------------------------------------------

	store, err := settings.Open(conf.Paths.SettingsPath)
	if err != nil {
		return err
	}

	records, err := archive.Open(filepath.Join(conf.Paths.LocalDatabasePath, "archive.db"))
	if err != nil {
		return err
	}

	bus := EventBus.New()
	orc := orchestrator.New(bus, records)

	scfg := serverConfig{
		orc:      orc,
		bus:      bus,
		settings: store,
		records:  records,
	}

	srv := newServer(scfg)

	go gracefulShutdown(ctx, srv, &scfg)

	var (
		network = "tcp"
		address = fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port)
	)

	// support unix sockets
	if strings.HasPrefix(conf.Server.Host, "/") {
		network = "unix"
		address = conf.Server.Host
	}

	listener, err := net.Listen(network, address)
	if err != nil {
		slog.Error("failed to listen", slog.String("err", err.Error()))
		return err
	}

	slog.Info("vidextract started", slog.String("address", address))

	if err := srv.Serve(listener); err != nil {
		slog.Warn("http server stopped", slog.String("err", err.Error()))
	}

	return nil
}

func newServer(c serverConfig) *http.Server {
	r := chi.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r.Use(corsMiddleware.Handler)

	// Authentication routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", user.Login)
		r.Get("/logout", user.Logout)

		r.Route("/openid", func(r chi.Router) {
			r.Get("/login", openid.Login)
			r.Get("/signin", openid.SignIn)
			r.Get("/logout", openid.Logout)
		})
	})

	// Event stream
	r.Route("/rpc", rpc.ApplyRouter(c.bus))

	// REST API handlers
	r.Route("/api/v1", rest.ApplyRouter(&rest.ContainerArgs{
		Orchestrator: c.orc,
		Settings:     c.settings,
		Archive:      c.records,
	}))

	return &http.Server{Handler: r}
}

func gracefulShutdown(ctx context.Context, srv *http.Server, cfg *serverConfig) {
	<-ctx.Done()
	slog.Info("shutdown signal received")

	defer func() {
		cfg.records.Close()
		srv.Shutdown(context.Background())
	}()
}
