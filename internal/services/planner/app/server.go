// Package server wires the planner runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/weekbite/weekbite.app/internal/platform/config"
	"github.com/weekbite/weekbite.app/internal/platform/timeouts"
	"github.com/weekbite/weekbite.app/internal/services/planner/api/httpapi"
	"github.com/weekbite/weekbite.app/internal/services/planner/domain/plan"
	"github.com/weekbite/weekbite.app/internal/services/planner/domain/recipe"
	plannersqlite "github.com/weekbite/weekbite.app/internal/services/planner/storage/sqlite"
	"github.com/weekbite/weekbite.app/internal/services/shared/authctx"
)

type serverEnv struct {
	DBPath string `env:"WEEKBITE_PLANNER_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "planner.db")
	}
	return cfg
}

// Server hosts the planner HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *plannersqlite.Store
}

// New creates a configured planner server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured planner server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := openPlannerStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	verifierCfg, err := authctx.LoadVerifierConfigFromEnv(time.Now)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("load access token verifier: %w", err)
	}

	handler := buildHandler(store, verifierCfg)
	return &Server{
		listener:   listener,
		httpServer: &http.Server{Handler: handler, ReadHeaderTimeout: timeouts.ReadHeader},
		store:      store,
	}, nil
}

func buildHandler(store *plannersqlite.Store, verifierCfg authctx.VerifierConfig) http.Handler {
	recipeService := recipe.NewService(newRecipeStoreAdapter(store), nil, nil)
	planService := plan.NewService(newPlanStoreAdapter(store, store, store, store, store), nil, nil)

	mux := http.NewServeMux()
	api := httpapi.NewHandler(recipeService, planService)
	api.RegisterRoutes(mux)

	authed := authctx.Middleware(verifierCfg, rejectUnauthenticated)(mux)
	return httpapi.WithTracing(authed)
}

func rejectUnauthenticated(w http.ResponseWriter, _ *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, `{"code":"UNAUTHENTICATED","message":%q}`+"\n", err.Error())
}

func openPlannerStore(path string) (*plannersqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := plannersqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open planner store: %w", err)
	}
	return store, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a planner server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("planner server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the server's listener and storage resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}
}
