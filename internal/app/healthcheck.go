package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/smartnodego/internal/ctxlog"
	"github.com/specialistvlad/smartnodego/internal/orchestrator"
)

// componentView is the JSON shape of one outcome on /components.
type componentView struct {
	Name      string `json:"name"`
	Package   string `json:"package"`
	Symbol    string `json:"symbol"`
	Version   string `json:"version,omitempty"`
	State     string `json:"state"`
	Service   bool   `json:"service,omitempty"`
	Error     string `json:"error,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

type componentsResponse struct {
	BootID     string          `json:"boot_id"`
	Registered int             `json:"registered"`
	Components []componentView `json:"components"`
}

func newComponentView(o orchestrator.Outcome) componentView {
	v := componentView{
		Name:      o.Name,
		Package:   o.Package,
		Symbol:    o.Symbol,
		Version:   o.Version,
		State:     o.State.String(),
		Service:   o.Service,
		ElapsedMS: o.Elapsed.Milliseconds(),
	}
	if o.Err != nil {
		v.Error = o.Err.Error()
	}
	return v
}

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// componentsHandler lists the registration outcomes of the current boot.
func (a *App) componentsHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Components endpoint hit.", "remote_addr", r.RemoteAddr)

	resp := componentsResponse{BootID: a.bootID, Components: []componentView{}}
	for _, o := range a.Outcomes() {
		if o.Registered() {
			resp.Registered++
		}
		resp.Components = append(resp.Components, newComponentView(o))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Warn("Could not encode components response.", "error", err)
	}
}

func (a *App) healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.HandleFunc("GET /components", a.componentsHandler)
	return mux
}

// startHealthCheckServer binds the health check port and serves it as a
// background task. A port of zero disables the server.
func (a *App) startHealthCheckServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring health check server.")
	if a.config.HealthcheckPort <= 0 {
		logger.Debug("Health check server not started: disabled")
		return nil
	}

	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("health check server: %w", err)
	}

	server := &http.Server{
		Handler:           a.healthMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.mu.Lock()
	a.httpServer = server
	sched := a.tasksLocked(ctx)
	a.mu.Unlock()

	sched.Go("healthcheck", func(context.Context) error {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health check server failed unexpectedly: %w", err)
		}
		return nil
	})
	return nil
}

func (a *App) closeHealthCheckServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Closing health check server...")

	a.mu.Lock()
	server := a.httpServer
	a.mu.Unlock()
	if server == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}

	logger.Debug("Health check server shut down gracefully.")
	return nil
}
