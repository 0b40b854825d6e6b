// Package web serves the dashboard over HTTP: a small page, the current view
// as JSON, a server-sent event stream of views and the user actions.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/vadiminshakov/seedfarm/internal/domain"
	"github.com/vadiminshakov/seedfarm/internal/viewmodel"
)

const heartbeatInterval = 20 * time.Second

type viewSource interface {
	View() viewmodel.View
	Subscribe() chan viewmodel.View
	Unsubscribe(ch chan viewmodel.View)
}

type sessionControl interface {
	Connect(ctx context.Context)
	Disconnect(ctx context.Context)
}

type actionRunner interface {
	Do(ctx context.Context, action domain.Action, input string) (domain.Submission, error)
}

// Server exposes the dashboard over HTTP.
type Server struct {
	Addr    string
	views   viewSource
	session sessionControl
	actions actionRunner
	logger  *zap.Logger
}

// NewServer creates a server listening on addr.
func NewServer(addr string, views viewSource, session sessionControl, actions actionRunner, logger *zap.Logger) *Server {
	return &Server{Addr: addr, views: views, session: session, actions: actions, logger: logger}
}

// Handler returns the routes without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /view", s.handleView)
	mux.HandleFunc("GET /view/stream", s.handleViewStream)
	mux.HandleFunc("POST /wallet/connect", s.handleConnect)
	mux.HandleFunc("POST /wallet/disconnect", s.handleDisconnect)
	mux.HandleFunc("POST /actions/{action}", s.handleAction)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled. With domains set it serves HTTPS through ACME certificates
// and answers HTTP-01 challenges on port 80.
func (s *Server) Start(ctx context.Context, domains []string, cacheDir string) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	servers := []*http.Server{server}

	if len(domains) > 0 {
		if cacheDir == "" {
			cacheDir = "cert-cache"
		}
		manager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(domains...),
			Cache:      autocert.DirCache(cacheDir),
		}
		server.TLSConfig = manager.TLSConfig()
		server.TLSConfig.MinVersion = tls.VersionTLS12

		acme := &http.Server{
			Addr:              ":80",
			Handler:           manager.HTTPHandler(nil),
			ReadHeaderTimeout: 15 * time.Second,
		}
		servers = append(servers, acme)
		go func() {
			if err := acme.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("acme challenge server failed", zap.Error(err))
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("server shutdown error", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}
	}()

	s.logger.Info("web dashboard listening", zap.String("addr", s.Addr), zap.Strings("domains", domains))

	var err error
	if server.TLSConfig != nil {
		err = server.ListenAndServeTLS("", "")
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.views.View())
}

func (s *Server) handleViewStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	views := s.views.Subscribe()
	defer s.views.Unsubscribe(views)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	send := func(v viewmodel.View) bool {
		payload, err := json.Marshal(v)
		if err != nil {
			s.logger.Error("failed to encode view", zap.Error(err))
			return false
		}
		fmt.Fprintf(w, "event: view\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return true
	}

	if !send(s.views.View()) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case v, ok := <-views:
			if !ok || !send(v) {
				return
			}
		}
	}
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	s.session.Connect(r.Context())
	writeJSON(w, http.StatusOK, s.views.View())
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.session.Disconnect(r.Context())
	writeJSON(w, http.StatusOK, s.views.View())
}

type actionRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	action, ok := domain.ParseAction(r.PathValue("action"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown action %q", r.PathValue("action")))
		return
	}
	if !domain.Offers(s.views.View().Actions, action) {
		writeError(w, http.StatusConflict, fmt.Errorf("%s is not available", action))
		return
	}

	var req actionRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	} else {
		req.Amount = r.FormValue("amount")
	}

	sub, err := s.actions.Do(r.Context(), action, req.Amount)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, sub)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotConnected):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSubmission):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
