// Package api exposes reputation, identity and credential operations over HTTP.
package api

import (
	"io"
	"log"
	"net/http"
	"time"

	"omnirep/internal/credential"
	"omnirep/internal/ens"
	"omnirep/internal/feed"
	"omnirep/internal/github"
	"omnirep/internal/observability"
	"omnirep/internal/service"
)

// Options for creating Server.
type Options struct {
	// Required
	Reputation *service.Service

	// Optional; routes for missing components reply 501
	GitHub      *github.Connector
	Credentials *credential.Service
	Registrar   *ens.Registrar
	Feed        *feed.Hub

	// ServeMetrics mounts /metrics on this handler.
	ServeMetrics bool
	// StorageMode is reported by /status.
	StorageMode string

	Logger *log.Logger
	Now    func() time.Time
}

// Server holds the HTTP handlers.
type Server struct {
	rep         *service.Service
	github      *github.Connector
	creds       *credential.Service
	registrar   *ens.Registrar
	feed        *feed.Hub
	metrics     bool
	storageMode string
	logger      *log.Logger
	now         func() time.Time
	started     time.Time
}

// New creates a new Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		rep:         opts.Reputation,
		github:      opts.GitHub,
		creds:       opts.Credentials,
		registrar:   opts.Registrar,
		feed:        opts.Feed,
		metrics:     opts.ServeMetrics,
		storageMode: opts.StorageMode,
		logger:      logger,
		now:         now,
		started:     now(),
	}
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, instrument(pattern, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		s.writeText(w, http.StatusOK, "text/plain; charset=utf-8", "ok")
	})
	handle("GET /status", s.handleStatus)
	if s.metrics {
		mux.Handle("GET /metrics", observability.Handler())
	}

	handle("GET /v1/reputation/{address}", s.handleGetReputation)
	handle("POST /v1/reputation/{address}", s.handleUpdateReputation)
	handle("GET /v1/reputation/{address}/history", s.handleHistory)
	handle("GET /v1/reputation/{address}/export", s.handleExport)
	handle("GET /v1/reputation/{address}/analysis", s.handleAnalysis)
	handle("POST /v1/reputation/{address}/analysis", s.handleAnalysis)

	handle("POST /v1/github/connect", s.requireGitHub(s.handleGitHubConnect))
	handle("GET /v1/github/{address}", s.requireGitHub(s.handleGitHubGet))
	handle("DELETE /v1/github/{address}", s.requireGitHub(s.handleGitHubDisconnect))

	handle("GET /v1/did/{address}", s.handleDID)

	handle("POST /v1/credentials", s.requireCredentials(s.handleIssueCredential))
	handle("GET /v1/credentials", s.requireCredentials(s.handleListCredentials))
	handle("GET /v1/credentials/{cid}", s.requireCredentials(s.handleGetCredential))
	handle("POST /v1/credentials/verify", s.requireCredentials(s.handleVerifyCredential))

	handle("POST /v1/ens/subnames", s.requireRegistrar(s.handleRegisterSubname))
	handle("GET /v1/ens/subnames/{name}", s.requireRegistrar(s.handleGetSubname))
	handle("GET /v1/ens/available/{label}", s.requireRegistrar(s.handleAvailable))

	if s.feed != nil {
		mux.Handle("GET /v1/feed", instrument("GET /v1/feed", s.feed))
	}

	return mux
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	StartedAt       time.Time `json:"started_at"`
	StorageMode     string    `json:"storage_mode,omitempty"`
	FeedSubscribers int       `json:"feed_subscribers"`
	GitHubEnabled   bool      `json:"github_enabled"`
	IssuerDID       string    `json:"issuer_did,omitempty"`
	ENSParent       string    `json:"ens_parent,omitempty"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:        "running",
		Uptime:        s.now().Sub(s.started).Round(time.Second).String(),
		StartedAt:     s.started,
		StorageMode:   s.storageMode,
		GitHubEnabled: s.github != nil,
	}
	if s.feed != nil {
		resp.FeedSubscribers = s.feed.Count()
	}
	if s.creds != nil {
		resp.IssuerDID = s.creds.Issuer().DID()
	}
	if s.registrar != nil {
		resp.ENSParent = s.registrar.Parent()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) requireGitHub(h http.HandlerFunc) http.HandlerFunc {
	return s.require(s.github != nil, "github integration", h)
}

func (s *Server) requireCredentials(h http.HandlerFunc) http.HandlerFunc {
	return s.require(s.creds != nil, "credential issuing", h)
}

func (s *Server) requireRegistrar(h http.HandlerFunc) http.HandlerFunc {
	return s.require(s.registrar != nil, "ens registrar", h)
}

func (s *Server) require(enabled bool, name string, h http.HandlerFunc) http.HandlerFunc {
	if enabled {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: name + " not configured"})
	}
}
