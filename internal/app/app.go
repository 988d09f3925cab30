// Package app wires the store, bus, repositories and services into the
// application façade the host UI talks to.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.vokalia.id/voicecheck/api"
	"go.vokalia.id/voicecheck/auth"
	"go.vokalia.id/voicecheck/bus"
	"go.vokalia.id/voicecheck/config"
	"go.vokalia.id/voicecheck/recording"
	"go.vokalia.id/voicecheck/repo"
	"go.vokalia.id/voicecheck/store"
)

// Service owns the shared infrastructure and exposes the coach and
// member actions. One Service runs per process; open views share its
// store and bus.
type Service struct {
	cfg   *config.Config
	store *store.Store
	bus   *bus.Bus
	repos *repo.Repositories
	auth  *auth.Service

	watchCancel context.CancelFunc

	// At most one voice check runs at a time.
	session *recording.Session
}

// New opens the store at cfg.DataDir and wires everything up, including
// the store-to-bus bridge that relays writes from other views.
func New(cfg *config.Config) (*Service, error) {
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}

	b := bus.New()
	watchCtx, cancel := context.WithCancel(context.Background())
	b.BindStore(watchCtx, st)

	repos := repo.New(st, b)
	client := api.NewClient(cfg.APIBaseURL, time.Duration(cfg.APITimeoutSeconds)*time.Second)

	slog.Info("store opened", "dir", cfg.DataDir)
	return &Service{
		cfg:         cfg,
		store:       st,
		bus:         b,
		repos:       repos,
		auth:        auth.New(st, b, repos.Users, client),
		watchCancel: cancel,
	}, nil
}

// Store returns the shared persistent store.
func (s *Service) Store() *store.Store { return s.store }

// Bus returns the shared event bus.
func (s *Service) Bus() *bus.Bus { return s.bus }

// Repos returns the entity repositories.
func (s *Service) Repos() *repo.Repositories { return s.repos }

// Auth returns the authentication service.
func (s *Service) Auth() *auth.Service { return s.auth }

// Shutdown cleans up resources. Safe to call once.
func (s *Service) Shutdown() {
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			slog.Error("close recording session", "error", err)
		}
		s.session = nil
	}
	if s.watchCancel != nil {
		s.watchCancel()
	}
	if err := s.store.Close(); err != nil {
		slog.Error("close store", "error", err)
	}
}
