// Package settings manages the classification provider selection and keeps
// it in sync with the configuration file on disk.
package settings

import (
	"context"
	"sync"

	"github.com/bytebender77/MindMate/internal/apperr"
	"github.com/bytebender77/MindMate/internal/remote"
)

// Providers lists the classification backends the analysis service knows.
var Providers = []string{"gemini", "openai"}

// ProviderClient is the slice of the remote client the service needs.
type ProviderClient interface {
	Provider(ctx context.Context) (*remote.ProviderStatus, error)
	SetProvider(ctx context.Context, name string) (*remote.ProviderStatus, error)
}

// Service tracks the active classification provider.
type Service struct {
	client ProviderClient

	mu      sync.RWMutex
	current string
}

func NewService(client ProviderClient) *Service {
	return &Service{client: client}
}

// Known reports whether name is a supported provider.
func Known(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}

// Current returns the last provider this process applied, or queries the
// remote when none was applied yet.
func (s *Service) Current(ctx context.Context) (*remote.ProviderStatus, error) {
	status, err := s.client.Provider(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = status.Current
	s.mu.Unlock()
	return status, nil
}

// Switch validates name and applies it on the analysis service. Switching
// to the already active provider is a no-op against the remote.
func (s *Service) Switch(ctx context.Context, name string) (*remote.ProviderStatus, error) {
	if !Known(name) {
		return nil, apperr.Invalid("unknown provider " + name + " (available: gemini, openai)")
	}

	s.mu.RLock()
	active := s.current
	s.mu.RUnlock()
	if name == active {
		return &remote.ProviderStatus{
			Current:   active,
			Available: Providers,
			Message:   "provider already active",
		}, nil
	}

	status, err := s.client.SetProvider(ctx, name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = status.Current
	s.mu.Unlock()
	return status, nil
}
