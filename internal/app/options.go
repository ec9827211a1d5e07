package app

import (
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/broadcast"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/repository"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
)

// Option configures a Service.
type Option func(*Service)

// WithStore overrides the default in-memory store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithGateway overrides the default broadcast gateway.
func WithGateway(g *broadcast.Gateway) Option {
	return func(s *Service) {
		if g != nil {
			s.gateway = g
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}
