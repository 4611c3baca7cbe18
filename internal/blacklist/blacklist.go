package blacklist

import (
	"sync"

	"go.uber.org/zap"

	"riskScope/internal/address"
)

// Store persists deployer blacklist additions.
type Store interface {
	AppendDeployer(addr string) error
}

// Set holds blacklisted token and deployer addresses. Lookups are
// case-insensitive. Deployers only ever grow.
type Set struct {
	mu        sync.RWMutex
	tokens    map[string]struct{}
	deployers map[string]struct{}

	persistMu sync.Mutex
	store     Store
	logger    *zap.Logger
}

func New(tokens, deployers []string, store Store, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Set{
		tokens:    make(map[string]struct{}, len(tokens)),
		deployers: make(map[string]struct{}, len(deployers)),
		store:     store,
		logger:    logger,
	}
	for _, t := range tokens {
		if key := address.Normalize(t); key != "" {
			s.tokens[key] = struct{}{}
		}
	}
	for _, d := range deployers {
		if key := address.Normalize(d); key != "" {
			s.deployers[key] = struct{}{}
		}
	}
	return s
}

func (s *Set) IsTokenBlacklisted(addr string) bool {
	key := address.Normalize(addr)
	if key == "" {
		return false
	}
	s.mu.RLock()
	_, ok := s.tokens[key]
	s.mu.RUnlock()
	return ok
}

func (s *Set) IsDeployerBlacklisted(addr string) bool {
	key := address.Normalize(addr)
	if key == "" {
		return false
	}
	s.mu.RLock()
	_, ok := s.deployers[key]
	s.mu.RUnlock()
	return ok
}

// AddDeployer blacklists a deployer and persists it. It returns false when the
// deployer was already present. A persistence failure is logged and the
// in-memory addition is kept.
func (s *Set) AddDeployer(addr string) bool {
	key := address.Normalize(addr)
	if key == "" {
		return false
	}

	s.mu.Lock()
	if _, ok := s.deployers[key]; ok {
		s.mu.Unlock()
		return false
	}
	s.deployers[key] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("deployer blacklisted", zap.String("deployer", addr))

	if s.store == nil {
		return true
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.store.AppendDeployer(addr); err != nil {
		s.logger.Warn("persist deployer blacklist", zap.String("deployer", addr), zap.Error(err))
	}
	return true
}

// Deployers returns the current deployer keys.
func (s *Set) Deployers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.deployers))
	for d := range s.deployers {
		out = append(out, d)
	}
	return out
}
