package store

import (
	"context"
	"sync"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

// MemoryStore is an in-process DataStore used in development when no
// MONGO_URI is configured, and by the test suite. Records are copied on
// the way in and out so callers never share mutable state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	agents   map[string]models.Agent
	services map[string]models.Service
	users    map[string]models.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agents:   make(map[string]models.Agent),
		services: make(map[string]models.Service),
		users:    make(map[string]models.User),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ping is a no-op for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// CreateAgent inserts a new agent record.
func (s *MemoryStore) CreateAgent(ctx context.Context, agent *models.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.ID] = *agent
	return nil
}

// GetAgent retrieves an agent by id.
func (s *MemoryStore) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[id]
	if !ok {
		return nil, nil
	}
	return &agent, nil
}

// GetAgentByAPIKey retrieves the agent holding the given key, considering
// only active keys.
func (s *MemoryStore) GetAgentByAPIKey(ctx context.Context, apiKey string) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, agent := range s.agents {
		if agent.APIKey == apiKey && agent.IsAPIKeyActive {
			a := agent
			return &a, nil
		}
	}
	return nil, nil
}

// ListAgents returns all agents.
func (s *MemoryStore) ListAgents(ctx context.Context) ([]models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agents := make([]models.Agent, 0, len(s.agents))
	for _, agent := range s.agents {
		agents = append(agents, agent)
	}
	return agents, nil
}

// UpdateAgent replaces the full agent record.
func (s *MemoryStore) UpdateAgent(ctx context.Context, agent *models.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.ID] = *agent
	return nil
}

// DeleteAgent removes an agent by id.
func (s *MemoryStore) DeleteAgent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.agents, id)
	return nil
}

// CreateService inserts a new service record.
func (s *MemoryStore) CreateService(ctx context.Context, service *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[service.ID] = *service
	return nil
}

// GetService retrieves a service by id.
func (s *MemoryStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	service, ok := s.services[id]
	if !ok {
		return nil, nil
	}
	return &service, nil
}

// GetServiceByName retrieves a service by exact name.
func (s *MemoryStore) GetServiceByName(ctx context.Context, name string) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, service := range s.services {
		if service.Name == name {
			svc := service
			return &svc, nil
		}
	}
	return nil, nil
}

// ListServices returns all services.
func (s *MemoryStore) ListServices(ctx context.Context) ([]models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	services := make([]models.Service, 0, len(s.services))
	for _, service := range s.services {
		services = append(services, service)
	}
	return services, nil
}

// UpdateService replaces the full service record.
func (s *MemoryStore) UpdateService(ctx context.Context, service *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[service.ID] = *service
	return nil
}

// DeleteService removes a service by id.
func (s *MemoryStore) DeleteService(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.services, id)
	return nil
}

// CreateUser inserts a new user record.
func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

// GetUser retrieves a user by id.
func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

// ListUsers returns all users.
func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

// UpdateUser replaces the full user record.
func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

// DeleteUser removes a user by id.
func (s *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}
