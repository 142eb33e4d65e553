package store

import (
	"context"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

// DataStore defines the interface for persistent storage of agents,
// services, and users. MongoStore is the production implementation;
// MemoryStore backs development without a database and the test suite.
//
// Point lookups return (nil, nil) when no record matches; an error is
// only a store failure.
type DataStore interface {
	// Connection management
	Close(ctx context.Context) error
	Ping(ctx context.Context) error

	// Agent operations
	CreateAgent(ctx context.Context, agent *models.Agent) error
	GetAgent(ctx context.Context, id string) (*models.Agent, error)
	GetAgentByAPIKey(ctx context.Context, apiKey string) (*models.Agent, error)
	ListAgents(ctx context.Context) ([]models.Agent, error)
	UpdateAgent(ctx context.Context, agent *models.Agent) error
	DeleteAgent(ctx context.Context, id string) error

	// Service operations
	CreateService(ctx context.Context, service *models.Service) error
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetServiceByName(ctx context.Context, name string) (*models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	UpdateService(ctx context.Context, service *models.Service) error
	DeleteService(ctx context.Context, id string) error

	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}
