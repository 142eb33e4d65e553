package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

const (
	connectTimeout = 10 * time.Second
	maxPoolSize    = 100
	minPoolSize    = 10
)

// Collection names.
const (
	agentsCollection   = "agents"
	servicesCollection = "services"
	usersCollection    = "users"
)

// MongoStore handles MongoDB document operations.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewMongoStore connects to MongoDB, verifies the connection, and ensures
// the indexes the lookup paths depend on.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(maxPoolSize).
		SetMinPoolSize(minPoolSize).
		SetConnectTimeout(connectTimeout).
		SetRetryWrites(true).
		SetRetryReads(true).
		SetAppName("cachefy-server")

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	s := &MongoStore{
		client:   client,
		database: client.Database(dbName),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// ensureIndexes creates the indexes backing the query paths: upsert-by-name
// on services, key resolution on agents, login lookup on users.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.database.Collection(servicesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.database.Collection(agentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "apiKey", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = s.database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks the database connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// CreateAgent inserts a new agent record.
func (s *MongoStore) CreateAgent(ctx context.Context, agent *models.Agent) error {
	_, err := s.database.Collection(agentsCollection).InsertOne(ctx, agent)
	return err
}

// GetAgent retrieves an agent by id.
func (s *MongoStore) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	agent := &models.Agent{}
	err := s.database.Collection(agentsCollection).
		FindOne(ctx, bson.M{"_id": id}).Decode(agent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return agent, nil
}

// GetAgentByAPIKey retrieves the agent holding the given key, considering
// only active keys so a rotated-out key never matches.
func (s *MongoStore) GetAgentByAPIKey(ctx context.Context, apiKey string) (*models.Agent, error) {
	agent := &models.Agent{}
	err := s.database.Collection(agentsCollection).
		FindOne(ctx, bson.M{"apiKey": apiKey, "isApiKeyActive": true}).Decode(agent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return agent, nil
}

// ListAgents returns all agents.
func (s *MongoStore) ListAgents(ctx context.Context) ([]models.Agent, error) {
	cursor, err := s.database.Collection(agentsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var agents []models.Agent
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// UpdateAgent replaces the full agent record.
func (s *MongoStore) UpdateAgent(ctx context.Context, agent *models.Agent) error {
	_, err := s.database.Collection(agentsCollection).
		ReplaceOne(ctx, bson.M{"_id": agent.ID}, agent)
	return err
}

// DeleteAgent removes an agent by id.
func (s *MongoStore) DeleteAgent(ctx context.Context, id string) error {
	_, err := s.database.Collection(agentsCollection).
		DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// CreateService inserts a new service record.
func (s *MongoStore) CreateService(ctx context.Context, service *models.Service) error {
	_, err := s.database.Collection(servicesCollection).InsertOne(ctx, service)
	return err
}

// GetService retrieves a service by id.
func (s *MongoStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	service := &models.Service{}
	err := s.database.Collection(servicesCollection).
		FindOne(ctx, bson.M{"_id": id}).Decode(service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return service, nil
}

// GetServiceByName retrieves a service by exact (case-sensitive) name.
func (s *MongoStore) GetServiceByName(ctx context.Context, name string) (*models.Service, error) {
	service := &models.Service{}
	err := s.database.Collection(servicesCollection).
		FindOne(ctx, bson.M{"name": name}).Decode(service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return service, nil
}

// ListServices returns all services.
func (s *MongoStore) ListServices(ctx context.Context) ([]models.Service, error) {
	cursor, err := s.database.Collection(servicesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// UpdateService replaces the full service record.
func (s *MongoStore) UpdateService(ctx context.Context, service *models.Service) error {
	_, err := s.database.Collection(servicesCollection).
		ReplaceOne(ctx, bson.M{"_id": service.ID}, service)
	return err
}

// DeleteService removes a service by id.
func (s *MongoStore) DeleteService(ctx context.Context, id string) error {
	_, err := s.database.Collection(servicesCollection).
		DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// CreateUser inserts a new user record.
func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.database.Collection(usersCollection).InsertOne(ctx, user)
	return err
}

// GetUser retrieves a user by id.
func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := s.database.Collection(usersCollection).
		FindOne(ctx, bson.M{"_id": id}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.database.Collection(usersCollection).
		FindOne(ctx, bson.M{"email": email}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns all users.
func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.database.Collection(usersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser replaces the full user record.
func (s *MongoStore) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := s.database.Collection(usersCollection).
		ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	return err
}

// DeleteUser removes a user by id.
func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	_, err := s.database.Collection(usersCollection).
		DeleteOne(ctx, bson.M{"_id": id})
	return err
}
