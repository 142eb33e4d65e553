// Package registry implements service lifecycle operations: the idempotent
// registration flow used by agents on the callback surface and the plain
// CRUD used by the dashboard.
package registry

import (
	"context"
	"time"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/crypto"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/errs"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/metrics"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/store"
)

// Registry manages Service records.
type Registry struct {
	store store.DataStore
}

// New creates a Registry backed by the given store.
func New(s store.DataStore) *Registry {
	return &Registry{store: s}
}

// RegisterOrUpdate upserts a service by exact name match. agentID is the
// id of the agent whose API key authenticated the call; any agent id the
// client put in its request body has already been discarded by the caller.
// That binding is what stops one agent's key from registering services
// under another agent's identity.
//
// The returned bool is true when a new record was created. Repeated
// registrations converge on one record, refreshing UpdatedAt each time so
// agents can re-register periodically as a heartbeat. Concurrent
// registrations of the same name are last-write-wins.
func (r *Registry) RegisterOrUpdate(ctx context.Context, name, status, version, agentID string) (*models.Service, bool, error) {
	existing, err := r.store.GetServiceByName(ctx, name)
	if err != nil {
		return nil, false, errs.Wrap(errs.Internal, err, "service lookup failed")
	}

	now := time.Now().UTC()

	if existing != nil {
		existing.Status = status
		existing.Version = version
		existing.AgentID = agentID
		existing.UpdatedAt = now
		if err := r.store.UpdateService(ctx, existing); err != nil {
			return nil, false, errs.Wrap(errs.Internal, err, "service update failed")
		}
		metrics.ServicesRegistered.WithLabelValues("updated").Inc()
		return existing, false, nil
	}

	service := &models.Service{
		ID:        crypto.NewID(),
		Name:      name,
		Status:    status,
		Version:   version,
		AgentID:   agentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.CreateService(ctx, service); err != nil {
		return nil, false, errs.Wrap(errs.Internal, err, "service create failed")
	}
	metrics.ServicesRegistered.WithLabelValues("created").Inc()
	return service, true, nil
}

// Get retrieves a service by id.
func (r *Registry) Get(ctx context.Context, id string) (*models.Service, error) {
	service, err := r.store.GetService(ctx, id)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "service lookup failed")
	}
	if service == nil {
		return nil, errs.New(errs.NotFound, "service %s not found", id)
	}
	return service, nil
}

// GetByName retrieves a service by exact name.
func (r *Registry) GetByName(ctx context.Context, name string) (*models.Service, error) {
	service, err := r.store.GetServiceByName(ctx, name)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "service lookup failed")
	}
	if service == nil {
		return nil, errs.New(errs.NotFound, "service %q not found", name)
	}
	return service, nil
}

// List returns all services.
func (r *Registry) List(ctx context.Context) ([]models.Service, error) {
	services, err := r.store.ListServices(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "service list failed")
	}
	return services, nil
}

// Delete removes a service by id.
func (r *Registry) Delete(ctx context.Context, id string) error {
	service, err := r.store.GetService(ctx, id)
	if err != nil {
		return errs.Wrap(errs.Internal, err, "service lookup failed")
	}
	if service == nil {
		return errs.New(errs.NotFound, "service %s not found", id)
	}
	if err := r.store.DeleteService(ctx, id); err != nil {
		return errs.Wrap(errs.Internal, err, "service delete failed")
	}
	return nil
}
