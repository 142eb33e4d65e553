package models

import "time"

// Service is a logical named workload registered by an agent. Name is the
// natural key: repeated registrations with the same name converge to one
// record. AgentID always reflects the agent whose API key authenticated
// the most recent registration; it is never taken from the request body.
// UpdatedAt doubles as a liveness signal, refreshed on every registration.
type Service struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Status    string    `json:"status" bson:"status"`
	Version   string    `json:"version" bson:"version"`
	AgentID   string    `json:"agentId,omitempty" bson:"agentId,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
