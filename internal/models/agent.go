package models

import "time"

// Agent represents an external cache-owning process registered with the
// dashboard. The API key is the agent's credential on the callback surface
// and the credential this server presents when calling back out to the
// agent's own HTTP API.
type Agent struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	URL            string    `json:"url" bson:"url"`
	APIKey         string    `json:"apiKey" bson:"apiKey"`
	IsAPIKeyActive bool      `json:"isApiKeyActive" bson:"isApiKeyActive"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}
