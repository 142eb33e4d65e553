package models

import "time"

// User roles.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User is a dashboard account. LinkedServiceNames are soft references by
// Service.Name: a linked name with no matching service resolves to nothing
// rather than an error.
type User struct {
	ID                 string    `json:"id" bson:"_id"`
	Email              string    `json:"email" bson:"email"`
	PasswordHash       string    `json:"-" bson:"passwordHash"`
	Role               string    `json:"role" bson:"role"`
	LinkedServiceNames []string  `json:"linkedServiceNames" bson:"linkedServiceNames"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updatedAt"`
}
