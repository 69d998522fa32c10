package models

import (
	"time"
)

// User is an identity-provider record. CustomClaims carries authorization
// flags such as "admin"; it is consulted on every token verification so that
// claim changes take effect without reissuing tokens.
type User struct {
	UID          string                 `bson:"_id" json:"uid"`
	Email        string                 `bson:"email,omitempty" json:"email,omitempty"`
	DisplayName  string                 `bson:"displayName,omitempty" json:"displayName,omitempty"`
	CustomClaims map[string]interface{} `bson:"customClaims,omitempty" json:"customClaims,omitempty"`
	CreatedAt    time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time              `bson:"updatedAt" json:"updatedAt"`
}
