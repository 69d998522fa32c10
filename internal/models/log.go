package models

import (
	"time"
)

// LogEvent tags an audit record with the admin action that produced it.
// The set is fixed; log readers and the webhook formatter key off it.
type LogEvent string

const (
	LogCreateEvent      LogEvent = "create_event"
	LogUpdateEvent      LogEvent = "update_event"
	LogDeleteEvent      LogEvent = "delete_event"
	LogMoveEventPhoto   LogEvent = "move_event_photo"
	LogDeleteEventPhoto LogEvent = "delete_event_photo"
	LogAddEventPhoto    LogEvent = "add_event_photo"
	LogAdminLogin       LogEvent = "verify_admin_password"
	LogAdminLogout      LogEvent = "step_down_as_admin"
)

// UserInfo is the acting user's identity snapshot at the time of the action
type UserInfo struct {
	UID         string `bson:"uid" json:"uid"`
	Email       string `bson:"email,omitempty" json:"email,omitempty"`
	DisplayName string `bson:"displayName,omitempty" json:"displayName,omitempty"`
}

// LogEntry is an immutable audit record. Once written it is never mutated or
// deleted by the application; the persisted field names are a compatibility
// contract with existing log readers.
type LogEntry struct {
	ID        string                 `bson:"_id,omitempty" json:"id"`
	Event     LogEvent               `bson:"event" json:"event"`
	UserInfo  UserInfo               `bson:"userInfo" json:"userInfo"`
	Data      map[string]interface{} `bson:"data" json:"data"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}
