package domain

import "time"

// ActivityAction enumerates the admin operations written to the activity trail.
type ActivityAction string

const (
	ActionCreate      ActivityAction = "create"
	ActionUpdate      ActivityAction = "update"
	ActionDelete      ActivityAction = "delete"
	ActionLogin       ActivityAction = "login"
	ActionLoginFailed ActivityAction = "login_failed"
	ActionLogout      ActivityAction = "logout"
	ActionUpload      ActivityAction = "upload"
)

// ActivityEvent is a single entry in the admin activity trail.
type ActivityEvent struct {
	ID         string         `json:"id" bson:"_id"`
	Actor      string         `json:"actor" bson:"actor"`
	Action     ActivityAction `json:"action" bson:"action"`
	Kind       string         `json:"kind,omitempty" bson:"kind,omitempty"`
	EntityID   int64          `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Detail     string         `json:"detail,omitempty" bson:"detail,omitempty"`
	IP         string         `json:"ip,omitempty" bson:"ip,omitempty"`
	OccurredAt time.Time      `json:"occurred_at" bson:"occurred_at"`
}
