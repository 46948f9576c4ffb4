package models

import (
	"time"
)

// DrawConfig holds the mutable tunables of the drawing. There is exactly one.
type DrawConfig struct {
	CapacityLimit int       `bson:"capacityLimit" json:"capacityLimit"`
	WinnerCount   int       `bson:"winnerCount" json:"winnerCount"`
	TargetValue   string    `bson:"targetValue" json:"targetValue"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UpdateConfigRequest is the body of an admin config update
type UpdateConfigRequest struct {
	CapacityLimit *int `json:"capacityLimit" binding:"required"`
	WinnerCount   *int `json:"winnerCount" binding:"required"`
}

// SetTargetRequest is the body of an admin target override
type SetTargetRequest struct {
	TargetValue string `json:"targetValue" binding:"required"`
}
