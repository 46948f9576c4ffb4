package models

import (
	"time"
)

// Snapshot is the full observable state sent to clients
type Snapshot struct {
	Config       DrawConfig      `json:"config"`
	Participants []Participant   `json:"participants"`
	History      []HistoryEntry  `json:"history"`
	LastDrawTime *time.Time      `json:"lastDrawTime"`
	LastWinners  []HistoryWinner `json:"lastWinners"`
	TargetValue  string          `json:"targetValue"`
}
