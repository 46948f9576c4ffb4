package models

import (
	"time"
)

// HistoryEntry is the audit record of one completed draw
type HistoryEntry struct {
	ID                string          `bson:"_id" json:"id"`
	Seq               int64           `bson:"seq" json:"seq"`
	Timestamp         time.Time       `bson:"timestamp" json:"timestamp"`
	TargetValueAtDraw string          `bson:"targetValueAtDraw" json:"targetValueAtDraw"`
	DrawKind          DrawKind        `bson:"drawKind" json:"drawKind"`
	EligiblePoolSize  int             `bson:"eligiblePoolSize" json:"eligiblePoolSize"`
	Winners           []HistoryWinner `bson:"winners" json:"winners"`
}

// HistoryWinner is a winner as recorded in the history ledger
type HistoryWinner struct {
	ParticipantID string `bson:"participantId" json:"participantId"`
	DisplayName   string `bson:"displayName" json:"displayName"`
	Token         string `bson:"token" json:"token"`
	Score         int    `bson:"score" json:"score"`
}
