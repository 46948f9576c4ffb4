package models

import (
	"time"
)

// PrizeStatus represents where a participant stands in the drawing
type PrizeStatus string

const (
	PrizeStatusNone                PrizeStatus = "NONE"
	PrizeStatusPrimaryWinner       PrizeStatus = "PRIMARY_WINNER"
	PrizeStatusSupplementaryWinner PrizeStatus = "SUPPLEMENTARY_WINNER"
)

// Participant represents a registered participant in the drawing
type Participant struct {
	ID           string      `bson:"_id" json:"id"`
	DisplayName  string      `bson:"displayName" json:"displayName"`
	Token        string      `bson:"token" json:"token"`
	PrizeStatus  PrizeStatus `bson:"prizeStatus" json:"prizeStatus"`
	Seq          int64       `bson:"seq" json:"seq"` // Registration order, restored on reload
	RegisteredAt time.Time   `bson:"registeredAt" json:"registeredAt"`
}

// IsEligible reports whether the participant can still be drawn
func (p Participant) IsEligible() bool {
	return p.PrizeStatus == PrizeStatusNone || p.PrizeStatus == ""
}

// RegisterParticipantRequest is the body of a public registration
type RegisterParticipantRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
}

// ManualParticipantRequest is the body of an admin registration with an explicit token
type ManualParticipantRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	Token       string `json:"token" binding:"required"`
}

// BulkEntry is one row of a bulk registration
type BulkEntry struct {
	DisplayName string `json:"displayName"`
	Token       string `json:"token"`
}

// BulkRegisterRequest is the body of an admin bulk registration
type BulkRegisterRequest struct {
	Entries []BulkEntry `json:"entries" binding:"required"`
}

// SkippedEntry records a bulk entry that was not registered and why
type SkippedEntry struct {
	Index  int       `json:"index"`
	Entry  BulkEntry `json:"entry"`
	Reason string    `json:"reason"`
	Code   string    `json:"code"`
}

// BulkResult summarises a bulk registration
type BulkResult struct {
	Added        int            `json:"added"`
	Skipped      []SkippedEntry `json:"skipped"`
	Participants []Participant  `json:"participants"`
}
