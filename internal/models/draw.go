package models

import (
	"fmt"
	"strings"
)

// DrawKind identifies one of the draw variants
type DrawKind string

const (
	DrawKindPrimary       DrawKind = "PRIMARY"
	DrawKindSupplementary DrawKind = "SUPPLEMENTARY"
	DrawKindFiltered      DrawKind = "FILTERED"
)

// ParseDrawKind parses a draw kind case-insensitively
func ParseDrawKind(s string) (DrawKind, error) {
	switch DrawKind(strings.ToUpper(strings.TrimSpace(s))) {
	case DrawKindPrimary:
		return DrawKindPrimary, nil
	case DrawKindSupplementary:
		return DrawKindSupplementary, nil
	case DrawKindFiltered:
		return DrawKindFiltered, nil
	default:
		return "", fmt.Errorf("unknown draw kind %q", s)
	}
}

// ScoredParticipant is a participant together with its score against the target
type ScoredParticipant struct {
	Participant
	Score int `json:"score"`
}

// DrawResult describes the outcome of a completed draw
type DrawResult struct {
	Kind             DrawKind            `json:"kind"`
	Winners          []ScoredParticipant `json:"winners"`
	EligiblePoolSize int                 `json:"eligiblePoolSize"`
	Entry            HistoryEntry        `json:"entry"`
	Config           DrawConfig          `json:"config"`
}

// FilteredDrawRequest is the body of a filtered draw
type FilteredDrawRequest struct {
	ExcludeIDs []string `json:"excludeIds"`
}
