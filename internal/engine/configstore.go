package engine

import (
	"fmt"
	"unicode/utf8"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
)

// ConfigStore holds the singleton draw configuration and validates changes to it.
type ConfigStore struct {
	cfg            models.DrawConfig
	sequenceLength int
}

// NewConfigStore creates a store validating targets against sequenceLength.
func NewConfigStore(initial models.DrawConfig, sequenceLength int) *ConfigStore {
	return &ConfigStore{cfg: initial, sequenceLength: sequenceLength}
}

// Get returns the current configuration.
func (s *ConfigStore) Get() models.DrawConfig {
	return s.cfg
}

// Set replaces the configuration. Callers validate first.
func (s *ConfigStore) Set(cfg models.DrawConfig) {
	s.cfg = cfg
}

// ValidateLimits checks a capacity limit and winner count pair.
func ValidateLimits(capacityLimit, winnerCount int) error {
	if capacityLimit < 1 {
		return fmt.Errorf("capacity limit must be at least 1, got %d: %w", capacityLimit, ErrInvalidValue)
	}
	if winnerCount < 1 {
		return fmt.Errorf("winner count must be at least 1, got %d: %w", winnerCount, ErrInvalidValue)
	}
	if winnerCount > capacityLimit {
		return fmt.Errorf("%d winners for %d places: %w", winnerCount, capacityLimit, ErrWinnerCountExceedsCapacity)
	}
	return nil
}

// WithLimits returns the current configuration with both limits replaced,
// or an error leaving nothing changed.
func (s *ConfigStore) WithLimits(capacityLimit, winnerCount int) (models.DrawConfig, error) {
	if err := ValidateLimits(capacityLimit, winnerCount); err != nil {
		return models.DrawConfig{}, err
	}
	next := s.cfg
	next.CapacityLimit = capacityLimit
	next.WinnerCount = winnerCount
	return next, nil
}

// ValidateToken checks that a token or target is valid UTF-8 of the canonical length.
func (s *ConfigStore) ValidateToken(token string) error {
	if !utf8.ValidString(token) {
		return fmt.Errorf("token is not valid UTF-8: %w", ErrInvalidToken)
	}
	if n := SequenceLength(token); n != s.sequenceLength {
		return fmt.Errorf("got %d symbols, want %d: %w", n, s.sequenceLength, ErrInvalidToken)
	}
	return nil
}

// WithTarget returns the current configuration with an explicit target value.
func (s *ConfigStore) WithTarget(target string) (models.DrawConfig, error) {
	if err := s.ValidateToken(target); err != nil {
		return models.DrawConfig{}, err
	}
	next := s.cfg
	next.TargetValue = target
	return next, nil
}
