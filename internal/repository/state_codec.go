package repository

import (
	"encoding/json"
	"fmt"

	"Sentinel/internal/domain/models"
	domrepo "Sentinel/internal/domain/repository"
)

func encodeState(s *models.State) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

// decodeState wraps any decoding failure in ErrStateCorrupt.
func decodeState(b []byte) (*models.State, error) {
	s := models.NewState()
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("%w: %v", domrepo.ErrStateCorrupt, err)
	}
	s.Normalize()
	return s, nil
}

// cloneState deep-copies through the codec so a failed mutation never leaks.
func cloneState(s *models.State) (*models.State, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("clone state: %w", err)
	}
	return decodeState(b)
}
