package repository

import (
	"context"

	"Sentinel/internal/domain/models"
	domrepo "Sentinel/internal/domain/repository"
)

// StateSampleStore keeps the last max samples per symbol inside the state document.
type StateSampleStore struct {
	store domrepo.StateStore
	max   int
}

func NewStateSampleStore(store domrepo.StateStore, max int) *StateSampleStore {
	if max < 3 {
		max = 3
	}
	return &StateSampleStore{store: store, max: max}
}

// Append adds s, dropping samples not newer than the last one kept.
func (s *StateSampleStore) Append(ctx context.Context, symbol string, sample models.Sample) error {
	return s.store.Update(ctx, func(st *models.State) error {
		series := st.Samples[symbol]
		if n := len(series); n > 0 && !sample.Ts.After(series[n-1].Ts) {
			return nil
		}
		series = append(series, sample)
		if len(series) > s.max {
			series = append([]models.Sample(nil), series[len(series)-s.max:]...)
		}
		st.Samples[symbol] = series
		return nil
	})
}

func (s *StateSampleStore) Latest(ctx context.Context, symbol string, n int) ([]models.Sample, error) {
	var out []models.Sample
	err := s.store.View(ctx, func(st *models.State) error {
		series := st.Samples[symbol]
		if n <= 0 || n > len(series) {
			n = len(series)
		}
		out = append([]models.Sample(nil), series[len(series)-n:]...)
		return nil
	})
	return out, err
}
