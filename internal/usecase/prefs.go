package usecase

import (
	"context"
	"fmt"

	"Sentinel/internal/domain/models"
	drepo "Sentinel/internal/domain/repository"
)

// PrefsService reads and mutates the display preferences in the state document.
type PrefsService struct {
	store drepo.StateStore
}

func NewPrefsService(store drepo.StateStore) *PrefsService {
	return &PrefsService{store: store}
}

func (p *PrefsService) Get(ctx context.Context) (models.Prefs, error) {
	var prefs models.Prefs
	err := p.store.View(ctx, func(s *models.State) error {
		prefs = s.Prefs
		return nil
	})
	if err != nil {
		return models.Prefs{}, fmt.Errorf("read prefs: %w", err)
	}
	return prefs, nil
}

// Update applies fn to the current prefs and returns the stored result.
func (p *PrefsService) Update(ctx context.Context, fn func(*models.Prefs)) (models.Prefs, error) {
	var prefs models.Prefs
	err := p.store.Update(ctx, func(s *models.State) error {
		fn(&s.Prefs)
		prefs = s.Prefs
		return nil
	})
	if err != nil {
		return models.Prefs{}, fmt.Errorf("update prefs: %w", err)
	}
	return prefs, nil
}

func (p *PrefsService) SetScheme(ctx context.Context, scheme models.Scheme) (models.Prefs, error) {
	return p.Update(ctx, func(pr *models.Prefs) { pr.Scheme = scheme })
}

func (p *PrefsService) SetShowPrice(ctx context.Context, on bool) (models.Prefs, error) {
	return p.Update(ctx, func(pr *models.Prefs) { pr.ShowPrice = on })
}

// Module names accepted by SetModule.
const (
	ModuleCrypto = "crypto"
	ModuleEquity = "equity"
)

func (p *PrefsService) SetModule(ctx context.Context, module string, on bool) (models.Prefs, error) {
	switch module {
	case ModuleCrypto:
		return p.Update(ctx, func(pr *models.Prefs) { pr.EnableCrypto = on })
	case ModuleEquity:
		return p.Update(ctx, func(pr *models.Prefs) { pr.EnableEquity = on })
	default:
		return models.Prefs{}, fmt.Errorf("unknown module %q", module)
	}
}
