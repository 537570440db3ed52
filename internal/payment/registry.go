package payment

import (
	"fmt"
	"log/slog"
)

// ProviderInfo is a snapshot of one registered provider for admin display.
type ProviderInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Available   bool   `json:"available"`
}

// Registry holds the fixed, ordered set of payment providers and selects
// one per payment request. Constructed once at startup; read-only after.
type Registry struct {
	providers []Provider
	byName    map[string]Provider
	free      Provider
	bcel      Provider
	manual    Provider
}

// NewRegistry builds the registry with the canonical registration order:
// free, bcel, manual.
func NewRegistry(free *FreeProvider, bcel *BCELProvider, manual *ManualProvider) *Registry {
	providers := []Provider{free, bcel, manual}
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Registry{
		providers: providers,
		byName:    byName,
		free:      free,
		bcel:      bcel,
		manual:    manual,
	}
}

// Provider looks up a provider by its stable name.
func (r *Registry) Provider(name string) (Provider, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("Provider %q: %w", name, ErrProviderNotFound)
	}
	return p, nil
}

// ProviderForAmount selects the provider for a payment amount, in strict
// precedence order:
//
//  1. amount 0 returns free unconditionally. Free content must never be
//     blocked by a gateway outage, so no availability check runs.
//  2. bcel, if it reports available.
//  3. manual, which is always available, so a provider is always returned
//     for any non-negative amount.
//
// Selection ignores CanHandle; that is a separate per-provider eligibility
// check callers may apply before committing.
func (r *Registry) ProviderForAmount(amountLAK int64) Provider {
	if amountLAK == 0 {
		return r.free
	}
	if r.bcel.Available() {
		return r.bcel
	}
	slog.Debug("gateway unavailable, falling back to manual transfer",
		slog.Int64("amount_lak", amountLAK))
	return r.manual
}

// List returns all providers in registration order with their current
// availability.
func (r *Registry) List() []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, ProviderInfo{
			Name:        p.Name(),
			DisplayName: p.DisplayName(),
			Available:   p.Available(),
		})
	}
	return infos
}
