package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laostream/pkg/config"
)

func newTestRegistry(t *testing.T, gatewayConfigured bool) *Registry {
	t.Helper()

	cfg := config.BCELConfig{Timeout: time.Second}
	if gatewayConfigured {
		cfg = testBCELConfig("https://gateway.test")
	}
	return NewRegistry(NewFreeProvider(), NewBCELProvider(cfg), NewManualProvider())
}

func TestRegistry_Provider(t *testing.T) {
	reg := newTestRegistry(t, true)

	for _, name := range []string{ProviderFree, ProviderBCEL, ProviderManual} {
		p, err := reg.Provider(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	_, err := reg.Provider("paypal")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestRegistry_ProviderForAmount_ZeroAlwaysFree(t *testing.T) {
	// Free wins for amount zero regardless of gateway availability.
	for _, configured := range []bool{true, false} {
		reg := newTestRegistry(t, configured)
		assert.Equal(t, ProviderFree, reg.ProviderForAmount(0).Name())
	}
}

func TestRegistry_ProviderForAmount_GatewayWhenAvailable(t *testing.T) {
	reg := newTestRegistry(t, true)

	assert.Equal(t, ProviderBCEL, reg.ProviderForAmount(50000).Name())
}

func TestRegistry_ProviderForAmount_ManualFallback(t *testing.T) {
	reg := newTestRegistry(t, false)

	assert.Equal(t, ProviderManual, reg.ProviderForAmount(50000).Name())
}

func TestRegistry_List(t *testing.T) {
	reg := newTestRegistry(t, false)

	infos := reg.List()

	// Registration order, not selection precedence.
	require.Len(t, infos, 3)
	assert.Equal(t, ProviderFree, infos[0].Name)
	assert.Equal(t, ProviderBCEL, infos[1].Name)
	assert.Equal(t, ProviderManual, infos[2].Name)

	// Availability in the listing agrees with a fresh provider call.
	for _, info := range infos {
		p, err := reg.Provider(info.Name)
		require.NoError(t, err)
		assert.Equal(t, p.Available(), info.Available, info.Name)
		assert.Equal(t, p.DisplayName(), info.DisplayName)
	}
	assert.False(t, infos[1].Available)
}
