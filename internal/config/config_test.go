package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PLATFORM_FEE_PERCENTAGE", "")
	t.Setenv("CURRENCY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10", cfg.PlatformFeePercentage.String())
	assert.Equal(t, "ETB", cfg.Currency)
	assert.Equal(t, "https://meet.jit.si", cfg.MeetingBaseURL)
	assert.Equal(t, 20, cfg.RateLimitBurst)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PLATFORM_FEE_PERCENTAGE", "12.5")
	t.Setenv("CURRENCY", "USD")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "12.5", cfg.PlatformFeePercentage.String())
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestLoad_RejectsBadFee(t *testing.T) {
	for _, v := range []string{"-1", "100.01", "ten"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("PLATFORM_FEE_PERCENTAGE", v)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_RejectsBadBurst(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "many")
	_, err := Load()
	assert.Error(t, err)
}
