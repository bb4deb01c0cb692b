package config

import "testing"

func TestGeneralConfigRateLimitKnobs(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("RATE_LIMIT_BURST", "9")

	gc := &GeneralConfig{}
	if err := gc.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if gc.RateLimitRPS != 5 || gc.RateLimitBurst != 9 {
		t.Errorf("rate limits = %d/%d, want 5/9", gc.RateLimitRPS, gc.RateLimitBurst)
	}
}

func TestGeneralConfigValidateRejectsZeroRateLimit(t *testing.T) {
	gc := &GeneralConfig{
		HTTPPort:       "8080",
		HTTPHost:       "localhost",
		Env:            "dev",
		RateLimitRPS:   0,
		RateLimitBurst: 20,
	}
	if err := gc.Validate(); err == nil {
		t.Error("zero rate limit should fail validation")
	}
}
