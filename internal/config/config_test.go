package config

import "testing"

func validConfig() *Config {
	return &Config{
		Network:     "testnet",
		OperatorID:  "0.0.1001",
		OperatorKey: "302e020100300506032b657004220420aa",
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing operator id", func(c *Config) { c.OperatorID = "" }},
		{"missing operator key", func(c *Config) { c.OperatorKey = "" }},
		{"missing network", func(c *Config) { c.Network = "" }},
		{"unknown network", func(c *Config) { c.Network = "devnet" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

// The resume pair must be set together or not at all; half of it would
// silently redeploy the factory.
func TestValidateResumePair(t *testing.T) {
	cfg := validConfig()
	cfg.FactoryID = "0.0.5005"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for FACTORY_ID without FACTORY_ADDRESS")
	}

	cfg = validConfig()
	cfg.FactoryAddress = "000000000000000000000000000000000000138d"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for FACTORY_ADDRESS without FACTORY_ID")
	}

	cfg = validConfig()
	cfg.FactoryID = "0.0.5005"
	cfg.FactoryAddress = "000000000000000000000000000000000000138d"
	if err := cfg.Validate(); err != nil {
		t.Errorf("complete resume pair rejected: %v", err)
	}
}

func TestLoadParsesLists(t *testing.T) {
	t.Setenv("NETWORK", "Testnet")
	t.Setenv("OPERATOR_ID", `"0.0.1001"`)
	t.Setenv("OPERATOR_PVKEY", "key")
	t.Setenv("CONTRACT_GAS", "2000000")
	t.Setenv("TIER_SUPPLIES", "100, 10,1")
	t.Setenv("USER_IDS", "0.0.5001, 0.0.5002,")
	t.Setenv("EXPIRATION_DAYS", "30")

	cfg := Load()

	if cfg.Network != "testnet" {
		t.Errorf("network = %q, want lowercased %q", cfg.Network, "testnet")
	}
	if cfg.OperatorID != "0.0.1001" {
		t.Errorf("operator id = %q, want quotes stripped", cfg.OperatorID)
	}
	if cfg.Gas != 2_000_000 {
		t.Errorf("gas = %d, want 2000000", cfg.Gas)
	}
	if len(cfg.TierSupplies) != 3 || cfg.TierSupplies[0] != 100 || cfg.TierSupplies[2] != 1 {
		t.Errorf("tier supplies = %v, want [100 10 1]", cfg.TierSupplies)
	}
	if len(cfg.UserIDs) != 2 || cfg.UserIDs[1] != "0.0.5002" {
		t.Errorf("user ids = %v, want [0.0.5001 0.0.5002]", cfg.UserIDs)
	}
	if cfg.ExpirationDays == nil || *cfg.ExpirationDays != 30 {
		t.Errorf("expiration days = %v, want 30", cfg.ExpirationDays)
	}
}
