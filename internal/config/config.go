package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds everything the deployer reads from the environment. It is
// loaded once in main; no other package touches process env state.
type Config struct {
	// Network selects the target ledger network ( testnet or mainnet )
	Network string

	// Operator identity used as the default transaction signer
	OperatorID  string
	OperatorKey string

	// Gas limit for state-changing contract calls
	Gas uint64

	// Factory contract artifacts
	FactoryBinPath string
	FactoryABIPath string

	// Pre-deployed factory, for resuming a run without re-uploading.
	// Both fields must be set together or not at all.
	FactoryID      string
	FactoryAddress string

	// Already-deployed contracts for the operational subcommands
	ImplementationID      string
	ImplementationABIPath string
	ProxyID               string
	ProxyABIPath          string

	// DAO parameters
	DAOName      string
	DAOSymbol    string
	TierSupplies []uint64

	// Optional file-create mutations
	FileMemo       string
	ExpirationDays *int

	// Optional contract-create mutations
	InitialBalance *int64
	AdminKey       string
	ProxyAccountID string
	ContractMemo   string

	// Test accounts used by the operational subcommands
	AliceID  string
	AliceKey string
	BobID    string
	SallyID  string

	// Bulk user-creation input: comma-separated account ids, or a count of
	// fresh accounts to create when no ids are given
	UserIDs   []string
	UserCount int

	// Optional deployment registry ( empty disables it )
	DatabaseURL string

	// Optional Prometheus endpoint ( empty disables it )
	MetricsAddr string

	LogLevel string
}

// Load reads the configuration from the environment
func Load() *Config {
	cfg := &Config{
		Network:               strings.ToLower(os.Getenv("NETWORK")),
		OperatorID:            strings.Trim(os.Getenv("OPERATOR_ID"), `"`),
		OperatorKey:           strings.Trim(os.Getenv("OPERATOR_PVKEY"), `"`),
		FactoryBinPath:        os.Getenv("FACTORY_BIN"),
		FactoryABIPath:        os.Getenv("FACTORY_ABI"),
		FactoryID:             os.Getenv("FACTORY_ID"),
		FactoryAddress:        os.Getenv("FACTORY_ADDRESS"),
		ImplementationID:      os.Getenv("IMP_ID"),
		ImplementationABIPath: os.Getenv("IMP_ABI"),
		ProxyID:               os.Getenv("PROXY_ID"),
		ProxyABIPath:          os.Getenv("PROXY_ABI"),
		DAOName:               os.Getenv("PROXY_NAME"),
		DAOSymbol:             os.Getenv("PROXY_SYMBOL"),
		FileMemo:              os.Getenv("FILE_MEMO"),
		AdminKey:              os.Getenv("ADMIN_KEY"),
		ProxyAccountID:        os.Getenv("PROXY_ACCOUNT_ID"),
		ContractMemo:          os.Getenv("CONTRACT_MEMO"),
		AliceID:               os.Getenv("TRANSFER_TEST_ID"),
		AliceKey:              os.Getenv("TRANSFER_TEST_PVKEY"),
		BobID:                 os.Getenv("BOB_ID"),
		SallyID:               os.Getenv("SALLY_ID"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		MetricsAddr:           os.Getenv("METRICS_ADDR"),
		LogLevel:              os.Getenv("LOG_LEVEL"),
	}

	if v := os.Getenv("CONTRACT_GAS"); v != "" {
		if gas, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Gas = gas
		}
	}
	if v := os.Getenv("EXPIRATION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.ExpirationDays = &days
		}
	}
	if v := os.Getenv("INITIAL_HBAR_BALANCE"); v != "" {
		if balance, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.InitialBalance = &balance
		}
	}
	if v := os.Getenv("TIER_SUPPLIES"); v != "" {
		for _, part := range strings.Split(v, ",") {
			supply, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				continue
			}
			cfg.TierSupplies = append(cfg.TierSupplies, supply)
		}
	}
	if v := os.Getenv("USER_COUNT"); v != "" {
		if count, err := strconv.Atoi(v); err == nil {
			cfg.UserCount = count
		}
	}
	if v := os.Getenv("USER_IDS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			if id := strings.TrimSpace(part); id != "" {
				cfg.UserIDs = append(cfg.UserIDs, id)
			}
		}
	}

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OperatorID == "" {
		return fmt.Errorf("OPERATOR_ID is required")
	}
	if c.OperatorKey == "" {
		return fmt.Errorf("OPERATOR_PVKEY is required")
	}
	if c.Network != "testnet" && c.Network != "mainnet" {
		return fmt.Errorf("NETWORK must be either testnet or mainnet, got %q", c.Network)
	}
	// Resuming with only half the factory identity would silently redeploy,
	// so require the pair together.
	if (c.FactoryID == "") != (c.FactoryAddress == "") {
		return fmt.Errorf("FACTORY_ID and FACTORY_ADDRESS must be set together")
	}
	return nil
}
