package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"daodeploy/internal/ledger"
)

// defaultContractGas is the documented fallback when no gas limit is
// configured for contract instantiation
const defaultContractGas = 1_000_000

// InstantiationConfig carries the optional contract-create fields. Each one
// is applied to the transaction only when present; absent fields leave the
// ledger defaults untouched, so an empty config and an explicitly all-absent
// config build identical transactions.
type InstantiationConfig struct {
	Gas            uint64
	InitialBalance *int64
	AdminKey       string
	ProxyAccountID string
	Memo           string

	// ConstructorParams must already be ABI-encoded by the caller; the
	// instantiator does not know the argument types
	ConstructorParams []byte
}

// Instance is a deployed contract under both of its names: the canonical
// ledger id for later transactions, the EVM hex address for ABI arguments.
type Instance struct {
	ID         string
	EVMAddress string
}

// Instantiate creates a contract from an uploaded bytecode file. An admin
// key in the config forces a freeze-and-cosign with that key in addition to
// the operator's default signature. The contract id is only returned once
// the receipt reports success.
func Instantiate(ctx context.Context, client ledger.Client, fileID string, cfg InstantiationConfig) (*Instance, error) {
	gas := cfg.Gas
	if gas == 0 {
		gas = defaultContractGas
	}

	contractID, status, err := client.CreateContract(ctx, ledger.ContractCreate{
		FileID:            fileID,
		Gas:               gas,
		InitialBalance:    cfg.InitialBalance,
		AdminKey:          cfg.AdminKey,
		ProxyAccountID:    cfg.ProxyAccountID,
		Memo:              cfg.Memo,
		ConstructorParams: cfg.ConstructorParams,
	})
	if err != nil {
		return nil, fmt.Errorf("contract-create: %w", err)
	}
	if !status.OK() || contractID == "" {
		return nil, &ResourceCreationError{Step: "contract-create", Status: status}
	}

	address, err := ledger.ToEVMAddress(contractID)
	if err != nil {
		return nil, fmt.Errorf("contract-create returned unusable id %q: %w", contractID, err)
	}

	slog.Info("✅ Contract instantiated", "contract_id", contractID, "address", address)
	return &Instance{ID: contractID, EVMAddress: address}, nil
}
