package deploy

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"daodeploy/internal/ledger"
	"daodeploy/internal/ledger/ledgertest"
)

func TestInstantiate(t *testing.T) {
	client := &ledgertest.Client{}

	inst, err := Instantiate(context.Background(), client, "0.0.2001", InstantiationConfig{Gas: 500_000})
	if err != nil {
		t.Fatalf("Instantiate failed: %v", err)
	}
	if inst.ID == "" {
		t.Fatal("instance has no contract id")
	}

	addr, err := ledger.ToEVMAddress(inst.ID)
	if err != nil {
		t.Fatalf("instance id %q does not convert: %v", inst.ID, err)
	}
	if inst.EVMAddress != addr {
		t.Errorf("instance address = %q, want %q", inst.EVMAddress, addr)
	}

	req := client.ContractCreates[0]
	if req.FileID != "0.0.2001" {
		t.Errorf("create file id = %q, want %q", req.FileID, "0.0.2001")
	}
	if req.Gas != 500_000 {
		t.Errorf("create gas = %d, want 500000", req.Gas)
	}
}

func TestInstantiateGasFallback(t *testing.T) {
	client := &ledgertest.Client{}

	if _, err := Instantiate(context.Background(), client, "0.0.2001", InstantiationConfig{}); err != nil {
		t.Fatalf("Instantiate failed: %v", err)
	}
	if got := client.ContractCreates[0].Gas; got != 1_000_000 {
		t.Errorf("fallback gas = %d, want 1000000", got)
	}
}

// An empty config and a config with every optional field explicitly absent
// must build identical requests.
func TestInstantiateEmptyConfigEquivalence(t *testing.T) {
	clientA := &ledgertest.Client{}
	clientB := &ledgertest.Client{}

	if _, err := Instantiate(context.Background(), clientA, "0.0.2001", InstantiationConfig{}); err != nil {
		t.Fatalf("Instantiate with empty config failed: %v", err)
	}
	explicit := InstantiationConfig{
		Gas:               0,
		InitialBalance:    nil,
		AdminKey:          "",
		ProxyAccountID:    "",
		Memo:              "",
		ConstructorParams: nil,
	}
	if _, err := Instantiate(context.Background(), clientB, "0.0.2001", explicit); err != nil {
		t.Fatalf("Instantiate with all-absent config failed: %v", err)
	}

	if !reflect.DeepEqual(clientA.ContractCreates[0], clientB.ContractCreates[0]) {
		t.Errorf("requests differ:\n  empty:  %+v\n  absent: %+v",
			clientA.ContractCreates[0], clientB.ContractCreates[0])
	}
}

func TestInstantiateOptionalFieldsApplied(t *testing.T) {
	client := &ledgertest.Client{}
	balance := int64(5_000_000)

	cfg := InstantiationConfig{
		Gas:            200_000,
		InitialBalance: &balance,
		AdminKey:       "302e020100300506032b657004220420aa",
		ProxyAccountID: "0.0.9001",
		Memo:           "factory",
	}
	if _, err := Instantiate(context.Background(), client, "0.0.2001", cfg); err != nil {
		t.Fatalf("Instantiate failed: %v", err)
	}

	req := client.ContractCreates[0]
	if req.InitialBalance == nil || *req.InitialBalance != balance {
		t.Errorf("initial balance = %v, want %d", req.InitialBalance, balance)
	}
	if req.AdminKey != cfg.AdminKey {
		t.Errorf("admin key = %q, want %q", req.AdminKey, cfg.AdminKey)
	}
	if req.ProxyAccountID != cfg.ProxyAccountID {
		t.Errorf("proxy account = %q, want %q", req.ProxyAccountID, cfg.ProxyAccountID)
	}
	if req.Memo != cfg.Memo {
		t.Errorf("memo = %q, want %q", req.Memo, cfg.Memo)
	}
}

func TestInstantiateFailureStatus(t *testing.T) {
	client := &ledgertest.Client{
		CreateContractFn: func(req ledger.ContractCreate) (string, ledger.ReceiptStatus, error) {
			return "", ledger.ReceiptStatus(21), nil
		},
	}

	_, err := Instantiate(context.Background(), client, "0.0.2001", InstantiationConfig{})
	var resErr *ResourceCreationError
	if !errors.As(err, &resErr) {
		t.Fatalf("error = %v, want *ResourceCreationError", err)
	}
	if resErr.Step != "contract-create" {
		t.Errorf("failed step = %q, want %q", resErr.Step, "contract-create")
	}
}
