package dao

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"daodeploy/internal/abi"
	"daodeploy/internal/ledger"
	"daodeploy/internal/ledger/ledgertest"
)

const daoABI = `[
	{
		"name": "addUser",
		"type": "function",
		"inputs": [
			{"name": "users", "type": "address[]"},
			{"name": "access", "type": "uint8"}
		],
		"outputs": []
	},
	{
		"name": "removeUser",
		"type": "function",
		"inputs": [{"name": "users", "type": "address[]"}],
		"outputs": []
	},
	{
		"name": "removeOfficer",
		"type": "function",
		"inputs": [{"name": "officer", "type": "address"}],
		"outputs": []
	},
	{
		"name": "setMaxUsers",
		"type": "function",
		"inputs": [{"name": "max", "type": "uint256"}],
		"outputs": []
	},
	{
		"name": "deposit",
		"type": "function",
		"inputs": [],
		"outputs": []
	},
	{
		"name": "transferHbar",
		"type": "function",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"name": "getUser",
		"type": "function",
		"inputs": [{"name": "user", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "getMaxUsers",
		"type": "function",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "getBalance",
		"type": "function",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`

func testDAO(t *testing.T, client ledger.Client) *DAO {
	t.Helper()
	doc, err := abi.Parse([]byte(daoABI))
	if err != nil {
		t.Fatalf("failed to parse DAO ABI: %v", err)
	}
	return New(client, doc, "0.0.4001", 200_000)
}

// uintWord builds a single-word call result holding a small integer
func uintWord(v byte) []byte {
	word := make([]byte, 32)
	word[31] = v
	return word
}

func TestGrantAccess(t *testing.T) {
	client := &ledgertest.Client{}
	d := testDAO(t, client)

	if err := d.GrantAccess(context.Background(), []string{"0.0.5001", "0.0.5002"}, AccessMember); err != nil {
		t.Fatalf("GrantAccess failed: %v", err)
	}
	if len(client.ContractCalls) != 1 {
		t.Fatalf("contract calls = %d, want 1", len(client.ContractCalls))
	}
	if client.ContractCalls[0].ContractID != "0.0.4001" {
		t.Errorf("contract id = %q, want %q", client.ContractCalls[0].ContractID, "0.0.4001")
	}
}

func TestGrantAccessRejectsBadAccount(t *testing.T) {
	client := &ledgertest.Client{}
	d := testDAO(t, client)

	if err := d.GrantAccess(context.Background(), []string{"not-an-id"}, AccessMember); err == nil {
		t.Fatal("expected an error for a malformed account id")
	}
	if len(client.ContractCalls) != 0 {
		t.Errorf("contract calls = %d, want 0", len(client.ContractCalls))
	}
}

func TestGrantAccessNonSuccessReceipt(t *testing.T) {
	client := &ledgertest.Client{
		CallContractFn: func(req ledger.ContractCall) (*ledger.ExecutionRecord, error) {
			return &ledger.ExecutionRecord{Status: ledger.ReceiptStatus(21)}, nil
		},
	}
	d := testDAO(t, client)

	if err := d.GrantAccess(context.Background(), []string{"0.0.5001"}, AccessMember); err == nil {
		t.Fatal("expected an error for a non-success receipt")
	}
}

// One failed grant must not stop the rest of the batch.
func TestBulkGrantContinuesPastFailure(t *testing.T) {
	calls := 0
	client := &ledgertest.Client{}
	client.CallContractFn = func(req ledger.ContractCall) (*ledger.ExecutionRecord, error) {
		calls++
		if calls == 2 {
			return nil, fmt.Errorf("network glitch")
		}
		return &ledger.ExecutionRecord{Status: ledger.StatusSuccess}, nil
	}
	d := testDAO(t, client)

	granted := d.BulkGrant(context.Background(), []string{"0.0.5001", "0.0.5002", "0.0.5003"}, AccessMember)
	if granted != 2 {
		t.Errorf("granted = %d, want 2", granted)
	}
	if calls != 3 {
		t.Errorf("attempted calls = %d, want 3", calls)
	}
}

func TestRemoveAccess(t *testing.T) {
	client := &ledgertest.Client{}
	d := testDAO(t, client)

	if err := d.RemoveAccess(context.Background(), []string{"0.0.5001"}); err != nil {
		t.Fatalf("RemoveAccess failed: %v", err)
	}
	if len(client.ContractCalls) != 1 {
		t.Errorf("contract calls = %d, want 1", len(client.ContractCalls))
	}
}

func TestDepositIsPayable(t *testing.T) {
	client := &ledgertest.Client{}
	d := testDAO(t, client)

	if err := d.Deposit(context.Background(), 100_000_000); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	req := client.ContractCalls[0]
	if req.PayableTinybar == nil || *req.PayableTinybar != 100_000_000 {
		t.Errorf("payable = %v, want 100000000", req.PayableTinybar)
	}
}

func TestUserAccess(t *testing.T) {
	client := &ledgertest.Client{
		QueryContractFn: func(req ledger.ContractQuery) (*ledger.ExecutionRecord, error) {
			return &ledger.ExecutionRecord{
				Status:     ledger.StatusSuccess,
				CallResult: uintWord(3),
			}, nil
		},
	}
	d := testDAO(t, client)

	access, err := d.UserAccess(context.Background(), "0.0.5001")
	if err != nil {
		t.Fatalf("UserAccess failed: %v", err)
	}
	if access != AccessOfficer {
		t.Errorf("access = %s, want %s", access, AccessOfficer)
	}
}

func TestMaxUsers(t *testing.T) {
	client := &ledgertest.Client{
		QueryContractFn: func(req ledger.ContractQuery) (*ledger.ExecutionRecord, error) {
			return &ledger.ExecutionRecord{
				Status:     ledger.StatusSuccess,
				CallResult: uintWord(25),
			}, nil
		},
	}
	d := testDAO(t, client)

	n, err := d.MaxUsers(context.Background())
	if err != nil {
		t.Fatalf("MaxUsers failed: %v", err)
	}
	if n != 25 {
		t.Errorf("max users = %d, want 25", n)
	}
}

func TestBalance(t *testing.T) {
	client := &ledgertest.Client{
		QueryContractFn: func(req ledger.ContractQuery) (*ledger.ExecutionRecord, error) {
			return &ledger.ExecutionRecord{
				Status:     ledger.StatusSuccess,
				CallResult: uintWord(200),
			}, nil
		},
	}
	d := testDAO(t, client)

	balance, err := d.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance.Cmp(big.NewInt(200)) != 0 {
		t.Errorf("balance = %s, want 200", balance)
	}
}

func TestAccessTypeString(t *testing.T) {
	tests := []struct {
		access AccessType
		want   string
	}{
		{AccessNone, "none"},
		{AccessMember, "member"},
		{AccessAdmin, "admin"},
		{AccessOfficer, "officer"},
	}
	for _, tt := range tests {
		if got := tt.access.String(); got != tt.want {
			t.Errorf("AccessType(%d).String() = %q, want %q", int(tt.access), got, tt.want)
		}
	}
}
