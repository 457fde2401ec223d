// Package dao drives role-based access control and treasury operations
// against a deployed DAO contract. These are business calls, not resource
// creation: failures are logged and reported to the immediate caller, and a
// failure in one call never aborts unrelated sibling operations. Callers
// that need all-or-nothing semantics must wrap the calls themselves.
package dao

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"

	"daodeploy/internal/abi"
	"daodeploy/internal/contract"
	"daodeploy/internal/ledger"
)

// AccessType is the access tier granted to a DAO user
type AccessType int

const (
	AccessNone AccessType = iota
	AccessMember
	AccessAdmin
	AccessOfficer
)

func (a AccessType) String() string {
	switch a {
	case AccessNone:
		return "none"
	case AccessMember:
		return "member"
	case AccessAdmin:
		return "admin"
	case AccessOfficer:
		return "officer"
	}
	return fmt.Sprintf("access(%d)", int(a))
}

// DAO is a handle on one deployed DAO contract ( usually the proxy )
type DAO struct {
	client     ledger.Client
	doc        *abi.Document
	contractID string
	gas        uint64
}

// New builds a DAO handle. The gas limit applies to every state-changing
// call made through it.
func New(client ledger.Client, doc *abi.Document, contractID string, gas uint64) *DAO {
	return &DAO{
		client:     client,
		doc:        doc,
		contractID: contractID,
		gas:        gas,
	}
}

// GrantAccess adds the given accounts as DAO users at one access tier.
// Officers may grant any tier, admins may grant members.
func (d *DAO) GrantAccess(ctx context.Context, accountIDs []string, access AccessType) error {
	addresses, err := evmAddresses(accountIDs)
	if err != nil {
		return d.reportFailure("grant access", err)
	}

	slog.Info("⏱ Granting access...", "accounts", len(accountIDs), "access", access.String())
	record, err := contract.Submit(ctx, d.client, contract.CallPlan{
		ContractID: d.contractID,
		Doc:        d.doc,
		Function:   "addUser",
		Args:       []any{addresses, strconv.Itoa(int(access))},
		Gas:        d.gas,
	})
	if err := callOutcome(record, err); err != nil {
		return d.reportFailure("grant access", err)
	}
	return nil
}

// BulkGrant grants access account by account and returns how many grants
// succeeded. One failed grant never stops the rest of the loop.
func (d *DAO) BulkGrant(ctx context.Context, accountIDs []string, access AccessType) int {
	granted := 0
	for _, id := range accountIDs {
		if err := d.GrantAccess(ctx, []string{id}, access); err != nil {
			continue
		}
		granted++
	}
	slog.Info("Bulk grant finished", "granted", granted, "requested", len(accountIDs))
	return granted
}

// RemoveAccess removes the given accounts as DAO users
func (d *DAO) RemoveAccess(ctx context.Context, accountIDs []string) error {
	addresses, err := evmAddresses(accountIDs)
	if err != nil {
		return d.reportFailure("remove access", err)
	}

	slog.Info("⏱ Removing access...", "accounts", len(accountIDs))
	record, err := contract.Submit(ctx, d.client, contract.CallPlan{
		ContractID: d.contractID,
		Doc:        d.doc,
		Function:   "removeUser",
		Args:       []any{addresses},
		Gas:        d.gas,
	})
	if err := callOutcome(record, err); err != nil {
		return d.reportFailure("remove access", err)
	}
	return nil
}

// RemoveOfficer strips officer access from one account; only the owner may
// do this
func (d *DAO) RemoveOfficer(ctx context.Context, officerID string) error {
	address, err := ledger.ToEVMAddress(officerID)
	if err != nil {
		return d.reportFailure("remove officer", err)
	}

	record, err := contract.Submit(ctx, d.client, contract.CallPlan{
		ContractID: d.contractID,
		Doc:        d.doc,
		Function:   "removeOfficer",
		Args:       []any{"0x" + address},
		Gas:        d.gas,
	})
	if err := callOutcome(record, err); err != nil {
		return d.reportFailure("remove officer", err)
	}
	return nil
}

// SetMaxUsers updates the DAO's user cap; owner only
func (d *DAO) SetMaxUsers(ctx context.Context, maxUsers uint64) error {
	record, err := contract.Submit(ctx, d.client, contract.CallPlan{
		ContractID: d.contractID,
		Doc:        d.doc,
		Function:   "setMaxUsers",
		Args:       []any{strconv.FormatUint(maxUsers, 10)},
		Gas:        d.gas,
	})
	if err := callOutcome(record, err); err != nil {
		return d.reportFailure("set max users", err)
	}
	return nil
}

// Deposit pays native currency into the DAO treasury
func (d *DAO) Deposit(ctx context.Context, tinybar int64) error {
	record, err := contract.Submit(ctx, d.client, contract.CallPlan{
		ContractID:     d.contractID,
		Doc:            d.doc,
		Function:       "deposit",
		Args:           []any{},
		Gas:            d.gas,
		PayableTinybar: &tinybar,
	})
	if err := callOutcome(record, err); err != nil {
		return d.reportFailure("deposit", err)
	}
	return nil
}

// TransferHbar moves native currency from the DAO treasury to an account;
// officers only
func (d *DAO) TransferHbar(ctx context.Context, toAccountID string, tinybar int64) error {
	address, err := ledger.ToEVMAddress(toAccountID)
	if err != nil {
		return d.reportFailure("transfer", err)
	}

	record, err := contract.Submit(ctx, d.client, contract.CallPlan{
		ContractID: d.contractID,
		Doc:        d.doc,
		Function:   "transferHbar",
		Args:       []any{"0x" + address, strconv.FormatInt(tinybar, 10)},
		Gas:        d.gas,
	})
	if err := callOutcome(record, err); err != nil {
		return d.reportFailure("transfer", err)
	}
	return nil
}

// UserAccess queries one account's access tier
func (d *DAO) UserAccess(ctx context.Context, accountID string) (AccessType, error) {
	address, err := ledger.ToEVMAddress(accountID)
	if err != nil {
		return AccessNone, d.reportFailure("get user access", err)
	}

	record, err := contract.Query(ctx, d.client, contract.CallPlan{
		ContractID: d.contractID,
		Doc:        d.doc,
		Function:   "getUser",
		Args:       []any{"0x" + address},
	})
	if err != nil {
		return AccessNone, d.reportFailure("get user access", err)
	}

	tier, err := firstUint(d.doc, "getUser", record.CallResult)
	if err != nil {
		return AccessNone, d.reportFailure("get user access", err)
	}
	return AccessType(tier.Int64()), nil
}

// MaxUsers queries the DAO's user cap
func (d *DAO) MaxUsers(ctx context.Context) (uint64, error) {
	record, err := contract.Query(ctx, d.client, contract.CallPlan{
		ContractID: d.contractID,
		Doc:        d.doc,
		Function:   "getMaxUsers",
		Args:       []any{},
	})
	if err != nil {
		return 0, d.reportFailure("get max users", err)
	}
	n, err := firstUint(d.doc, "getMaxUsers", record.CallResult)
	if err != nil {
		return 0, d.reportFailure("get max users", err)
	}
	return n.Uint64(), nil
}

// Balance queries the DAO treasury balance in tinybar
func (d *DAO) Balance(ctx context.Context) (*big.Int, error) {
	record, err := contract.Query(ctx, d.client, contract.CallPlan{
		ContractID: d.contractID,
		Doc:        d.doc,
		Function:   "getBalance",
		Args:       []any{},
	})
	if err != nil {
		return nil, d.reportFailure("get balance", err)
	}
	balance, err := firstUint(d.doc, "getBalance", record.CallResult)
	if err != nil {
		return nil, d.reportFailure("get balance", err)
	}
	return balance, nil
}

// AccessReport logs the access tier of each account, continuing past
// individual failures
func (d *DAO) AccessReport(ctx context.Context, accountIDs map[string]string) {
	for name, id := range accountIDs {
		if id == "" {
			continue
		}
		access, err := d.UserAccess(ctx, id)
		if err != nil {
			continue
		}
		slog.Info("User access", "user", name, "account", id, "access", access.String())
	}
}

// reportFailure logs a business-call failure in a clearly marked way and
// hands the error back without aborting anything else
func (d *DAO) reportFailure(operation string, err error) error {
	slog.Error(fmt.Sprintf("❌ %s failed", operation), "contract", d.contractID, "error", err)
	return fmt.Errorf("%s failed: %w", operation, err)
}

// callOutcome collapses the (record, err) pair of a submission into a single
// business-level error: transport failures, nil records, and non-success
// receipts all count as failures here.
func callOutcome(record *ledger.ExecutionRecord, err error) error {
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no execution record returned")
	}
	if !record.Status.OK() {
		return fmt.Errorf("receipt reported %s", record.Status)
	}
	return nil
}

func evmAddresses(accountIDs []string) ([]string, error) {
	out := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		address, err := ledger.ToEVMAddress(id)
		if err != nil {
			return nil, err
		}
		out[i] = "0x" + address
	}
	return out, nil
}

func firstUint(doc *abi.Document, function string, result []byte) (*big.Int, error) {
	decoded, err := abi.DecodeReturn(doc, function, result)
	if err != nil {
		return nil, err
	}
	for _, v := range decoded {
		switch n := v.(type) {
		case *big.Int:
			return n, nil
		case uint8:
			return big.NewInt(int64(n)), nil
		case uint32:
			return big.NewInt(int64(n)), nil
		case uint64:
			return new(big.Int).SetUint64(n), nil
		}
	}
	return nil, fmt.Errorf("query %q returned no integer value", function)
}
