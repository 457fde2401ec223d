// Package contract submits generic function calls against deployed
// contracts: encode through the ABI codec, execute through the ledger
// client, hand the finalized record back to the caller.
package contract

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"

	"daodeploy/internal/abi"
	"daodeploy/internal/ledger"
	"daodeploy/internal/metrics"
)

// queryFallbackGas is the documented default for read-only queries. It never
// applies to state-changing calls; those must carry an explicit gas limit.
const queryFallbackGas = 100_000

// CallPlan fully determines one contract invocation. Built per call, never
// reused.
type CallPlan struct {
	ContractID string
	Doc        *abi.Document
	Function   string
	Args       []any

	// Gas is mandatory for state-changing calls
	Gas uint64

	// PayableTinybar attaches a native-asset payment when set
	PayableTinybar *int64

	// Signers are additional private keys applied, in order, to the frozen
	// transaction beyond the default operator signature
	Signers []string
}

// Submit executes a state-changing call and returns its finalized record.
// A non-success receipt status is not an error here: the record is returned
// as-is so batch callers can log and continue. Errors are reserved for
// encoding problems and transport failures.
func Submit(ctx context.Context, client ledger.Client, plan CallPlan) (*ledger.ExecutionRecord, error) {
	if plan.Gas == 0 {
		return nil, fmt.Errorf("call %q: a gas limit is required for state-changing calls", plan.Function)
	}

	params, err := abi.Encode(plan.Doc, plan.Function, plan.Args)
	if err != nil {
		return nil, err
	}

	slog.Debug("Submitting contract call",
		"contract", plan.ContractID,
		"function", plan.Function,
		"gas", plan.Gas,
	)
	metrics.SubmissionsTotal.WithLabelValues(plan.Function).Inc()

	record, err := client.CallContract(ctx, ledger.ContractCall{
		ContractID:     plan.ContractID,
		Params:         params,
		Gas:            plan.Gas,
		PayableTinybar: plan.PayableTinybar,
		ExtraSigners:   plan.Signers,
	})
	if err != nil {
		metrics.SubmissionFailures.WithLabelValues(plan.Function).Inc()
		return nil, fmt.Errorf("call %q failed: %w", plan.Function, err)
	}
	if !record.Status.OK() {
		metrics.SubmissionFailures.WithLabelValues(plan.Function).Inc()
	}
	return record, nil
}

// Query runs a read-only call. Gas falls back to a fixed documented value
// when the plan leaves it unset; reads are free to use it because they never
// change ledger state.
func Query(ctx context.Context, client ledger.Client, plan CallPlan) (*ledger.ExecutionRecord, error) {
	gas := plan.Gas
	if gas == 0 {
		gas = queryFallbackGas
	}

	params, err := abi.Encode(plan.Doc, plan.Function, plan.Args)
	if err != nil {
		return nil, err
	}

	record, err := client.QueryContract(ctx, ledger.ContractQuery{
		ContractID: plan.ContractID,
		Params:     params,
		Gas:        gas,
	})
	if err != nil {
		return nil, fmt.Errorf("query %q failed: %w", plan.Function, err)
	}
	return record, nil
}

// AddressWord reads the 32-byte word at the given index of a call result and
// returns its low 20 bytes as bare hex, the way factory create functions
// return the address of the contract they deployed.
func AddressWord(result []byte, index int) (string, error) {
	word, err := word(result, index)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(word[12:32]), nil
}

// Uint256Word reads the 32-byte word at the given index as an unsigned
// integer.
func Uint256Word(result []byte, index int) (*big.Int, error) {
	word, err := word(result, index)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(word), nil
}

func word(result []byte, index int) ([]byte, error) {
	start := index * 32
	if len(result) < start+32 {
		return nil, fmt.Errorf("call result has no word %d (%d bytes)", index, len(result))
	}
	return result[start : start+32], nil
}
