// Package ledger defines the boundary to the distributed ledger: the
// operations the deployment pipeline needs, expressed as request structs and
// a narrow client interface. The production implementation lives in
// hedera.go; tests run against fakes from the ledgertest package.
package ledger

import (
	"context"
	"fmt"
)

// ReceiptStatus is the numeric status code carried by a transaction receipt.
// The ledger recognizes exactly one success value; everything else is a
// failure. Callers must compare through OK, never against raw literals.
type ReceiptStatus uint32

// StatusSuccess is the single receipt code that marks a finalized,
// successful transaction.
const StatusSuccess ReceiptStatus = 22

// OK reports whether the receipt marks a successful transaction
func (s ReceiptStatus) OK() bool {
	return s == StatusSuccess
}

func (s ReceiptStatus) String() string {
	if s == StatusSuccess {
		return "SUCCESS"
	}
	return fmt.Sprintf("status %d", uint32(s))
}

// Log is one event emitted during contract execution: opaque data plus the
// ordered topic list, with the signature hash still in slot 0.
type Log struct {
	Data   []byte
	Topics [][]byte
}

// ExecutionRecord is the finalized record of a contract call. A non-success
// Status is reported here rather than as an error, so callers can decide
// whether the failure aborts anything.
type ExecutionRecord struct {
	Status     ReceiptStatus
	CallResult []byte
	Logs       []Log
}

// FileCreate creates an empty remote file owned by the operator key. Both
// mutations are optional and independent; nil leaves the ledger default in
// place.
type FileCreate struct {
	Memo           *string
	ExpirationDays *int
}

// FileAppend appends contents to an existing file. MaxChunks must cover the
// number of chunks the ledger will actually produce or the append is
// rejected remotely.
type FileAppend struct {
	FileID    string
	Contents  []byte
	MaxChunks uint64
}

// ContractCreate instantiates a contract from uploaded bytecode. Every
// optional field is applied only when present. A non-empty AdminKey forces
// the transaction to be frozen and co-signed with that key before
// submission. ConstructorParams arrive already ABI-encoded.
type ContractCreate struct {
	FileID            string
	Gas               uint64
	InitialBalance    *int64
	AdminKey          string
	ProxyAccountID    string
	Memo              string
	ConstructorParams []byte
}

// ContractCall is a state-changing function invocation. ExtraSigners are
// applied in order to the frozen transaction, after the default operator
// signature arrangement and before submission.
type ContractCall struct {
	ContractID     string
	Params         []byte
	Gas            uint64
	PayableTinybar *int64
	ExtraSigners   []string
}

// ContractQuery is a read-only function invocation
type ContractQuery struct {
	ContractID string
	Params     []byte
	Gas        uint64
}

// TokenCreate creates a fungible token treasured by the operator
type TokenCreate struct {
	Name          string
	Symbol        string
	InitialSupply uint64
	Decimals      uint
}

// Client is the ledger boundary. Every method blocks until the submitted
// transaction's receipt ( or record ) is resolved; cancellation and timeouts
// are the SDK's concern, surfaced through ctx and the returned error.
type Client interface {
	CreateFile(ctx context.Context, req FileCreate) (fileID string, status ReceiptStatus, err error)
	AppendFile(ctx context.Context, req FileAppend) (ReceiptStatus, error)
	CreateContract(ctx context.Context, req ContractCreate) (contractID string, status ReceiptStatus, err error)
	CallContract(ctx context.Context, req ContractCall) (*ExecutionRecord, error)
	QueryContract(ctx context.Context, req ContractQuery) (*ExecutionRecord, error)
	CreateTopic(ctx context.Context) (topicID string, status ReceiptStatus, err error)
	CreateToken(ctx context.Context, req TokenCreate) (tokenID string, status ReceiptStatus, err error)
	UpdateTokenSupplyKey(ctx context.Context, tokenID string) (ReceiptStatus, error)
	CreateAccount(ctx context.Context) (accountID string, status ReceiptStatus, err error)
	AccountBalance(ctx context.Context, accountID string) (tinybar int64, err error)
	OperatorID() string
}
