// Package ledgertest provides a configurable in-memory ledger.Client for
// tests. Every operation succeeds by default and records its request; tests
// override individual function fields to simulate failures.
package ledgertest

import (
	"context"
	"fmt"

	"daodeploy/internal/ledger"
)

// Client is a fake ledger.Client. Zero value is usable: every call succeeds
// and hands out sequential ids.
type Client struct {
	nextID int

	FileCreates     []ledger.FileCreate
	FileAppends     []ledger.FileAppend
	ContractCreates []ledger.ContractCreate
	ContractCalls   []ledger.ContractCall
	ContractQueries []ledger.ContractQuery
	TopicsCreated   int
	TokensCreated   []ledger.TokenCreate
	TokenKeyUpdates []string
	AccountsCreated int

	CreateFileFn     func(req ledger.FileCreate) (string, ledger.ReceiptStatus, error)
	AppendFileFn     func(req ledger.FileAppend) (ledger.ReceiptStatus, error)
	CreateContractFn func(req ledger.ContractCreate) (string, ledger.ReceiptStatus, error)
	CallContractFn   func(req ledger.ContractCall) (*ledger.ExecutionRecord, error)
	QueryContractFn  func(req ledger.ContractQuery) (*ledger.ExecutionRecord, error)
	CreateTopicFn    func() (string, ledger.ReceiptStatus, error)
	CreateTokenFn    func(req ledger.TokenCreate) (string, ledger.ReceiptStatus, error)
	BalanceFn        func(accountID string) (int64, error)
}

func (c *Client) id() string {
	c.nextID++
	return fmt.Sprintf("0.0.%d", 1000+c.nextID)
}

func (c *Client) CreateFile(ctx context.Context, req ledger.FileCreate) (string, ledger.ReceiptStatus, error) {
	c.FileCreates = append(c.FileCreates, req)
	if c.CreateFileFn != nil {
		return c.CreateFileFn(req)
	}
	return c.id(), ledger.StatusSuccess, nil
}

func (c *Client) AppendFile(ctx context.Context, req ledger.FileAppend) (ledger.ReceiptStatus, error) {
	c.FileAppends = append(c.FileAppends, req)
	if c.AppendFileFn != nil {
		return c.AppendFileFn(req)
	}
	return ledger.StatusSuccess, nil
}

func (c *Client) CreateContract(ctx context.Context, req ledger.ContractCreate) (string, ledger.ReceiptStatus, error) {
	c.ContractCreates = append(c.ContractCreates, req)
	if c.CreateContractFn != nil {
		return c.CreateContractFn(req)
	}
	return c.id(), ledger.StatusSuccess, nil
}

func (c *Client) CallContract(ctx context.Context, req ledger.ContractCall) (*ledger.ExecutionRecord, error) {
	c.ContractCalls = append(c.ContractCalls, req)
	if c.CallContractFn != nil {
		return c.CallContractFn(req)
	}
	return &ledger.ExecutionRecord{Status: ledger.StatusSuccess}, nil
}

func (c *Client) QueryContract(ctx context.Context, req ledger.ContractQuery) (*ledger.ExecutionRecord, error) {
	c.ContractQueries = append(c.ContractQueries, req)
	if c.QueryContractFn != nil {
		return c.QueryContractFn(req)
	}
	return &ledger.ExecutionRecord{Status: ledger.StatusSuccess}, nil
}

func (c *Client) CreateTopic(ctx context.Context) (string, ledger.ReceiptStatus, error) {
	c.TopicsCreated++
	if c.CreateTopicFn != nil {
		return c.CreateTopicFn()
	}
	return c.id(), ledger.StatusSuccess, nil
}

func (c *Client) CreateToken(ctx context.Context, req ledger.TokenCreate) (string, ledger.ReceiptStatus, error) {
	c.TokensCreated = append(c.TokensCreated, req)
	if c.CreateTokenFn != nil {
		return c.CreateTokenFn(req)
	}
	return c.id(), ledger.StatusSuccess, nil
}

func (c *Client) UpdateTokenSupplyKey(ctx context.Context, tokenID string) (ledger.ReceiptStatus, error) {
	c.TokenKeyUpdates = append(c.TokenKeyUpdates, tokenID)
	return ledger.StatusSuccess, nil
}

func (c *Client) CreateAccount(ctx context.Context) (string, ledger.ReceiptStatus, error) {
	c.AccountsCreated++
	return c.id(), ledger.StatusSuccess, nil
}

func (c *Client) AccountBalance(ctx context.Context, accountID string) (int64, error) {
	if c.BalanceFn != nil {
		return c.BalanceFn(accountID)
	}
	return 0, nil
}

func (c *Client) OperatorID() string {
	return "0.0.1001"
}
