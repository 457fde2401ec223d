package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// ClientConfig identifies the network and the default operator signer
type ClientConfig struct {
	Network     string // testnet or mainnet
	OperatorID  string
	OperatorKey string
}

// HederaClient implements the Client interface against the Hedera SDK.
// Every transaction follows the same ordering: build, apply optional
// mutations, freeze, apply signatures, execute, await the receipt or record.
type HederaClient struct {
	inner       *hedera.Client
	operatorID  hedera.AccountID
	operatorKey hedera.PrivateKey
}

// NewHederaClient builds a client for the configured network with the
// operator identity attached
func NewHederaClient(cfg ClientConfig) (*HederaClient, error) {
	operatorID, err := hedera.AccountIDFromString(cfg.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid operator id: %w", err)
	}
	operatorKey, err := hedera.PrivateKeyFromString(cfg.OperatorKey)
	if err != nil {
		return nil, fmt.Errorf("invalid operator key: %w", err)
	}

	var inner *hedera.Client
	switch cfg.Network {
	case "testnet":
		inner = hedera.ClientForTestnet()
	case "mainnet":
		inner = hedera.ClientForMainnet()
	default:
		return nil, fmt.Errorf("unknown network %q, want testnet or mainnet", cfg.Network)
	}
	inner.SetOperator(operatorID, operatorKey)

	return &HederaClient{
		inner:       inner,
		operatorID:  operatorID,
		operatorKey: operatorKey,
	}, nil
}

// OperatorID returns the canonical id of the default signer
func (c *HederaClient) OperatorID() string {
	return c.operatorID.String()
}

// Close releases the underlying network channels
func (c *HederaClient) Close() error {
	return c.inner.Close()
}

// CreateFile creates an empty file keyed to the operator. The optional memo
// and expiration mutations are independent; application order does not
// affect the frozen transaction.
func (c *HederaClient) CreateFile(ctx context.Context, req FileCreate) (string, ReceiptStatus, error) {
	tx := hedera.NewFileCreateTransaction().SetKeys(c.operatorKey.PublicKey())
	if req.Memo != nil {
		tx.SetMemo(*req.Memo)
	}
	if req.ExpirationDays != nil {
		tx.SetExpirationTime(time.Now().Add(time.Duration(*req.ExpirationDays) * 24 * time.Hour))
	}

	frozen, err := tx.FreezeWith(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to freeze file create: %w", err)
	}
	frozen.Sign(c.operatorKey)

	resp, err := frozen.Execute(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to execute file create: %w", err)
	}
	receipt, err := resp.GetReceipt(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch file create receipt: %w", err)
	}

	var fileID string
	if receipt.FileID != nil {
		fileID = receipt.FileID.String()
	}
	return fileID, ReceiptStatus(receipt.Status), nil
}

// AppendFile appends the full contents to an existing file. The SDK chunks
// internally; MaxChunks caps how many chunks it may produce.
func (c *HederaClient) AppendFile(ctx context.Context, req FileAppend) (ReceiptStatus, error) {
	fileID, err := hedera.FileIDFromString(req.FileID)
	if err != nil {
		return 0, fmt.Errorf("invalid file id %q: %w", req.FileID, err)
	}

	frozen, err := hedera.NewFileAppendTransaction().
		SetFileID(fileID).
		SetContents(req.Contents).
		SetMaxChunks(req.MaxChunks).
		FreezeWith(c.inner)
	if err != nil {
		return 0, fmt.Errorf("failed to freeze file append: %w", err)
	}
	frozen.Sign(c.operatorKey)

	resp, err := frozen.Execute(c.inner)
	if err != nil {
		return 0, fmt.Errorf("failed to execute file append: %w", err)
	}
	receipt, err := resp.GetReceipt(c.inner)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch file append receipt: %w", err)
	}
	return ReceiptStatus(receipt.Status), nil
}

// CreateContract instantiates a contract from an uploaded bytecode file.
// Optional fields are applied only when present so absent values keep the
// ledger defaults. An admin key forces a freeze-and-cosign before execution;
// without one the SDK freezes and signs with the operator on execute.
func (c *HederaClient) CreateContract(ctx context.Context, req ContractCreate) (string, ReceiptStatus, error) {
	fileID, err := hedera.FileIDFromString(req.FileID)
	if err != nil {
		return "", 0, fmt.Errorf("invalid bytecode file id %q: %w", req.FileID, err)
	}

	tx := hedera.NewContractCreateTransaction().
		SetBytecodeFileID(fileID).
		SetGas(req.Gas)

	if req.InitialBalance != nil {
		tx.SetInitialBalance(hedera.HbarFromTinybar(*req.InitialBalance))
	}
	if req.ProxyAccountID != "" {
		proxyID, err := hedera.AccountIDFromString(req.ProxyAccountID)
		if err != nil {
			return "", 0, fmt.Errorf("invalid proxy account id %q: %w", req.ProxyAccountID, err)
		}
		tx.SetProxyAccountID(proxyID)
	}
	if req.Memo != "" {
		tx.SetContractMemo(req.Memo)
	}
	if len(req.ConstructorParams) > 0 {
		tx.SetConstructorParametersRaw(req.ConstructorParams)
	}
	if req.AdminKey != "" {
		adminKey, err := hedera.PrivateKeyFromString(req.AdminKey)
		if err != nil {
			return "", 0, fmt.Errorf("invalid admin key: %w", err)
		}
		tx.SetAdminKey(adminKey.PublicKey())
		frozen, err := tx.FreezeWith(c.inner)
		if err != nil {
			return "", 0, fmt.Errorf("failed to freeze contract create: %w", err)
		}
		frozen.Sign(adminKey)
	}

	resp, err := tx.Execute(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to execute contract create: %w", err)
	}
	receipt, err := resp.GetReceipt(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch contract create receipt: %w", err)
	}

	var contractID string
	if receipt.ContractID != nil {
		contractID = receipt.ContractID.String()
	}
	return contractID, ReceiptStatus(receipt.Status), nil
}

// CallContract submits a state-changing call and retrieves its full record.
// Extra signatures are applied sequentially to the one frozen transaction
// instance, strictly after the freeze and before execution.
func (c *HederaClient) CallContract(ctx context.Context, req ContractCall) (*ExecutionRecord, error) {
	contractID, err := hedera.ContractIDFromString(req.ContractID)
	if err != nil {
		return nil, fmt.Errorf("invalid contract id %q: %w", req.ContractID, err)
	}

	tx := hedera.NewContractExecuteTransaction().
		SetContractID(contractID).
		SetFunctionParameters(req.Params).
		SetGas(req.Gas)
	if req.PayableTinybar != nil {
		tx.SetPayableAmount(hedera.HbarFromTinybar(*req.PayableTinybar))
	}

	frozen, err := tx.FreezeWith(c.inner)
	if err != nil {
		return nil, fmt.Errorf("failed to freeze contract call: %w", err)
	}
	for _, raw := range req.ExtraSigners {
		key, err := hedera.PrivateKeyFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid signer key: %w", err)
		}
		frozen.Sign(key)
		slog.Debug("Applied additional signature", "contract", req.ContractID)
	}

	resp, err := frozen.Execute(c.inner)
	if err != nil {
		return nil, fmt.Errorf("failed to execute contract call: %w", err)
	}
	record, err := resp.GetRecord(c.inner)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contract call record: %w", err)
	}

	out := &ExecutionRecord{Status: ReceiptStatus(record.Receipt.Status)}
	if result, err := record.GetContractExecuteResult(); err == nil {
		out.CallResult = result.ContractCallResult
		for _, logInfo := range result.LogInfo {
			out.Logs = append(out.Logs, Log{Data: logInfo.Data, Topics: logInfo.Topics})
		}
	}
	return out, nil
}

// QueryContract runs a read-only call; nothing is signed or recorded on the
// ledger beyond the query payment.
func (c *HederaClient) QueryContract(ctx context.Context, req ContractQuery) (*ExecutionRecord, error) {
	contractID, err := hedera.ContractIDFromString(req.ContractID)
	if err != nil {
		return nil, fmt.Errorf("invalid contract id %q: %w", req.ContractID, err)
	}

	result, err := hedera.NewContractCallQuery().
		SetContractID(contractID).
		SetFunctionParameters(req.Params).
		SetGas(req.Gas).
		Execute(c.inner)
	if err != nil {
		return nil, fmt.Errorf("failed to execute contract query: %w", err)
	}

	out := &ExecutionRecord{Status: StatusSuccess, CallResult: result.ContractCallResult}
	for _, logInfo := range result.LogInfo {
		out.Logs = append(out.Logs, Log{Data: logInfo.Data, Topics: logInfo.Topics})
	}
	return out, nil
}

// CreateTopic creates a consensus topic administered by the operator
func (c *HederaClient) CreateTopic(ctx context.Context) (string, ReceiptStatus, error) {
	frozen, err := hedera.NewTopicCreateTransaction().
		SetAdminKey(c.operatorKey.PublicKey()).
		FreezeWith(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to freeze topic create: %w", err)
	}
	frozen.Sign(c.operatorKey)

	resp, err := frozen.Execute(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to execute topic create: %w", err)
	}
	receipt, err := resp.GetReceipt(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch topic create receipt: %w", err)
	}

	var topicID string
	if receipt.TopicID != nil {
		topicID = receipt.TopicID.String()
	}
	return topicID, ReceiptStatus(receipt.Status), nil
}

// CreateToken creates a fungible token with the operator as treasury,
// admin, and supply authority.
func (c *HederaClient) CreateToken(ctx context.Context, req TokenCreate) (string, ReceiptStatus, error) {
	frozen, err := hedera.NewTokenCreateTransaction().
		SetTokenName(req.Name).
		SetTokenSymbol(req.Symbol).
		SetDecimals(req.Decimals).
		SetInitialSupply(req.InitialSupply).
		SetTreasuryAccountID(c.operatorID).
		SetAdminKey(c.operatorKey.PublicKey()).
		SetSupplyKey(c.operatorKey.PublicKey()).
		FreezeWith(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to freeze token create: %w", err)
	}
	frozen.Sign(c.operatorKey)

	resp, err := frozen.Execute(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to execute token create: %w", err)
	}
	receipt, err := resp.GetReceipt(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch token create receipt: %w", err)
	}

	var tokenID string
	if receipt.TokenID != nil {
		tokenID = receipt.TokenID.String()
	}
	return tokenID, ReceiptStatus(receipt.Status), nil
}

// UpdateTokenSupplyKey points a token's supply authority at the operator key
func (c *HederaClient) UpdateTokenSupplyKey(ctx context.Context, tokenID string) (ReceiptStatus, error) {
	id, err := hedera.TokenIDFromString(tokenID)
	if err != nil {
		return 0, fmt.Errorf("invalid token id %q: %w", tokenID, err)
	}

	frozen, err := hedera.NewTokenUpdateTransaction().
		SetTokenID(id).
		SetSupplyKey(c.operatorKey.PublicKey()).
		FreezeWith(c.inner)
	if err != nil {
		return 0, fmt.Errorf("failed to freeze token update: %w", err)
	}
	frozen.Sign(c.operatorKey)

	resp, err := frozen.Execute(c.inner)
	if err != nil {
		return 0, fmt.Errorf("failed to execute token update: %w", err)
	}
	receipt, err := resp.GetReceipt(c.inner)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch token update receipt: %w", err)
	}
	return ReceiptStatus(receipt.Status), nil
}

// CreateAccount creates a fresh account with a newly generated key
func (c *HederaClient) CreateAccount(ctx context.Context) (string, ReceiptStatus, error) {
	key, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate account key: %w", err)
	}

	resp, err := hedera.NewAccountCreateTransaction().
		SetKey(key.PublicKey()).
		Execute(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to execute account create: %w", err)
	}
	receipt, err := resp.GetReceipt(c.inner)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch account create receipt: %w", err)
	}

	var accountID string
	if receipt.AccountID != nil {
		accountID = receipt.AccountID.String()
	}
	return accountID, ReceiptStatus(receipt.Status), nil
}

// AccountBalance returns an account's balance in tinybar
func (c *HederaClient) AccountBalance(ctx context.Context, accountID string) (int64, error) {
	id, err := hedera.AccountIDFromString(accountID)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q: %w", accountID, err)
	}
	balance, err := hedera.NewAccountBalanceQuery().
		SetAccountID(id).
		Execute(c.inner)
	if err != nil {
		return 0, fmt.Errorf("failed to query account balance: %w", err)
	}
	return balance.Hbars.AsTinybar(), nil
}
