// Package deploy drives the contract deployment pipeline: upload bytecode,
// instantiate the factory, then have the factory create the implementation
// and proxy contracts, threading ids and addresses forward between stages.
package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"daodeploy/internal/abi"
	"daodeploy/internal/contract"
	"daodeploy/internal/ledger"
	"daodeploy/internal/metrics"
)

const (
	deployImpFunction   = "createImp"
	deployProxyFunction = "createProxy"

	// maxDAONameBytes is the on-chain cap for the DAO name
	maxDAONameBytes = 32
)

// State is the orchestrator's position in the deployment sequence. There is
// no rollback transition: a failed run leaves whatever it created for the
// operator to inspect and reconcile.
type State int

const (
	NotStarted State = iota
	FactoryDeployed
	ImplementationDeployed
	ProxyDeployed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case FactoryDeployed:
		return "factory-deployed"
	case ImplementationDeployed:
		return "implementation-deployed"
	case ProxyDeployed:
		return "proxy-deployed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// DeploymentError reports a dependent stage that got no usable return value
// from its factory call
type DeploymentError struct {
	Stage string
	Err   error
}

func (e *DeploymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to deploy %s contract: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("failed to deploy %s contract", e.Stage)
}

func (e *DeploymentError) Unwrap() error { return e.Err }

// AuxiliaryResource is a topic or token created as a side effect of a
// deployment stage and owned by the contract that stage produced
type AuxiliaryResource struct {
	Kind       string // topic or token
	Tier       string // set for tier tokens only
	ID         string
	EVMAddress string
}

// Params configures one orchestrated deployment run
type Params struct {
	DAOName   string
	DAOSymbol string

	// Factory bytecode and interface
	FactoryBytecode []byte
	FactoryDoc      *abi.Document

	// Gas for the factory's create calls
	Gas uint64

	// ResumeFactoryID / ResumeFactoryAddress skip the upload and
	// instantiation stages entirely when both are supplied
	ResumeFactoryID      string
	ResumeFactoryAddress string

	Upload      UploadOptions
	Instantiate InstantiationConfig

	// TierSupplies, when non-empty, creates one token per access tier
	// before the proxy is deployed
	TierSupplies []uint64
}

// Result is the immutable outcome of one run. A new run produces a new
// Result; nothing mutates one after the fact.
type Result struct {
	State State

	FactoryID      string
	FactoryAddress string

	ImplementationID      string
	ImplementationAddress string

	ProxyID      string
	ProxyAddress string

	Auxiliary []AuxiliaryResource
}

var tierNames = []string{"member", "admin", "officer"}

// Run executes the full deployment sequence. Each stage blocks until its
// receipt is confirmed; later stages consume identifiers the earlier ones
// produced, so nothing runs in parallel. Any fatal error aborts the run and
// surfaces to the caller with partial side effects left in place.
func Run(ctx context.Context, client ledger.Client, params Params) (*Result, error) {
	if len(params.DAOName) > maxDAONameBytes {
		return nil, fmt.Errorf("the DAO name must be %d bytes or less, got %d", maxDAONameBytes, len(params.DAOName))
	}

	res := &Result{State: NotStarted}

	// Stage 1: factory. An externally supplied id/address pair short-circuits
	// the upload and instantiation so a run can resume against an existing
	// factory.
	if params.ResumeFactoryID != "" && params.ResumeFactoryAddress != "" {
		res.FactoryID = params.ResumeFactoryID
		res.FactoryAddress = params.ResumeFactoryAddress
		slog.Info("Reusing existing factory contract",
			"factory_id", res.FactoryID,
			"address", res.FactoryAddress,
		)
	} else {
		fileID, err := Upload(ctx, client, params.FactoryBytecode, params.Upload)
		if err != nil {
			return nil, err
		}
		factory, err := Instantiate(ctx, client, fileID, params.Instantiate)
		if err != nil {
			return nil, err
		}
		res.FactoryID = factory.ID
		res.FactoryAddress = factory.EVMAddress
		slog.Info("✅ Factory contract deployed",
			"factory_id", res.FactoryID,
			"address", res.FactoryAddress,
		)
	}
	res.State = FactoryDeployed
	metrics.StagesCompleted.WithLabelValues("factory").Inc()

	// Stage 2: implementation, created by the factory
	impl, topic, err := createFromFactory(ctx, client, params, res.FactoryID, deployImpFunction,
		func(topicAddress string) []any {
			return []any{"Implementation", "0x" + topicAddress}
		})
	if err != nil {
		return nil, &DeploymentError{Stage: "implementation", Err: err}
	}
	res.ImplementationID = impl.ID
	res.ImplementationAddress = impl.EVMAddress
	res.Auxiliary = append(res.Auxiliary, *topic)
	res.State = ImplementationDeployed
	metrics.StagesCompleted.WithLabelValues("implementation").Inc()
	slog.Info("✅ Implementation contract deployed",
		"contract_id", impl.ID,
		"address", impl.EVMAddress,
	)

	// Tier tokens are created before the proxy exists so the proxy call can
	// reference them; they belong to the proxy afterwards
	tokens, err := createTierTokens(ctx, client, params)
	if err != nil {
		return nil, err
	}
	res.Auxiliary = append(res.Auxiliary, tokens...)

	// Stage 3: proxy, created by the factory and pointed at the
	// implementation
	proxy, topic, err := createFromFactory(ctx, client, params, res.FactoryID, deployProxyFunction,
		func(topicAddress string) []any {
			return []any{params.DAOName, "0x" + topicAddress, "0x" + impl.EVMAddress}
		})
	if err != nil {
		return nil, &DeploymentError{Stage: "proxy", Err: err}
	}
	res.ProxyID = proxy.ID
	res.ProxyAddress = proxy.EVMAddress
	res.Auxiliary = append(res.Auxiliary, *topic)
	res.State = ProxyDeployed
	metrics.StagesCompleted.WithLabelValues("proxy").Inc()
	slog.Info("✅ Proxy contract deployed",
		"contract_id", proxy.ID,
		"address", proxy.EVMAddress,
	)

	return res, nil
}

// createFromFactory creates a topic, invokes one of the factory's create
// functions with arguments built from the fresh topic address, and derives
// the new contract's identity from the returned address word.
func createFromFactory(ctx context.Context, client ledger.Client, params Params, factoryID, function string, buildArgs func(topicAddress string) []any) (*Instance, *AuxiliaryResource, error) {
	topicID, status, err := client.CreateTopic(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("topic-create: %w", err)
	}
	if !status.OK() || topicID == "" {
		return nil, nil, &ResourceCreationError{Step: "topic-create", Status: status}
	}
	topicAddress, err := ledger.ToEVMAddress(topicID)
	if err != nil {
		return nil, nil, fmt.Errorf("topic-create returned unusable id %q: %w", topicID, err)
	}
	slog.Info("Topic created", "topic_id", topicID, "address", topicAddress)

	record, err := contract.Submit(ctx, client, contract.CallPlan{
		ContractID: factoryID,
		Doc:        params.FactoryDoc,
		Function:   function,
		Args:       buildArgs(topicAddress),
		Gas:        params.Gas,
	})
	if err != nil {
		return nil, nil, err
	}
	if record == nil || !record.Status.OK() {
		return nil, nil, fmt.Errorf("factory call %q returned no usable result", function)
	}

	address, err := contract.AddressWord(record.CallResult, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("factory call %q returned no usable result: %w", function, err)
	}
	id, err := ledger.FromEVMAddress(address)
	if err != nil {
		return nil, nil, fmt.Errorf("factory call %q returned unusable address %q: %w", function, address, err)
	}

	aux := &AuxiliaryResource{Kind: "topic", ID: topicID, EVMAddress: topicAddress}
	return &Instance{ID: id, EVMAddress: address}, aux, nil
}

// createTierTokens creates one token per configured access tier, treasured
// by the operator, and points each token's supply authority at the operator
// key.
func createTierTokens(ctx context.Context, client ledger.Client, params Params) ([]AuxiliaryResource, error) {
	var out []AuxiliaryResource
	for i, supply := range params.TierSupplies {
		if i >= len(tierNames) {
			break
		}
		tier := tierNames[i]

		tokenID, status, err := client.CreateToken(ctx, ledger.TokenCreate{
			Name:          fmt.Sprintf("%s %s", params.DAOName, tier),
			Symbol:        fmt.Sprintf("%s-%s", params.DAOSymbol, tier),
			InitialSupply: supply,
		})
		if err != nil {
			return nil, fmt.Errorf("token-create (%s): %w", tier, err)
		}
		if !status.OK() || tokenID == "" {
			return nil, &ResourceCreationError{Step: "token-create", Status: status}
		}

		if _, err := client.UpdateTokenSupplyKey(ctx, tokenID); err != nil {
			return nil, fmt.Errorf("token-update (%s): %w", tier, err)
		}
		// TODO: confirm with the token service owners whether this second
		// supply-key update is actually required; the operational scripts
		// have always issued it twice.
		if _, err := client.UpdateTokenSupplyKey(ctx, tokenID); err != nil {
			return nil, fmt.Errorf("token-update (%s): %w", tier, err)
		}

		address, err := ledger.ToEVMAddress(tokenID)
		if err != nil {
			return nil, fmt.Errorf("token-create returned unusable id %q: %w", tokenID, err)
		}
		slog.Info("Tier token created", "tier", tier, "token_id", tokenID, "supply", supply)
		out = append(out, AuxiliaryResource{Kind: "token", Tier: tier, ID: tokenID, EVMAddress: address})
	}
	return out, nil
}
