package storage

import (
	"context"
	"time"
)

// DeploymentRecord is one finished deployment run. Partial side effects of a
// failed run are never recorded; the registry exists so operators can see
// what a successful run created and reconcile anything a failed one left
// behind.
type DeploymentRecord struct {
	DAOName               string
	FactoryID             string
	FactoryAddress        string
	ImplementationID      string
	ImplementationAddress string
	ProxyID               string
	ProxyAddress          string
	Auxiliary             []AuxiliaryRecord
	DeployedAt            time.Time
}

// AuxiliaryRecord is a topic or token created alongside a contract
type AuxiliaryRecord struct {
	Kind       string `json:"kind"`
	Tier       string `json:"tier,omitempty"`
	ID         string `json:"id"`
	EVMAddress string `json:"evm_address"`
}

// Registry defines the interface for the deployment registry
type Registry interface {
	SaveDeployment(ctx context.Context, record *DeploymentRecord) error
	ListDeployments(ctx context.Context, limit, offset int) ([]*DeploymentRecord, error)
	Ping(ctx context.Context) error
	Close() error
}
