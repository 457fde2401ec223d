package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRegistry implements the Registry interface using PostgreSQL
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistry creates a new PostgreSQL registry
func NewPostgresRegistry(ctx context.Context, databaseURL string) (*PostgresRegistry, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRegistry{
		pool: pool,
	}, nil
}

// SaveDeployment records one finished deployment run
func (r *PostgresRegistry) SaveDeployment(ctx context.Context, record *DeploymentRecord) error {
	auxiliaryJSON, err := json.Marshal(record.Auxiliary)
	if err != nil {
		return fmt.Errorf("failed to marshal auxiliary resources: %w", err)
	}

	query := `
		INSERT INTO deployments (
			dao_name, factory_id, factory_address,
			implementation_id, implementation_address,
			proxy_id, proxy_address, auxiliary, deployed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (proxy_id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		record.DAOName,
		record.FactoryID,
		record.FactoryAddress,
		record.ImplementationID,
		record.ImplementationAddress,
		record.ProxyID,
		record.ProxyAddress,
		auxiliaryJSON,
		record.DeployedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save deployment: %w", err)
	}

	return nil
}

// ListDeployments lists recorded deployments, newest first
func (r *PostgresRegistry) ListDeployments(ctx context.Context, limit, offset int) ([]*DeploymentRecord, error) {
	query := `
		SELECT
			dao_name, factory_id, factory_address,
			implementation_id, implementation_address,
			proxy_id, proxy_address, auxiliary, deployed_at
		FROM deployments
		ORDER BY deployed_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	defer rows.Close()

	var records []*DeploymentRecord
	for rows.Next() {
		var record DeploymentRecord
		var auxiliaryJSON []byte

		if err := rows.Scan(
			&record.DAOName,
			&record.FactoryID,
			&record.FactoryAddress,
			&record.ImplementationID,
			&record.ImplementationAddress,
			&record.ProxyID,
			&record.ProxyAddress,
			&auxiliaryJSON,
			&record.DeployedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deployment: %w", err)
		}

		if len(auxiliaryJSON) > 0 {
			if err := json.Unmarshal(auxiliaryJSON, &record.Auxiliary); err != nil {
				return nil, fmt.Errorf("failed to unmarshal auxiliary resources: %w", err)
			}
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deployments: %w", err)
	}

	return records, nil
}

// Ping checks the database connection
func (r *PostgresRegistry) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the connection pool
func (r *PostgresRegistry) Close() error {
	r.pool.Close()
	return nil
}
