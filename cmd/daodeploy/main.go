package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"daodeploy/internal/abi"
	"daodeploy/internal/config"
	"daodeploy/internal/dao"
	"daodeploy/internal/deploy"
	"daodeploy/internal/ledger"
	"daodeploy/internal/metrics"
	"daodeploy/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("🏛  Starting DAO deployer...")

	// 1. Load configuration
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// 2. Configure logger
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Configuration loaded",
		"network", cfg.Network,
		"operator", cfg.OperatorID,
		"log_level", cfg.LogLevel,
	)

	// 3. Connect to the ledger as the operator
	ctx := context.Background()
	client, err := ledger.NewHederaClient(ledger.ClientConfig{
		Network:     cfg.Network,
		OperatorID:  cfg.OperatorID,
		OperatorKey: cfg.OperatorKey,
	})
	if err != nil {
		log.Fatalf("❌ Failed to create ledger client: %v", err)
	}
	defer client.Close()

	// 4. Optional deployment registry
	var registry storage.Registry
	if cfg.DatabaseURL != "" {
		registry, err = storage.NewPostgresRegistry(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to deployment registry: %v", err)
		}
		defer registry.Close()
		slog.Info("Deployment registry connected")
	}

	// 5. Optional metrics endpoint
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				slog.Error("Metrics endpoint failed", "error", err)
			}
		}()
		slog.Info("Metrics endpoint listening", "addr", cfg.MetricsAddr)
	}

	// 6. Dispatch by subcommand
	if len(os.Args) < 2 {
		log.Fatalf("❌ Usage: %s <subcommand>", os.Args[0])
	}
	slog.Info("Running", "subcommand", os.Args[1])

	switch os.Args[1] {
	case "fullDeploy":
		fullDeploy(ctx, cfg, client, registry)
	case "grantAccessTest":
		d := proxyDAOAs(cfg, cfg.AliceID, cfg.AliceKey)
		_ = d.GrantAccess(ctx, []string{cfg.SallyID}, dao.AccessMember)
		balances(ctx, cfg, client)
	case "removeAccessTest":
		d := proxyDAOAs(cfg, cfg.AliceID, cfg.AliceKey)
		_ = d.RemoveAccess(ctx, []string{cfg.BobID})
		balances(ctx, cfg, client)
	case "removeOfficerTest":
		d := proxyDAO(cfg, client)
		_ = d.RemoveOfficer(ctx, cfg.SallyID)
		balances(ctx, cfg, client)
	case "setMaxUserTest":
		d := proxyDAO(cfg, client)
		_ = d.SetMaxUsers(ctx, 15)
		getMaxUsers(ctx, cfg, client)
	case "balances":
		balances(ctx, cfg, client)
	case "sendHbar":
		tinybar, err := client.AccountBalance(ctx, client.OperatorID())
		if err != nil {
			slog.Error("❌ Balance query failed", "error", err)
			return
		}
		fmt.Printf("The account balance is: %d tinybar\n", tinybar)
	case "getMaxUserTest":
		getMaxUsers(ctx, cfg, client)
	case "getBalance":
		d := proxyDAO(cfg, client)
		if balance, err := d.Balance(ctx); err == nil {
			fmt.Printf("The contract Hbar balance is: %s\n", balance)
		}
	case "deposit":
		d := proxyDAO(cfg, client)
		_ = d.Deposit(ctx, 100_000_000) // 1 Hbar
		if balance, err := d.Balance(ctx); err == nil {
			fmt.Printf("The contract Hbar balance is: %s\n", balance)
		}
	case "transfer":
		d := proxyDAO(cfg, client)
		_ = d.TransferHbar(ctx, cfg.AliceID, 15)
		if balance, err := d.Balance(ctx); err == nil {
			fmt.Printf("The contract Hbar balance is: %s\n", balance)
		}
	case "createUsers":
		ids := cfg.UserIDs
		if len(ids) == 0 {
			if cfg.UserCount <= 0 {
				log.Fatalf("❌ USER_IDS or USER_COUNT is required for createUsers")
			}
			ids = createAccounts(ctx, client, cfg.UserCount)
		}
		d := proxyDAO(cfg, client)
		granted := d.BulkGrant(ctx, ids, dao.AccessMember)
		fmt.Printf("Successfully added %d of %d users\n", granted, len(ids))
	case "deployments":
		if registry == nil {
			log.Fatalf("❌ DATABASE_URL is required for deployments")
		}
		records, err := registry.ListDeployments(ctx, 20, 0)
		if err != nil {
			log.Fatalf("❌ Failed to list deployments: %v", err)
		}
		for _, r := range records {
			fmt.Printf("%s  %s  proxy=%s factory=%s\n",
				r.DeployedAt.Format(time.RFC3339), r.DAOName, r.ProxyID, r.FactoryID)
		}
	default:
		log.Fatalf("❌ Unknown subcommand %q", os.Args[1])
	}
}

// fullDeploy runs the orchestrated factory → implementation → proxy
// deployment and records the result when a registry is configured
func fullDeploy(ctx context.Context, cfg *config.Config, client ledger.Client, registry storage.Registry) {
	bytecode, err := os.ReadFile(cfg.FactoryBinPath)
	if err != nil {
		log.Fatalf("❌ Failed to read factory bytecode: %v", err)
	}
	factoryDoc, err := abi.Load(cfg.FactoryABIPath)
	if err != nil {
		log.Fatalf("❌ Failed to load factory ABI: %v", err)
	}

	params := deploy.Params{
		DAOName:              cfg.DAOName,
		DAOSymbol:            cfg.DAOSymbol,
		FactoryBytecode:      bytecode,
		FactoryDoc:           factoryDoc,
		Gas:                  cfg.Gas,
		ResumeFactoryID:      cfg.FactoryID,
		ResumeFactoryAddress: cfg.FactoryAddress,
		TierSupplies:         cfg.TierSupplies,
		Instantiate: deploy.InstantiationConfig{
			Gas:            cfg.Gas,
			InitialBalance: cfg.InitialBalance,
			AdminKey:       cfg.AdminKey,
			ProxyAccountID: cfg.ProxyAccountID,
			Memo:           cfg.ContractMemo,
		},
	}
	if cfg.FileMemo != "" {
		params.Upload.Memo = &cfg.FileMemo
	}
	params.Upload.ExpirationDays = cfg.ExpirationDays

	result, err := deploy.Run(ctx, client, params)
	if err != nil {
		log.Fatalf("❌ Deployment failed: %v", err)
	}

	fmt.Printf("✅ The Factory contract ID is: %s\n", result.FactoryID)
	fmt.Printf("✅ The Implementation contract address is: %s\n", result.ImplementationAddress)
	fmt.Printf("✅ The Proxy contract address is: %s\n", result.ProxyAddress)

	if registry != nil {
		record := &storage.DeploymentRecord{
			DAOName:               cfg.DAOName,
			FactoryID:             result.FactoryID,
			FactoryAddress:        result.FactoryAddress,
			ImplementationID:      result.ImplementationID,
			ImplementationAddress: result.ImplementationAddress,
			ProxyID:               result.ProxyID,
			ProxyAddress:          result.ProxyAddress,
			DeployedAt:            time.Now().UTC(),
		}
		for _, aux := range result.Auxiliary {
			record.Auxiliary = append(record.Auxiliary, storage.AuxiliaryRecord{
				Kind:       aux.Kind,
				Tier:       aux.Tier,
				ID:         aux.ID,
				EVMAddress: aux.EVMAddress,
			})
		}
		// Best effort: a registry hiccup must not fail a finished deployment
		if err := registry.SaveDeployment(ctx, record); err != nil {
			slog.Error("❌ Failed to record deployment", "error", err)
		}
	}
}

// proxyDAO builds a handle on the deployed proxy contract using the default
// operator client
func proxyDAO(cfg *config.Config, client ledger.Client) *dao.DAO {
	doc, err := abi.Load(cfg.ProxyABIPath)
	if err != nil {
		log.Fatalf("❌ Failed to load proxy ABI: %v", err)
	}
	if cfg.ProxyID == "" {
		log.Fatalf("❌ PROXY_ID is required for this subcommand")
	}
	return dao.New(client, doc, cfg.ProxyID, cfg.Gas)
}

// proxyDAOAs builds a proxy handle signing as a different operator, for the
// operations that must come from a specific grantor
func proxyDAOAs(cfg *config.Config, operatorID, operatorKey string) *dao.DAO {
	client, err := ledger.NewHederaClient(ledger.ClientConfig{
		Network:     cfg.Network,
		OperatorID:  operatorID,
		OperatorKey: operatorKey,
	})
	if err != nil {
		log.Fatalf("❌ Failed to create ledger client: %v", err)
	}
	doc, err := abi.Load(cfg.ProxyABIPath)
	if err != nil {
		log.Fatalf("❌ Failed to load proxy ABI: %v", err)
	}
	if cfg.ProxyID == "" {
		log.Fatalf("❌ PROXY_ID is required for this subcommand")
	}
	return dao.New(client, doc, cfg.ProxyID, cfg.Gas)
}

// balances reports the access tier of the known test accounts against both
// the implementation and proxy contracts
func balances(ctx context.Context, cfg *config.Config, client ledger.Client) {
	accounts := map[string]string{
		"operator": cfg.OperatorID,
		"alice":    cfg.AliceID,
		"bob":      cfg.BobID,
		"sally":    cfg.SallyID,
	}
	if cfg.ImplementationID != "" && cfg.ImplementationABIPath != "" {
		doc, err := abi.Load(cfg.ImplementationABIPath)
		if err != nil {
			log.Fatalf("❌ Failed to load implementation ABI: %v", err)
		}
		fmt.Println("Access for Imp contract:")
		dao.New(client, doc, cfg.ImplementationID, cfg.Gas).AccessReport(ctx, accounts)
	}
	fmt.Println("Access for Proxy contract:")
	proxyDAO(cfg, client).AccessReport(ctx, accounts)
}

// createAccounts creates fresh ledger accounts to enroll as DAO users. A
// failed create is skipped, matching the best-effort policy of the grants
// that follow.
func createAccounts(ctx context.Context, client ledger.Client, count int) []string {
	var ids []string
	for i := 0; i < count; i++ {
		accountID, status, err := client.CreateAccount(ctx)
		if err != nil || !status.OK() || accountID == "" {
			slog.Error("❌ Account create failed", "error", err, "status", status)
			continue
		}
		slog.Info("Account created", "account_id", accountID)
		ids = append(ids, accountID)
	}
	return ids
}

func getMaxUsers(ctx context.Context, cfg *config.Config, client ledger.Client) {
	d := proxyDAO(cfg, client)
	if maxUsers, err := d.MaxUsers(ctx); err == nil {
		fmt.Printf("Max users is: %d\n", maxUsers)
	}
}
