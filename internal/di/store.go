package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"boardroom-backend/internal/config"
	"boardroom-backend/internal/infrastructure/observability"
	"boardroom-backend/internal/repository"
	"boardroom-backend/internal/repository/ddb"
	"boardroom-backend/internal/repository/mocks"
	"boardroom-backend/internal/repository/sqlstore"
	"boardroom-backend/internal/repository/supabase"
)

// provideStore opens the configured store and decorates it with metrics and,
// when enabled, tracing.
func provideStore(
	ctx context.Context,
	cfg *config.Config,
	collector *observability.Collector,
	logger *zap.Logger,
) (repository.Store, func(), error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Store opened",
		zap.String("driver", cfg.Store.Driver),
		zap.String("memory_table", cfg.Store.MemoryTable),
		zap.String("messages_table", cfg.Store.MessagesTable),
	)

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Store close failed", zap.Error(err))
		}
	}

	var decorated repository.Store = store
	if collector != nil {
		decorated = observability.InstrumentStore(decorated, collector)
	}
	if cfg.Tracing.Enabled {
		decorated = observability.TraceStore(decorated, observability.Tracer())
	}
	return decorated, cleanup, nil
}

// OpenStore opens the undecorated store named by cfg.Store.Driver. The CLI
// uses it directly for commands that do not need the full container.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	sc := cfg.Store
	switch sc.Driver {
	case config.StoreMemory:
		return mocks.NewMockStore(), nil
	case config.StoreSupabase:
		return supabase.NewStore(sc.Supabase.URL, sc.Supabase.Key, sc.MemoryTable, sc.MessagesTable)
	case config.StoreSQLite:
		return sqlstore.Open(sqlstore.Options{
			Driver:        sqlstore.DriverSQLite,
			DSN:           sc.SQLitePath,
			MemoryTable:   sc.MemoryTable,
			MessagesTable: sc.MessagesTable,
		})
	case config.StoreMySQL:
		return sqlstore.Open(sqlstore.Options{
			Driver:        sqlstore.DriverMySQL,
			DSN:           sc.DatabaseURL,
			MemoryTable:   sc.MemoryTable,
			MessagesTable: sc.MessagesTable,
		})
	case config.StoreDynamoDB:
		client, err := newDynamoDBClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return ddb.NewStore(client, sc.DynamoDB.TableName)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", sc.Driver)
	}
}

// newDynamoDBClient loads the default AWS configuration. A configured
// endpoint points the client at DynamoDB Local.
func newDynamoDBClient(ctx context.Context, cfg *config.Config) (*awsDynamodb.Client, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := awsConfig.LoadDefaultConfig(loadCtx,
		awsConfig.WithRegion(cfg.Store.DynamoDB.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return awsDynamodb.NewFromConfig(awsCfg, func(o *awsDynamodb.Options) {
		timeout := 15 * time.Second
		if cfg.Environment == config.Development {
			timeout = 30 * time.Second
		}
		o.HTTPClient = &http.Client{Timeout: timeout}
		if endpoint := cfg.Store.DynamoDB.Endpoint; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
