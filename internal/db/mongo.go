package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/skillspad/api/internal/config"
	"github.com/skillspad/api/internal/pkg/logger"
)

// Collection names
const (
	UsersCollection           = "users"
	CoursesCollection         = "courses"
	AssignmentsCollection     = "assignments"
	TransactionsCollection    = "transactions"
	PartialPaymentsCollection = "partial_payments"
	MigrationsCollection      = "schema_migrations"
)

// MongoDB owns the client for the lifetime of the process. It is built once
// at startup and closed on shutdown.
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database

	useTransactions bool
}

// NewMongoDB connects and pings the configured deployment
func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetConnectTimeout(cfg.Database.ConnectTimeout)
	if cfg.Database.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.Database.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	return &MongoDB{
		Client:          client,
		Database:        client.Database(cfg.Database.Name),
		useTransactions: cfg.Database.UseTransactions,
	}, nil
}

// Collection returns a handle on the named collection
func (db *MongoDB) Collection(name string) *mongo.Collection {
	return db.Database.Collection(name)
}

// Ping checks the primary is reachable
func (db *MongoDB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (db *MongoDB) Close(ctx context.Context) error {
	if db.Client == nil {
		return nil
	}
	return db.Client.Disconnect(ctx)
}

// WithTransaction runs fn inside a multi-document transaction. Store calls made
// with the ctx fn receives join the transaction. Standalone servers cannot run
// transactions, so when they are disabled in config fn runs directly and
// callers rely on their own compare-and-set guards.
func (db *MongoDB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	if !db.useTransactions {
		return fn(ctx)
	}

	session, err := db.Client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Transaction aborted")
		return err
	}
	return nil
}
