package migrations

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skillspad/api/internal/db"
)

// Migration is one versioned change to the database layout
type Migration struct {
	Version     string
	Description string
	Up          func(ctx context.Context, database *mongo.Database) error
}

// Migrator manages database migrations
type Migrator struct {
	database   *mongo.Database
	migrations []Migration
	logger     zerolog.Logger
}

// NewMigrator creates a migrator over the built in migrations
func NewMigrator(database *mongo.Database, logger zerolog.Logger) *Migrator {
	return &Migrator{
		database:   database,
		migrations: Migrations(),
		logger:     logger,
	}
}

// Migrations returns the built in migrations in the order they must run
func Migrations() []Migration {
	all := []Migration{
		{Version: "001", Description: "unique user email", Up: indexes(db.UsersCollection,
			mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_unique").SetUnique(true)},
			mongo.IndexModel{Keys: bson.D{{Key: "role", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("role_created")},
		)},
		{Version: "002", Description: "unique course title", Up: indexes(db.CoursesCollection,
			mongo.IndexModel{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetName("title_unique").SetUnique(true)},
		)},
		{Version: "003", Description: "assignment title unique per module", Up: indexes(db.AssignmentsCollection,
			mongo.IndexModel{
				Keys:    bson.D{{Key: "courseId", Value: 1}, {Key: "moduleId", Value: 1}, {Key: "title", Value: 1}},
				Options: options.Index().SetName("assignment_title_unique").SetUnique(true),
			},
			mongo.IndexModel{Keys: bson.D{{Key: "courseId", Value: 1}, {Key: "dueDate", Value: 1}}, Options: options.Index().SetName("course_due")},
			mongo.IndexModel{Keys: bson.D{{Key: "attachments.publicId", Value: 1}}, Options: options.Index().SetName("attachment_public_id")},
		)},
		{Version: "004", Description: "transaction lookups", Up: indexes(db.TransactionsCollection,
			mongo.IndexModel{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetName("reference_unique").SetUnique(true)},
			mongo.IndexModel{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("user_course_status"),
			},
		)},
		{Version: "005", Description: "partial payments by user", Up: indexes(db.PartialPaymentsCollection,
			mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("user_status")},
		)},
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Version < all[j].Version })
	return all
}

func indexes(collection string, models ...mongo.IndexModel) func(context.Context, *mongo.Database) error {
	return func(ctx context.Context, database *mongo.Database) error {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
		return nil
	}
}

// isMigrationApplied checks if a specific migration has already been applied
func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	n, err := m.database.Collection(db.MigrationsCollection).CountDocuments(ctx, bson.M{"_id": version})
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return n > 0, nil
}

// recordMigration marks a migration as applied
func (m *Migrator) recordMigration(ctx context.Context, mig Migration) error {
	_, err := m.database.Collection(db.MigrationsCollection).InsertOne(ctx, bson.M{
		"_id":         mig.Version,
		"description": mig.Description,
		"appliedAt":   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// Migrate applies every migration not yet recorded, in version order
func (m *Migrator) Migrate(ctx context.Context) error {
	for _, mig := range m.migrations {
		applied, err := m.isMigrationApplied(ctx, mig.Version)
		if err != nil {
			return err
		}
		if applied {
			m.logger.Debug().Str("version", mig.Version).Msg("Migration already applied, skipping")
			continue
		}

		if err := mig.Up(ctx, m.database); err != nil {
			return fmt.Errorf("migration %s (%s): %w", mig.Version, mig.Description, err)
		}
		if err := m.recordMigration(ctx, mig); err != nil {
			return err
		}
		m.logger.Info().Str("version", mig.Version).Str("description", mig.Description).Msg("Migration applied")
	}
	return nil
}
