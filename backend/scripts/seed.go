package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"kinnected/backend/internal/auth"
	"kinnected/backend/internal/graph"
	"kinnected/backend/pkg/config"
	"kinnected/backend/pkg/logger"
)

// Demo accounts created by the seed. All share the same password.
const seedPassword = "Password1!"

type seedAccount struct {
	username string
	fullName string
	email    string
}

var seedAccounts = []seedAccount{
	{username: "alice", fullName: "Alice Hargrove", email: "alice@example.com"},
	{username: "bob", fullName: "Bob Hargrove", email: "bob@example.com"},
	{username: "carol", fullName: "Carol Mendes", email: "carol@example.com"},
}

func main() {
	reset := flag.Bool("reset", false, "Delete all existing data before seeding")
	flag.Parse()

	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Seeding demo data...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	if *reset {
		if err := wipe(ctx, driver); err != nil {
			log.Fatal("Failed to wipe database", zap.Error(err))
		}
		log.Info("Existing data removed")
	}

	repo := graph.NewRepository(driver)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatal("Failed to hash seed password", zap.Error(err))
	}

	// Create demo accounts concurrently; they are independent
	ids := make([]string, len(seedAccounts))
	g, gctx := errgroup.WithContext(ctx)
	for i, seed := range seedAccounts {
		i, seed := i, seed
		g.Go(func() error {
			acc := &graph.Account{
				ID:               uuid.NewString(),
				Username:         seed.username,
				FullName:         seed.fullName,
				Email:            seed.email,
				PasswordHash:     hash,
				Privacy:          graph.DefaultPrivacySettings(),
				TreePreferences:  graph.DefaultTreePreferences(),
				Notifications:    graph.DefaultNotificationSettings(),
				RelationSettings: graph.DefaultRelationSettings(),
				AppPreferences:   graph.DefaultAppPreferences(),
			}
			if err := repo.CreateAccount(gctx, acc); err != nil {
				return fmt.Errorf("create %s: %w", seed.username, err)
			}
			ids[i] = acc.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal("Failed to create demo accounts", zap.Error(err))
	}

	alice, bob, carol := ids[0], ids[1], ids[2]

	// alice -> bob: accepted sibling relation
	rel, err := repo.CreatePendingRelation(ctx, alice, bob, graph.RelationSibling)
	if err != nil {
		log.Fatal("Failed to create sibling relation", zap.Error(err))
	}
	if _, err := repo.UpdateRequestStatus(ctx, rel.ID, bob, graph.StatusAccepted); err != nil {
		log.Fatal("Failed to accept sibling relation", zap.Error(err))
	}

	// carol -> alice: pending spouse request, left for the demo user to answer
	if _, err := repo.CreatePendingRelation(ctx, carol, alice, graph.RelationSpouse); err != nil {
		log.Fatal("Failed to create spouse request", zap.Error(err))
	}

	// alice also tracks an unregistered relative
	if _, _, err := repo.UpsertPlaceholder(ctx, alice, graph.RelationMother, "Margaret Hargrove", "Peggy", "Lives in Porto"); err != nil {
		log.Fatal("Failed to create placeholder relation", zap.Error(err))
	}

	log.Info("Seed completed",
		zap.Strings("accounts", []string{"alice", "bob", "carol"}),
		zap.String("password", seedPassword),
	)
}

func wipe(ctx context.Context, driver neo4j.DriverWithContext) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
	return err
}
