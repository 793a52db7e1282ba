package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"vidtube/backend/internal/api"
	"vidtube/backend/internal/engine"
	"vidtube/backend/internal/graph"
	"vidtube/backend/internal/model"
	"vidtube/backend/pkg/config"
	"vidtube/backend/pkg/logger"
)

func main() {
	reset := flag.Bool("reset", false, "Delete all nodes before seeding")
	users := flag.Int("users", 4, "Number of demo users to create")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	if *reset {
		if err := deleteAllData(ctx, driver, cfg.Neo4jDatabase, log); err != nil {
			log.Fatal("Failed to reset database", zap.Error(err))
		}
	}

	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)

	log.Info("Creating constraints and indexes...")
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	eng := engine.New(repo, engine.Options{
		DefaultPageLimit:  cfg.DefaultPageLimit,
		MaxPageLimit:      cfg.MaxPageLimit,
		MaxToggleAttempts: cfg.MaxToggleAttempts,
	})

	if err := seed(ctx, repo, eng, *users, cfg.JWTSecret, log); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}

	log.Info("Database seeding completed successfully")
}

// seed creates demo users, each with two videos and a tweet, then has every
// user like, comment on and subscribe to the next user's channel.
func seed(ctx context.Context, repo *graph.Repository, eng *engine.Engine, count int, secret string, log *zap.Logger) error {
	ids := make([]string, 0, count)
	videos := make(map[string][]string, count)

	for i := 0; i < count; i++ {
		user := &model.User{
			ID:        model.NewID(),
			Username:  fmt.Sprintf("user%d", i+1),
			FullName:  fmt.Sprintf("Demo User %d", i+1),
			Avatar:    fmt.Sprintf("https://avatars.example.com/user%d.png", i+1),
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			return err
		}
		ids = append(ids, user.ID)

		for j := 0; j < 2; j++ {
			video := &model.Video{
				ID:          model.NewID(),
				Title:       fmt.Sprintf("%s video %d", user.Username, j+1),
				Owner:       user.ID,
				Views:       int64((i + 1) * (j + 1) * 100),
				IsPublished: j == 0,
				CreatedAt:   time.Now().UTC(),
			}
			if err := repo.CreateVideo(ctx, video); err != nil {
				return err
			}
			videos[user.ID] = append(videos[user.ID], video.ID)
		}

		if _, err := eng.CreateTweet(ctx, user.ID, fmt.Sprintf("Hello from %s", user.Username)); err != nil {
			return err
		}

		log.Info("Created user", zap.String("user_id", user.ID), zap.String("username", user.Username))
		if secret != "" {
			token, err := api.IssueToken(secret, user.ID, user.Username, 24*time.Hour)
			if err != nil {
				return err
			}
			log.Info("Access token", zap.String("username", user.Username), zap.String("token", token))
		}
	}

	if count < 2 {
		return nil
	}

	for i, id := range ids {
		channel := ids[(i+1)%len(ids)]
		published := videos[channel][0]

		if _, err := eng.ToggleSubscription(ctx, id, channel); err != nil {
			return err
		}
		if _, err := eng.ToggleLike(ctx, id, model.VideoTarget(published)); err != nil {
			return err
		}
		if _, err := eng.AddComment(ctx, id, published, "Great video!"); err != nil {
			return err
		}

		playlist, err := eng.CreatePlaylist(ctx, id, "Favourites", "Videos worth rewatching")
		if err != nil {
			return err
		}
		if _, err := eng.AddVideoToPlaylist(ctx, id, playlist.ID, published); err != nil {
			return err
		}
	}

	log.Info("Created relationships", zap.Int("users", len(ids)))
	return nil
}

// deleteAllData removes every node in the database
func deleteAllData(ctx context.Context, driver neo4j.DriverWithContext, database string, log *zap.Logger) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: database})
	defer session.Close(ctx)

	// Delete all relationships and nodes
	query := `
		MATCH (n)
		DETACH DELETE n
	`

	_, err := session.Run(ctx, query, nil)
	if err != nil {
		return fmt.Errorf("failed to delete all data: %w", err)
	}

	log.Info("All nodes and relationships deleted")
	return nil
}
