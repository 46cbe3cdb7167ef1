package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/config"
	"github.com/wikimasters/wikimasters/internal/model"
	"github.com/wikimasters/wikimasters/internal/repository"

	"github.com/google/uuid"
)

const (
	seedCount = 25
	seedValue = 1337
)

var tagNames = []string{
	"JavaScript",
	"React",
	"Next.js",
	"TypeScript",
	"AI",
	"CSS",
	"Web Performance",
	"Design Systems",
	"Testing",
	"DevOps",
	"Node.js",
	"Git",
	"Accessibility",
	"Debugging",
	"Frontend",
}

var topics = []string{
	"profiling slow queries",
	"structuring a component library",
	"caching strategies",
	"writing useful error messages",
	"incremental migrations",
	"reviewing pull requests",
	"measuring web vitals",
	"naming things",
}

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, verr.Error())
			os.Exit(1)
		}
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := sqlx.Connect("pgx", cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := run(context.Background(), db, logger); err != nil {
		logger.Fatal("Seed failed", zap.Error(err))
	}

	logger.Info("Seed complete",
		zap.Int("articles", seedCount),
		zap.Int("tags", len(tagNames)))
}

func run(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	logger.Info("Starting DB seed", zap.Int("seed", seedValue))

	// Wipe content tables; users stay, they are externally managed.
	for _, table := range []string{"article_tags", "articles", "tags"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	var userIDs []string
	if err := db.SelectContext(ctx, &userIDs, "SELECT id FROM users ORDER BY id"); err != nil {
		return fmt.Errorf("failed to query users: %w", err)
	}
	if len(userIDs) == 0 {
		return errors.New("no users found; seed cannot assign authors without existing users")
	}
	logger.Info("Found users", zap.Int("count", len(userIDs)))

	articleRepo := repository.NewArticleRepository(db, logger)
	tagRepo := repository.NewTagRepository(db, logger)

	tagIDs := make([]string, 0, len(tagNames))
	for _, name := range tagNames {
		id, err := tagRepo.Ensure(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to seed tag %q: %w", name, err)
		}
		tagIDs = append(tagIDs, id)
	}

	rng := rand.New(rand.NewSource(seedValue))
	base := time.Now().UnixMilli()

	for i := 0; i < seedCount; i++ {
		topic := topics[rng.Intn(len(topics))]
		article := &model.Article{
			ID:        uuid.NewString(),
			Title:     fmt.Sprintf("Notes on %s (%d)", topic, i+1),
			Slug:      strconv.FormatInt(base+int64(i), 10),
			Content:   fmt.Sprintf("Some practical notes on %s, written as sample content for article %d.", topic, i+1),
			Published: true,
			AuthorID:  userIDs[i%len(userIDs)],
		}

		created, err := articleRepo.Create(ctx, article)
		if err != nil {
			return fmt.Errorf("failed to seed article %d: %w", i+1, err)
		}

		// Link 0-3 random tags per article
		for _, t := range rng.Perm(len(tagIDs))[:rng.Intn(4)] {
			if err := tagRepo.LinkArticle(ctx, created.ID, tagIDs[t]); err != nil {
				return fmt.Errorf("failed to link tag: %w", err)
			}
		}
	}

	return nil
}
