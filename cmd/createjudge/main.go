// Command createjudge mints a judge API key for an event. The plaintext key
// is printed once; only a bcrypt hash and lookup prefix are stored.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/pitchscoop/pitchscoop-backend/internal/auth"
	"github.com/pitchscoop/pitchscoop-backend/internal/config"
	"github.com/pitchscoop/pitchscoop-backend/internal/database"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository/postgres"
)

func main() {
	eventID := flag.String("event", "", "event ID the judge belongs to")
	name := flag.String("name", "", "judge display name")
	flag.Parse()

	if *eventID == "" || *name == "" {
		log.Fatal("usage: createjudge -event <event_id> -name <judge name>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	defer db.Close()

	apiKey, keyHash, keyPrefix, err := auth.GenerateJudgeKey()
	if err != nil {
		log.Fatal("failed to generate key:", err)
	}

	judgeRepo := postgres.NewJudgeRepository(db.DB)
	judge := &repository.Judge{
		EventID:   *eventID,
		Name:      *name,
		KeyPrefix: keyPrefix,
		KeyHash:   keyHash,
	}
	if err := judgeRepo.Create(context.Background(), judge); err != nil {
		log.Fatal("failed to store judge:", err)
	}

	fmt.Printf("Judge created.\n")
	fmt.Printf("  event:    %s\n", *eventID)
	fmt.Printf("  name:     %s\n", *name)
	fmt.Printf("  judge ID: %s\n", judge.ID)
	fmt.Printf("\nAPI key (shown once, store it now):\n  %s\n", apiKey)
}
