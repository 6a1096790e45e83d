package access

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"factify/internal/db"
)

var (
	seedUsers = []string{
		"user001", "user002", "user003", "user004", "user005",
		"user006", "user007", "user008", "user009", "user010",
	}
	seedQueries = []string{
		"python programming", "data analysis", "aws lambda",
		"machine learning", "web development", "database design",
		"api development", "typescript", "react", "fastapi",
	}
)

// SeedDummyEvents writes randomized access events over the past numDays days
// for demo and dashboard-smoke purposes. Accessing user and document owner
// are always distinct, so seeded data obeys the self-access rule. Returns
// the number of events written.
func SeedDummyEvents(ctx context.Context, store EventWriter, docs []db.Document, numDays, logsPerDay int) (int, error) {
	if numDays <= 0 {
		numDays = 7
	}
	if logsPerDay <= 0 {
		logsPerDay = 10
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("no documents to seed against")
	}

	generated := 0
	for dayOffset := 0; dayOffset < numDays; dayOffset++ {
		day := time.Now().UTC().AddDate(0, 0, -dayOffset)

		dailyLogs := logsPerDay
		if logsPerDay > 5 {
			dailyLogs = logsPerDay - 5 + rand.Intn(11)
		}

		for i := 0; i < dailyLogs; i++ {
			at := time.Date(day.Year(), day.Month(), day.Day(),
				8+rand.Intn(15), rand.Intn(60), rand.Intn(60), 0, time.UTC)

			accessing := seedUsers[rand.Intn(len(seedUsers))]
			owner := seedUsers[rand.Intn(len(seedUsers))]
			for owner == accessing {
				owner = seedUsers[rand.Intn(len(seedUsers))]
			}

			event := &db.AccessEvent{
				TransactionID:      uuid.NewString(),
				Timestamp:          FormatTimestamp(at),
				AccessedDocumentID: docs[rand.Intn(len(docs))].ID,
				AccessingUserID:    accessing,
				DocumentOwnerID:    owner,
				SearchQuery:        seedQueries[rand.Intn(len(seedQueries))],
				SearchRank:         1 + rand.Intn(10),
				AccessType:         db.AccessTypeSearchResult,
			}
			if err := store.Append(ctx, event); err != nil {
				return generated, err
			}
			generated++
		}
	}
	return generated, nil
}
