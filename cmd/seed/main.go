package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"go_todo/duedate"
	"go_todo/store"
)

var descriptions = []string{
	"Team standup meeting",
	"Review pull request",
	"Submit expense report",
	"Update project documentation",
	"Call with client",
	"Sprint planning",
	"Deploy to production",
	"Database backup check",
	"Buy groceries",
	"Pick up dry cleaning",
	"Dentist appointment",
	"Renew car insurance",
	"Pay electricity bill",
	"Book flights for conference",
	"Water the plants",
	"Call mom",
	"Write unit tests",
	"Update dependencies",
	"Quarterly planning",
	"Budget review",
	"Certificate renewal",
	"Incident postmortem",
	"Team retrospective",
	"Return library books",
}

func main() {
	dbPath := flag.String("db", "", "database to seed (default: a test database under the data dir)")
	count := flag.Int("n", 60, "number of tasks to create")
	flag.Parse()

	path := *dbPath
	if path == "" {
		dir, err := store.DataDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting data dir: %v\n", err)
			os.Exit(1)
		}
		path = filepath.Join(dir, "test_todos.db")
	}

	st, err := store.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	now := time.Now()
	// Range from 14 days ago to 60 days from now
	pastDays := 14
	futureDays := 60

	for i := 0; i < *count; i++ {
		dayOffset := rand.Intn(pastDays+futureDays+1) - pastDays
		// Business hours, on the quarter hour
		hour := 8 + rand.Intn(11)
		minute := rand.Intn(4) * 15
		due := time.Date(now.Year(), now.Month(), now.Day()+dayOffset, hour, minute, 0, 0, now.Location())

		desc := fmt.Sprintf("%s (%d)", descriptions[rand.Intn(len(descriptions))], i+1)
		id, err := st.Insert(ctx, desc, duedate.Format(due))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error inserting task: %v\n", err)
			os.Exit(1)
		}

		// Most past tasks are already done
		if due.Before(now) && rand.Float32() < 0.6 {
			if err := st.SetCompleted(ctx, id, true); err != nil {
				fmt.Fprintf(os.Stderr, "Error completing task: %v\n", err)
				os.Exit(1)
			}
		}
	}

	fmt.Printf("Seeded %d test tasks into %s\n", *count, path)
}
