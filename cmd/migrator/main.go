package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"eventsite/internal/storage"
)

func main() {
	var databaseURL, direction string
	var steps int
	flag.StringVar(&databaseURL, "database_url", os.Getenv("DATABASE_URL"), "database URL")
	flag.StringVar(&direction, "direction", "up", "up, down or version")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply, 0 means all (down defaults to 1)")
	flag.Parse()

	if databaseURL == "" {
		panic("database URL is required")
	}

	m, err := storage.NewMigrator(databaseURL)
	if err != nil {
		panic(err)
	}
	defer m.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps <= 0 {
			steps = 1
		}
		err = m.Steps(-steps)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		if verr != nil {
			panic(verr)
		}
		fmt.Printf("version %d (dirty: %v)\n", version, dirty)
		return
	default:
		panic(fmt.Sprintf("unknown direction %q", direction))
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no migrations to apply")

			return
		}

		panic(err)
	}

	fmt.Println("Migrations applied")
}
