package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"shipstream/internal/config"
)

const usage = "usage: migrate <up|down|steps N|force V|version>"

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, err := migrate.New("file://db/migrations", cfg.DB.DSN())
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()

	if err := run(m, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(m *migrate.Migrate, args []string) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration up failed: %w", err)
		}
		log.Println("schema is up to date")
		return nil

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration down failed: %w", err)
		}
		log.Println("schema rolled back")
		return nil

	case "steps":
		n, err := intArg(args, "steps")
		if err != nil {
			return err
		}
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration steps failed: %w", err)
		}
		log.Printf("applied %d migration steps", n)
		return nil

	case "force":
		// Clears a dirty version marker after a failed migration is repaired by hand.
		v, err := intArg(args, "force")
		if err != nil {
			return err
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force version failed: %w", err)
		}
		log.Printf("schema version forced to %d", v)
		return nil

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func intArg(args []string, cmd string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a number argument", cmd)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid %s argument: %w", cmd, err)
	}
	return n, nil
}
