package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/urfave/cli/v2"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/config"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
)

var flagDriver = &cli.StringFlag{
	Name:    "driver",
	Usage:   "SQL backend: mysql or postgres (defaults to STORE_DRIVER)",
	EnvVars: []string{"STORE_DRIVER"},
	Value:   config.StoreMySQL,
}

var flagPath = &cli.StringFlag{
	Name:  "path",
	Usage: "Directory holding the per-driver migration folders",
	Value: "migrations",
}

func main() {
	env.SetupEnvFile()

	app := &cli.App{
		Name:  "migrate",
		Usage: "Apply SQL schema migrations",
		Flags: []cli.Flag{flagDriver, flagPath},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(cCtx *cli.Context) error {
					return withMigrate(cCtx, func(m *migrate.Migrate) error {
						if err := m.Up(); err != nil {
							if errors.Is(err, migrate.ErrNoChange) {
								log.Println("no change: database is up to date")
								return nil
							}
							return fmt.Errorf("apply migrations: %w", err)
						}
						log.Println("migrations applied")
						return nil
					})
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the last migration",
				Action: func(cCtx *cli.Context) error {
					return withMigrate(cCtx, func(m *migrate.Migrate) error {
						if err := m.Steps(-1); err != nil {
							return fmt.Errorf("roll back: %w", err)
						}
						log.Println("last migration rolled back")
						return nil
					})
				},
			},
			{
				Name:      "goto",
				Usage:     "Migrate to version N",
				ArgsUsage: "N",
				Action: func(cCtx *cli.Context) error {
					version, err := strconv.ParseUint(cCtx.Args().First(), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid version %q: %w", cCtx.Args().First(), err)
					}
					return withMigrate(cCtx, func(m *migrate.Migrate) error {
						if err := m.Migrate(uint(version)); err != nil {
							if errors.Is(err, migrate.ErrNoChange) {
								log.Printf("no change: database is already at version %d", version)
								return nil
							}
							return fmt.Errorf("migrate to %d: %w", version, err)
						}
						log.Printf("migrated to version %d", version)
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "Show the current migration version",
				Action: func(cCtx *cli.Context) error {
					return withMigrate(cCtx, func(m *migrate.Migrate) error {
						version, dirty, err := m.Version()
						if errors.Is(err, migrate.ErrNilVersion) {
							log.Println("no migrations applied yet")
							return nil
						}
						if err != nil {
							return fmt.Errorf("read version: %w", err)
						}
						suffix := ""
						if dirty {
							suffix = " (dirty)"
						}
						log.Printf("current version: %d%s", version, suffix)
						return nil
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func withMigrate(cCtx *cli.Context, fn func(m *migrate.Migrate) error) error {
	driver := cCtx.String(flagDriver.Name)
	dbURL, err := databaseURL(driver, config.Load().DB)
	if err != nil {
		return err
	}
	source := fmt.Sprintf("file://%s/%s", cCtx.String(flagPath.Name), driver)

	m, err := migrate.New(source, dbURL)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("closing migrate: %v, %v", sourceErr, dbErr)
		}
	}()
	return fn(m)
}

// databaseURL builds the golang-migrate connection URL for driver.
func databaseURL(driver string, c config.DBConfig) (string, error) {
	switch driver {
	case config.StoreMySQL:
		return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
			c.User, c.Password, c.Host, c.Port, c.Name), nil
	case config.StorePostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host + ":" + c.Port,
			Path:     "/" + c.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("migrations are not supported for driver %q", driver)
	}
}
