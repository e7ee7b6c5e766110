// Command scribe-seed inserts the demo patients. Patients that already
// exist by name are left alone, so it is safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/scribe/app"
	"github.com/kbukum/scribe/bootstrap"
	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/patient"
	"github.com/kbukum/scribe/version"
)

func main() {
	var configPath, envPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&envPath, "env", "", "Path to .env file")
	flag.Parse()

	if err := run(configPath, envPath); err != nil {
		fmt.Fprintf(os.Stderr, "scribe-seed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envPath string) error {
	cfg, err := app.LoadSeedConfig(config.WithConfigFile(configPath), config.WithEnvFile(envPath))
	if err != nil {
		return err
	}
	cfg.Version = version.Resolve(cfg.Version)

	a, err := bootstrap.NewApp(cfg, bootstrap.WithoutSummary())
	if err != nil {
		return err
	}
	db := app.NewDatabase(cfg.Database, a.Logger)
	if err := a.RegisterComponent(db); err != nil {
		return err
	}

	return a.RunTask(context.Background(), func(ctx context.Context) error {
		n, err := patient.Seed(ctx, patient.NewRepository(db.DB()), patient.DefaultSeed, a.Logger)
		if err != nil {
			return err
		}
		a.Logger.Info("Seeding complete", logger.Fields("created", n))
		return nil
	})
}
