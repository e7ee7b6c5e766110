// Command scribe serves the clinical note API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/scribe/app"
	"github.com/kbukum/scribe/bootstrap"
	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/version"
)

func main() {
	var (
		configPath  string
		envPath     string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&envPath, "env", "", "Path to .env file")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version.Get().Short())
		return
	}

	if err := run(configPath, envPath); err != nil {
		fmt.Fprintf(os.Stderr, "scribe: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envPath string) error {
	cfg, err := app.LoadConfig(config.WithConfigFile(configPath), config.WithEnvFile(envPath))
	if err != nil {
		return err
	}
	cfg.Version = version.Resolve(cfg.Version)

	a, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	if _, err := app.Register(a); err != nil {
		return err
	}
	return a.Run(context.Background())
}
