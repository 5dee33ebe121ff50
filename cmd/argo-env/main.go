package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-trading-env/internal/config"
	"github.com/rxtech-lab/argo-trading-env/internal/logger"
	"github.com/rxtech-lab/argo-trading-env/internal/version"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "argo-env",
		Usage:   "Multi-asset trading environment for reinforcement learning agents",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Aliases: []string{"c"},
				Usage:   "Directory holding config.json / config_<mode>.json and " + config.DefaultEnvFile,
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			validateCommand(),
			schemaCommand(),
			symbolsCommand(),
			simulateCommand(),
			downloadCommand(),
			journalCommand(),
		},
	}
}

// loadConfig loads the configuration of the --config-dir directory.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.NewLoader(cmd.String("config-dir")).Load()
}

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cmd.String("log-level"), err)
	}

	return log, nil
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
