package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-trading-env/internal/config"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Load and validate the configuration, then print it",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal configuration: %w", err)
			}

			fmt.Fprintln(cmd.Root().Writer, TitleStyle.Render("configuration ok: ")+cfg.Source)
			fmt.Fprint(cmd.Root().Writer, string(data))

			return nil
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the schema to `FILE` instead of stdout",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			schema, err := config.SchemaJSON()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}

			output := cmd.String("output")
			if output == "" {
				fmt.Fprintln(cmd.Root().Writer, schema)

				return nil
			}

			if err := os.WriteFile(output, []byte(schema+"\n"), 0644); err != nil {
				return fmt.Errorf("failed to write schema to %s: %w", output, err)
			}

			fmt.Fprintln(cmd.Root().Writer, "Schema written to "+output)

			return nil
		},
	}
}
