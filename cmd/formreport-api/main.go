package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dukex/formreport/pkg/cmd"
	"github.com/dukex/formreport/pkg/log"
	"github.com/dukex/formreport/pkg/metrics"
	"github.com/dukex/formreport/pkg/web"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "formreport-api",
		Usage:                 "Serve the form reporting REST API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "jwt-secret",
				Usage:   "HS256 secret for bearer tokens; when empty the X-User-ID header is trusted",
				Sources: cli.EnvVars("JWT_SECRET"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			tokenCommand(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Form Report API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "formreport-api", logger)
			if err != nil {
				return err
			}

			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				persistence,
				eventBus,
				metrics.New(),
				command.String("jwt-secret"),
			)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "API server stopped", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

// tokenCommand issues bearer tokens for local use against an API started with the same secret.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue a signed bearer token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "jwt-secret",
				Required: true,
				Sources:  cli.EnvVars("JWT_SECRET"),
			},
			&cli.StringFlag{
				Name:     "user-id",
				Usage:    "Subject of the token",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "tenant-id",
				Usage: "Tenant of the user",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Token lifetime",
				Value: 24 * time.Hour,
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			token, err := web.SignToken(command.String("jwt-secret"), web.Identity{
				UserID:   command.String("user-id"),
				TenantID: command.String("tenant-id"),
			}, command.Duration("ttl"))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(os.Stdout, token)

			return err
		},
	}
}
