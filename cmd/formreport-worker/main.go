package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/formreport/pkg/cmd"
	"github.com/dukex/formreport/pkg/jobs"
	"github.com/dukex/formreport/pkg/log"
	"github.com/dukex/formreport/pkg/metrics"
	"github.com/dukex/formreport/pkg/otelhelper"
	"github.com/dukex/formreport/pkg/services"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

func main() {
	_ = godotenv.Load()

	defaults := jobs.DefaultSchedule()

	command := &cli.Command{
		Name:                  "formreport-worker",
		EnableShellCompletion: true,
		Usage:                 "Run scheduled jobs and consume form reporting events",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Sources: cli.EnvVars("WORKER_ID"),
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
				Name:    "redis-url",
				Usage:   "Redis URL for the reminder ledger; reminders are tracked in memory when empty",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "expiry-schedule",
				Usage:   "Cron expression of the assignment expiry job, empty to disable",
				Value:   defaults.ExpireAssignments,
				Sources: cli.EnvVars("EXPIRY_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "escalation-schedule",
				Usage:   "Cron expression of the step escalation job, empty to disable",
				Value:   defaults.Escalations,
				Sources: cli.EnvVars("ESCALATION_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "auto-approve-schedule",
				Usage:   "Cron expression of the auto-approval job, empty to disable",
				Value:   defaults.AutoApprovals,
				Sources: cli.EnvVars("AUTO_APPROVE_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "reminder-schedule",
				Usage:   "Cron expression of the reminder job, empty to disable",
				Value:   defaults.Reminders,
				Sources: cli.EnvVars("REMINDER_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("formreport-worker").With("workerId", workerID)

			logger.InfoContext(ctx, "Initializing Form Report Worker")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var tracer trace.Tracer

			if command.Bool("tracing") {
				t, shutdown, err := otelhelper.NewTracer(ctx, "formreport-worker")
				if err != nil {
					return err
				}

				defer func() {
					err := shutdown(context.Background())
					if err != nil {
						logger.Error("Failed to shutdown tracer provider", "error", err)
					}
				}()

				tracer = t
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(context.Background())
				if err != nil {
					logger.Error("Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "formreport-worker", logger)
			if err != nil {
				return err
			}

			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			var ledger jobs.Ledger

			if redisURL := command.String("redis-url"); redisURL != "" {
				redisLedger, err := jobs.NewRedisLedgerFromURL(ctx, redisURL)
				if err != nil {
					return err
				}

				defer func() { _ = redisLedger.Close() }()

				ledger = redisLedger
			}

			m := metrics.New()
			svc := services.New(persistence, eventBus, m, logger)

			scheduler := jobs.New(svc, eventBus, ledger, m, tracer, logger, jobs.Schedule{
				ExpireAssignments: command.String("expiry-schedule"),
				Escalations:       command.String("escalation-schedule"),
				AutoApprovals:     command.String("auto-approve-schedule"),
				Reminders:         command.String("reminder-schedule"),
			})

			worker := NewWorker(workerID, eventBus, scheduler, m, logger)

			err = worker.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Worker stopped", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
