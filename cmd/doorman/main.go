package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "doorman",
		Usage:   "join-screening moderation daemon",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "bridge-host",
			Usage:    "base URL of the platform bridge the gateway calls",
			Required: true,
			EnvVars:  []string{"DOORMAN_BRIDGE_HOST"},
		},
		&cli.StringFlag{
			Name:    "bridge-token",
			Usage:   "bearer token for the platform bridge",
			EnvVars: []string{"DOORMAN_BRIDGE_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "denylist-file",
			Usage:   "path of the persisted fingerprint denylist",
			Value:   "data/doorman/denylist.txt",
			EnvVars: []string{"DOORMAN_DENYLIST_FILE"},
		},
		&cli.StringFlag{
			Name:    "audit-log-file",
			Usage:   "path of the append-only ban action log",
			Value:   "data/doorman/banlog.txt",
			EnvVars: []string{"DOORMAN_AUDIT_LOG_FILE"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL; when set, counters and the denylist live in redis",
			EnvVars: []string{"DOORMAN_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "warn-channel",
			Usage:   "channel ID interactive warning notices are published to",
			EnvVars: []string{"DOORMAN_WARN_CHANNEL"},
		},
		&cli.StringFlag{
			Name:    "ping-channel",
			Usage:   "channel ID ping reports and congratulations go to",
			EnvVars: []string{"DOORMAN_PING_CHANNEL"},
		},
		&cli.StringSliceFlag{
			Name:    "lfg-channels",
			Usage:   "channel IDs whose messages count toward ping totals",
			EnvVars: []string{"DOORMAN_LFG_CHANNELS"},
		},
		&cli.Int64Flag{
			Name:    "age-threshold-days",
			Usage:   "suppress screening of accounts at least this old",
			Value:   30,
			EnvVars: []string{"DOORMAN_AGE_THRESHOLD_DAYS"},
		},
		&cli.DurationFlag{
			Name:    "reconcile-window",
			Usage:   "maximum age of an open warning before the sweeper evicts it",
			Value:   10 * time.Minute,
			EnvVars: []string{"DOORMAN_RECONCILE_WINDOW"},
		},
		&cli.DurationFlag{
			Name:    "sweep-interval",
			Usage:   "how often the removal-detector poll runs over open warnings",
			Value:   time.Minute,
			EnvVars: []string{"DOORMAN_SWEEP_INTERVAL"},
		},
		&cli.DurationFlag{
			Name:    "ping-report-interval",
			Usage:   "how often the ping report is published",
			Value:   30 * 24 * time.Hour,
			EnvVars: []string{"DOORMAN_PING_REPORT_INTERVAL"},
		},
		&cli.StringFlag{
			Name:    "admin-bind",
			Usage:   "IP or address, and port, to listen on for the admin HTTP API",
			Value:   ":3899",
			EnvVars: []string{"DOORMAN_ADMIN_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3898",
			EnvVars: []string{"DOORMAN_METRICS_LISTEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		srv, err := NewServer(Config{
			Logger:             logger,
			BridgeHost:         cctx.String("bridge-host"),
			BridgeToken:        cctx.String("bridge-token"),
			DenylistFile:       cctx.String("denylist-file"),
			AuditLogFile:       cctx.String("audit-log-file"),
			RedisURL:           cctx.String("redis-url"),
			WarnChannelID:      cctx.String("warn-channel"),
			PingChannelID:      cctx.String("ping-channel"),
			LFGChannelIDs:      cctx.StringSlice("lfg-channels"),
			AgeThresholdDays:   cctx.Int64("age-threshold-days"),
			ReconcileWindow:    cctx.Duration("reconcile-window"),
			SweepInterval:      cctx.Duration("sweep-interval"),
			PingReportInterval: cctx.Duration("ping-report-interval"),
			AdminBind:          cctx.String("admin-bind"),
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(err)
			}
		}()

		return srv.Run(ctx)
	},
}
