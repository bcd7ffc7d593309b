package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/coldwatch/coldwatch/internal/alert"
	"github.com/coldwatch/coldwatch/internal/api"
	"github.com/coldwatch/coldwatch/internal/auth"
	"github.com/coldwatch/coldwatch/internal/config"
	"github.com/coldwatch/coldwatch/internal/heartbeat"
	"github.com/coldwatch/coldwatch/internal/ingest"
	"github.com/coldwatch/coldwatch/internal/model"
	"github.com/coldwatch/coldwatch/internal/notify"
	"github.com/coldwatch/coldwatch/internal/rules"
	"github.com/coldwatch/coldwatch/internal/sched"
	"github.com/coldwatch/coldwatch/internal/store"
	"github.com/coldwatch/coldwatch/internal/ws"
)

// composedStore is the union of store capabilities the wiring hands out.
type composedStore interface {
	alert.Store
	rules.SnapshotSource
	ingest.Store
	api.Store
	SaveUser(ctx context.Context, u *model.User) error
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("coldwatch-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	srv := cfg.Server

	slog.Info("config loaded",
		"http_port", srv.HTTPPort,
		"offline_interval", srv.Checks.Offline.Interval,
		"power_interval", srv.Checks.Power.Interval,
		"door_interval", srv.Checks.Door.Interval,
		"expiry_interval", srv.Checks.Expiry.Interval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Persistence: MySQL when a DSN is configured, in-memory otherwise.
	var st composedStore
	if dsn := srv.DB.DSN(); dsn != "" {
		g, err := store.OpenGorm(dsn)
		if err != nil {
			slog.Error("failed to open database", "err", err)
			os.Exit(1)
		}
		st = g
	} else {
		slog.Warn("no database DSN configured, using in-memory store")
		st = store.NewMemory()
	}

	// Dedupe gate: Redis for multi-instance deployments, in-process otherwise.
	var gate alert.Gate
	if srv.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: srv.Redis.Addr, DB: srv.Redis.DB})
		gate = alert.NewRedisGate(client)
		slog.Info("dedupe gate: redis", "addr", srv.Redis.Addr)
	} else {
		gate = alert.NewMemoryGate()
	}

	// Notification channels.
	senders := make(map[string]notify.Sender)
	if smtp := srv.Notify.SMTP; smtp.Addr() != "" {
		senders["email"] = notify.NewEmail(smtp.Addr(), smtp.From, smtp.To, smtp.Username(), smtp.Password())
	}
	if url := srv.Notify.SMS.URL(); url != "" {
		senders["sms"] = notify.NewWebhook(url)
	}
	if url := srv.Notify.Webhook.URL(); url != "" {
		senders["webhook"] = notify.NewWebhook(url)
	}
	notifier := notify.NewFanout(senders)

	// Live alert stream.
	hub := ws.New()
	go hub.Run(ctx)

	dispatcher := alert.NewDispatcher(st, notifier, gate, hub)
	ingestSvc := ingest.NewService(st, dispatcher)

	// MQTT reading consumer (optional).
	if srv.MQTT.BrokerURL != "" {
		consumer := ingest.NewMQTT(ingestSvc, srv.MQTT.BrokerURL, srv.MQTT.Topic,
			srv.MQTT.ClientID, srv.MQTT.Username(), srv.MQTT.Password())
		if err := consumer.Connect(); err != nil {
			slog.Error("mqtt connect failed, readings over MQTT disabled", "err", err)
		} else {
			defer consumer.Close()
		}
	}

	// Gateway heartbeats: Kafka consumer when brokers are configured.
	var beats rules.HeartbeatProvider
	if len(srv.Kafka.Brokers) > 0 {
		k := heartbeat.NewKafka(srv.Kafka.Brokers, srv.Kafka.HeartbeatTopic, srv.Kafka.Group)
		go k.Run(ctx)
		beats = k
	} else {
		beats = heartbeat.NewStatic(nil)
	}

	jobs := rules.NewJobs(st, beats, dispatcher, checkOptions(srv.Checks))

	scheduler := sched.New()
	scheduler.Register("sensor_offline_check", srv.Checks.Offline.Interval, jobs.CheckSensorOffline)
	scheduler.Register("power_failure_check", srv.Checks.Power.Interval, jobs.CheckPowerFailure)
	scheduler.Register("door_ajar_check", srv.Checks.Door.Interval, jobs.CheckDoorAjar)
	scheduler.Register("expiry_check", srv.Checks.Expiry.Interval, jobs.CheckItemExpiry)

	schedDone := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(schedDone)
	}()

	// Hot-reload check windows on config change. Intervals stay fixed until
	// restart; the scheduler owns them.
	go func() {
		if err := config.Watch(ctx, *configPath, func(c *config.Config) {
			jobs.SetOptions(checkOptions(c.Server.Checks))
		}); err != nil {
			slog.Warn("config watch disabled", "err", err)
		}
	}()

	tokens := auth.NewService(srv.Auth.Secret(), srv.Auth.TokenTTL)
	if srv.Auth.Secret() == "" {
		slog.Warn("auth: no JWT secret configured, tokens signed with empty key")
	}

	handler := api.New(st, ingestSvc, tokens, map[string]api.Check{
		"offline": jobs.CheckSensorOffline,
		"power":   jobs.CheckPowerFailure,
		"door":    jobs.CheckDoorAjar,
		"expiry":  jobs.CheckItemExpiry,
	}, hub)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", srv.HTTPPort),
		Handler: handler,
	}
	go func() {
		slog.Info("HTTP server listening", "port", srv.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("coldwatch-server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	<-schedDone
}

func checkOptions(c config.ChecksConfig) rules.Options {
	return rules.Options{
		OfflineWindow:    c.Offline.Window,
		PowerTimeout:     c.Power.Timeout,
		DoorOpenValue:    c.Door.OpenValue,
		DoorMaxOpen:      c.Door.MaxOpen,
		ExpiryDaysBefore: c.Expiry.DaysBefore,
	}
}
