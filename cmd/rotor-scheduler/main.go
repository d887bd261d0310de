// Rotor Scheduler — демон ротации подписок.
//
// Scheduler:
//   - Опрашивает due-расписания в PostgreSQL
//   - Ротирует секрет подписки на панели и запрашивает свежие ссылки
//   - Доставляет уведомление в Telegram и гасит предыдущее
//   - Публикует события ротации в RabbitMQ (опционально)
//
// Среди реплик лидер один: advisory lock в PostgreSQL.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Rotor/internal/config"
	"github.com/shaiso/Rotor/internal/mq"
	"github.com/shaiso/Rotor/internal/notify"
	"github.com/shaiso/Rotor/internal/panel"
	"github.com/shaiso/Rotor/internal/repo"
	"github.com/shaiso/Rotor/internal/scheduler"
	"github.com/shaiso/Rotor/internal/telemetry"
)

const rotorLockKey int64 = 727272

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting rotor-scheduler")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.TelegramToken == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Репозитории
	scheduleRepo := repo.NewScheduleRepo(pool)
	selectionRepo := repo.NewSelectionRepo(pool)
	panelRepo := repo.NewPanelRepo(pool)
	bindingRepo := repo.NewBindingRepo(pool)
	stateRepo := repo.NewMessageStateRepo(pool)

	// RabbitMQ: события ротации опциональны
	var publisher *mq.Publisher
	if cfg.AMQPURL != "" {
		mqConn, err := mq.NewConnection(cfg.AMQPURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, rotation events disabled", "error", err)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}

			publisher = mq.NewPublisher(mqConn, logger)
		}
	}

	// Telegram
	tg, err := notify.NewTelegramClient(cfg.TelegramToken)
	if err != nil {
		logger.Error("failed to initialize telegram client", "error", err)
		os.Exit(1)
	}

	sch := scheduler.New(scheduler.Config{
		Schedules:  scheduleRepo,
		Selections: selectionRepo,
		Panels:     panelRepo,
		Bindings:   bindingRepo,
		Clients:    scheduler.RegistryProvider{Registry: panel.NewRegistry()},
		Deliverer:  notify.NewDeliverer(tg, stateRepo, logger),
		Publisher:  publisher,
		Logger:     logger,
		Timezone:   cfg.Timezone,
		BatchSize:  cfg.BatchSize,
	})

	// scheduler loop
	go func() {
		tk := time.NewTicker(cfg.PollInterval)
		defer tk.Stop()

		var hasLock bool
		defer func() {
			if hasLock {
				_, _ = pool.Exec(context.Background(), "select pg_advisory_unlock($1)", rotorLockKey)
			}
		}()

		for {
			select {
			case <-tk.C:
				// пытаемся стать лидером (или подтвердить лидерство)
				if !hasLock {
					var ok bool
					if err := pool.QueryRow(ctx, "select pg_try_advisory_lock($1)", rotorLockKey).Scan(&ok); err != nil {
						logger.Warn("leader lock attempt failed", "error", err)
						continue
					}
					hasLock = ok
					if ok {
						logger.Info("became scheduler leader")
					}
				}

				if !hasLock {
					// не лидер — пропускаем тик
					continue
				}

				if err := sch.Tick(ctx); err != nil {
					logger.Error("tick failed", "error", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := http.ListenAndServe(cfg.HTTPAddr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения, дожидаемся запусков в полёте
	<-ctx.Done()
	sch.Wait()
	logger.Info("rotor-scheduler stopped")
}
