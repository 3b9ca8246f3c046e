package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Capstone-E1/aquasmart_calculators/config"
	httphandlers "github.com/Capstone-E1/aquasmart_calculators/internal/http"
	"github.com/Capstone-E1/aquasmart_calculators/internal/metrics"
	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
	"github.com/Capstone-E1/aquasmart_calculators/internal/mqtt"
	"github.com/Capstone-E1/aquasmart_calculators/internal/services"
	"github.com/Capstone-E1/aquasmart_calculators/internal/store"
	"github.com/Capstone-E1/aquasmart_calculators/internal/ws"
)

func main() {
	log.Println("🌊 Starting AquaSmart Water Treatment Calculators...")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found: %v", err)
	} else {
		log.Println("✅ Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	log.Printf("📋 Loaded configuration: addr=%s, mqtt=%t, rate=%.1f/s burst=%d",
		cfg.Server.Addr(), cfg.MQTT.Enabled(), cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	dataStore := store.NewStore(cfg.Store.MaxSDIReports)
	log.Println("💾 Initialized in-memory data store")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()
	log.Println("🔌 Started WebSocket hub")

	// Calculators and the SDI stopwatch
	session := services.NewSDISession(dataStore)
	session.SetChangeHandler(func(state services.SDISessionState) {
		wsHub.BroadcastTiming(state.Timing)
	})

	stopwatch := services.NewStopwatch(session, services.DefaultTickInterval)
	stopwatch.SetTickHandler(wsHub.BroadcastStopwatchTick)
	stopwatch.SetStateHandler(wsHub.BroadcastStopwatchState)

	scaling := services.NewScalingCalculator(dataStore)

	registry := metrics.NewRegistry()
	registry.RegisterGauge("aquasmart_scaling_history_samples", "Samples in the scaling trend window.", func() float64 {
		return float64(dataStore.GetScalingHistoryCount())
	})
	registry.RegisterGauge("aquasmart_stopwatch_running", "1 while the SDI stopwatch is running.", func() float64 {
		if stopwatch.IsRunning() {
			return 1
		}
		return 0
	})
	registry.RegisterGauge("aquasmart_websocket_clients", "Connected WebSocket clients.", func() float64 {
		return float64(wsHub.GetConnectedClientsCount())
	})

	// Initialize the bench-rig bridge (skip if no broker configured)
	var publisher httphandlers.ResultPublisher
	if cfg.MQTT.Enabled() {
		log.Println("📡 Attempting to connect to MQTT broker...")
		client := mqtt.NewClient(&mqtt.Config{
			BrokerURL:           cfg.MQTT.BrokerURL,
			ClientID:            cfg.MQTT.ClientID,
			Username:            cfg.MQTT.Username,
			Password:            cfg.MQTT.Password,
			KeepAlive:           cfg.MQTT.KeepAlive,
			PingTimeout:         cfg.MQTT.PingTimeout,
			ConnectRetry:        cfg.MQTT.ConnectRetry,
			TopicRigCommand:     cfg.MQTT.TopicRigCommand,
			TopicSDIResults:     cfg.MQTT.TopicSDIResults,
			TopicScalingResults: cfg.MQTT.TopicScalingResults,
		}, func(cmd services.StopwatchCommand) (*services.CommandResult, error) {
			result, err := stopwatch.Execute(cmd)
			if err == nil {
				registry.ObserveStopwatchCommand("mqtt")
			}
			return result, err
		})
		client.SetErrorHandler(func(err error) {
			wsHub.BroadcastError(err.Error())
		})

		if err := client.Connect(); err != nil {
			log.Printf("⚠️  Warning: Failed to connect to MQTT broker: %v", err)
			log.Println("📡 Continuing without MQTT support")
		} else {
			log.Printf("📡 MQTT client connected - Broker: %s", cfg.MQTT.BrokerURL)
			publisher = client
			defer client.Disconnect()
		}
	} else {
		log.Println("📡 MQTT broker not configured, skipping MQTT initialization")
	}

	limiter := httphandlers.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Hot reload of the YAML overlay
	if cfg.File != "" {
		base := config.FromEnv()
		go func() {
			err := config.Watch(ctx, base, cfg.File, func(next *config.Config) {
				limiter.Update(next.RateLimit.RequestsPerSecond, next.RateLimit.Burst)
				log.Printf("🚦 Rate limit updated: %.1f/s burst=%d", next.RateLimit.RequestsPerSecond, next.RateLimit.Burst)
			})
			if err != nil {
				log.Printf("⚠️  Config watcher stopped: %v", err)
			}
		}()
	}

	router := httphandlers.SetupRoutes(httphandlers.Dependencies{
		Store:          dataStore,
		Session:        session,
		Stopwatch:      stopwatch,
		Scaling:        scaling,
		Hub:            wsHub,
		Metrics:        registry,
		Publisher:      publisher,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Printf("🚀 Starting HTTP server on %s", cfg.Server.Addr())
		log.Println("📡 API endpoints available:")
		log.Println("  GET  /api/v1/health - Service status")
		log.Println("  POST /api/v1/sdi/calculate - SDI from Ti, Tf and duration")
		log.Println("  GET  /api/v1/sdi/session - SDI test sheet and result")
		log.Println("  PUT  /api/v1/sdi/session/timing - Update Ti, Tf, duration")
		log.Println("  PUT  /api/v1/sdi/session/info - Update sample information")
		log.Println("  POST /api/v1/sdi/session/calculate - Calculate the test sheet")
		log.Println("  POST /api/v1/sdi/session/reset - Reset the test sheet")
		log.Println("  GET  /api/v1/sdi/reports - Recent SDI tests")
		log.Println("  GET  /api/v1/stopwatch - Stopwatch state")
		log.Println("  POST /api/v1/stopwatch/{start|stop|reset|record-ti|record-tf}")
		log.Println("  POST /api/v1/scaling/calculate - LSI, RSI, PSI, SDSI")
		log.Printf("  GET  /api/v1/scaling/history - Last %d scaling samples", models.HistoryCapacity)
		log.Println("  DELETE /api/v1/scaling/history - Clear the scaling trend")
		log.Println("  GET  /api/v1/export/history.xlsx - Export to Excel")
		log.Println("  GET  /api/v1/export/history.csv - Export trend to CSV")
		log.Println("  GET  /api/v1/export/sdi-report.pdf - SDI test report")
		log.Println("  GET  /metrics - Prometheus metrics")
		log.Println("  WS   /ws - Live stopwatch and results")
		log.Printf("🌐 Server running at http://%s", cfg.Server.Addr())

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	stopwatch.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	wsHub.Stop()
	log.Println("✅ Server shutdown complete")
}
