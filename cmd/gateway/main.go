// Command gateway runs the Warden safety gate: an HTTP service that
// evaluates (query, response, domain) triples and returns a decision with
// its full audit trail. It also ships a one-shot CLI evaluation mode for
// pipelines and debugging.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wardenlabs/warden/pkg/audit"
	"github.com/wardenlabs/warden/pkg/cache"
	"github.com/wardenlabs/warden/pkg/config"
	"github.com/wardenlabs/warden/pkg/engine"
	"github.com/wardenlabs/warden/pkg/httputil"
	"github.com/wardenlabs/warden/pkg/rules"
	"github.com/wardenlabs/warden/pkg/scoring"
	"github.com/wardenlabs/warden/pkg/telemetry"
)

const Version = "1.0.0"

// auditDispatchCapacity bounds concurrent fire-and-forget sink writes.
const auditDispatchCapacity = 256

func main() {
	if len(os.Args) < 2 {
		runServer()
		return
	}

	switch os.Args[1] {
	case "serve":
		runServer()
	case "eval":
		if len(os.Args) < 5 {
			fmt.Println("Usage: warden eval <domain> <query> <response>")
			os.Exit(1)
		}
		runCLIEval(os.Args[2], os.Args[3], os.Args[4])
	case "version":
		fmt.Printf("Warden v%s\n", Version)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Warden v%s - AI response safety gate\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  warden serve                            Start the HTTP gateway")
	fmt.Println("  warden eval <domain> <query> <response> Evaluate one exchange and print the trail")
	fmt.Println("  warden version                          Show version")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  WARDEN_LISTEN_ADDR        Listen address (default :8080)")
	fmt.Println("  WARDEN_RULES_PATH         Optional YAML rules file")
	fmt.Println("  WARDEN_REDIS_URL          Optional Redis result cache")
	fmt.Println("  WARDEN_POSTGRES_DSN       Optional Postgres audit sink")
	fmt.Println("  WARDEN_AUDIT_WEBHOOK_URL  Optional webhook audit sink")
	fmt.Println("  WARDEN_AUDIT_LOG          JSONL audit log (default audit_events.jsonl)")
}

func buildLogger(cfg *config.Config) *zap.Logger {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zc.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// buildEngine assembles the evaluation pipeline from config plus the
// optional rules file. File values win over environment thresholds.
func buildEngine(cfg *config.Config, logger *zap.Logger) (*engine.Engine, error) {
	rf, err := config.LoadRulesFile(cfg.RulesPath)
	if err != nil {
		return nil, err
	}

	thresholds := engine.Thresholds{
		EscalationScore: cfg.EscalationScore,
		ConfidenceFloor: cfg.ConfidenceFloor,
	}
	if rf.EscalationScore != 0 {
		thresholds.EscalationScore = rf.EscalationScore
	}
	if rf.ConfidenceFloor != 0 {
		thresholds.ConfidenceFloor = rf.ConfidenceFloor
	}

	return engine.New(engine.Options{
		Registry:   rules.Build(rf.Rules, logger),
		Confidence: scoring.NewConfidenceScorer(rf.HedgingVocabulary),
		Similarity: scoring.NewSimilarityScorer(rf.SafeExemplars),
		Thresholds: thresholds,
		Logger:     logger,
	}), nil
}

func buildSinks(cfg *config.Config, logger *zap.Logger) (audit.Sink, error) {
	var sinks []audit.Sink

	if cfg.AuditLogPath != "" {
		jsonl, err := audit.NewJSONL(cfg.AuditLogPath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, jsonl)
	}

	if cfg.PostgresDSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pg, err := audit.NewPostgres(ctx, cfg.PostgresDSN, cfg.AuditRetention, logger)
		cancel()
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, pg)
		logger.Info("postgres audit sink enabled", zap.Duration("retention", cfg.AuditRetention))
	}

	if cfg.AuditWebhookURL != "" {
		sinks = append(sinks, audit.NewWebhook(cfg.AuditWebhookURL))
		logger.Info("webhook audit sink enabled")
	}

	if len(sinks) == 0 {
		return audit.NopSink{}, nil
	}
	return audit.NewMulti(logger, sinks...), nil
}

func buildCache(cfg *config.Config, logger *zap.Logger) cache.ResultCache {
	if cfg.RedisURL == "" {
		return cache.Nop{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		logger.Warn("redis cache unavailable, running without result cache", zap.Error(err))
		return cache.Nop{}
	}
	logger.Info("redis result cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	return rc
}

func runServer() {
	cfg := config.NewDefaultConfig()
	logger := buildLogger(cfg)
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("configuration invalid", zap.Error(err))
	}

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Fatal("engine init failed", zap.Error(err))
	}
	sink, err := buildSinks(cfg, logger)
	if err != nil {
		logger.Fatal("audit sink init failed", zap.Error(err))
	}
	results := buildCache(cfg, logger)
	counters := telemetry.NewCounters()
	dispatch := httputil.NewSemaphore(auditDispatchCapacity)

	app := fiber.New(fiber.Config{AppName: "Warden"})

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"version":  Version,
			"patterns": eng.PatternCount(),
		})
	})

	app.Get("/v1/stats", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"evaluations": counters.Snapshot(),
			"audit_dispatch": fiber.Map{
				"in_flight": dispatch.InUse(),
				"dropped":   dispatch.Dropped(),
			},
			"patterns": eng.PatternCount(),
		})
	})

	app.Post("/v1/evaluate", func(c fiber.Ctx) error {
		var req engine.Request
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		// Cache lookup by content fingerprint; a hit replays the stored
		// decision without re-running the pipeline.
		fp := engine.Fingerprint(req.Query, req.Response, rules.ParseDomain(req.Domain))
		if cached, ok, err := results.Get(c.Context(), fp); err == nil && ok {
			counters.RecordCacheHit()
			counters.RecordDecision(cached.Decision, cached.Reason)
			return c.JSON(cached)
		}
		counters.RecordCacheMiss()

		decision, trail, err := eng.Evaluate(req)
		if err != nil {
			if errors.Is(err, engine.ErrInvalidInput) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "evaluation failed"})
		}
		counters.RecordDecision(decision, trail.Reason)

		// Persist and cache off the request path. At dispatch capacity the
		// write is dropped and counted; the caller still gets the decision.
		if dispatch.TryAcquire() {
			go func(t *engine.AuditTrail) {
				defer dispatch.Release()
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := sink.Write(ctx, t); err != nil {
					logger.Warn("audit write failed", zap.String("audit_id", t.AuditID), zap.Error(err))
				}
				if err := results.Set(ctx, t); err != nil {
					logger.Warn("cache write failed", zap.String("fingerprint", t.Fingerprint), zap.Error(err))
				}
			}(trail)
		} else {
			logger.Warn("audit dispatch at capacity, dropping write",
				zap.String("audit_id", trail.AuditID))
		}

		return c.JSON(trail)
	})

	// Serve until interrupted, then drain.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.ShutdownWithContext(shutdownCtx)
	}()

	logger.Info("warden gateway listening",
		zap.String("addr", cfg.ListenAddr),
		zap.Int("patterns", eng.PatternCount()))
	if err := app.Listen(cfg.ListenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}

	if err := sink.Close(); err != nil {
		logger.Warn("audit sink close", zap.Error(err))
	}
	if err := results.Close(); err != nil {
		logger.Warn("cache close", zap.Error(err))
	}
}

func runCLIEval(domain, query, response string) {
	cfg := config.NewDefaultConfig()
	logger := zap.NewNop()

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine init: %v\n", err)
		os.Exit(1)
	}

	_, trail, err := eng.Evaluate(engine.Request{
		Query:    query,
		Response: response,
		Domain:   domain,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluate: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(trail, "", "  ")
	fmt.Println(string(out))
}
