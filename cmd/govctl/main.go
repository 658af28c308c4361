// Command govctl runs the platform daemon: the four domain orchestrators
// (AI-Ethics, Compliance, Credential-Lifecycle, Incident-Response) behind
// a chi admin HTTP surface, plus a cron-driven sweep loop for the
// housekeeping work no external caller triggers (due rotations, expired
// retention records, stale incident correlation).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/aegisops/govplatform/internal/aiethics"
	"github.com/aegisops/govplatform/internal/compliance"
	"github.com/aegisops/govplatform/internal/credlife"
	"github.com/aegisops/govplatform/internal/incident"
	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/pkg/config"
	"github.com/aegisops/govplatform/pkg/logger"
	"github.com/aegisops/govplatform/pkg/metrics"
)

func main() {
	yamlPath := flag.String("config", "", "path to a YAML config overlay")
	envPath := flag.String("env", "", "path to a .env file")
	flag.Parse()

	cfg, err := config.Load(*yamlPath, *envPath)
	if err != nil {
		os.Stderr.WriteString("govctl: loading config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Service: cfg.Logging.Service,
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
	})

	c := clock.System{}
	m := metrics.New()

	ethics := aiethics.New(c, log, m)
	comply := compliance.New(c, log, m)
	creds := credlife.New(c, log, m)
	resp := incident.New(c, log, m)

	sched := newSweepScheduler(log, creds, comply, resp)
	sched.Start()
	defer sched.Stop()

	srv := newServer(cfg, log, ethics, comply, creds, resp)

	go func() {
		log.Op("server", "listen").Infof("listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Op("server", "listen").WithError(err).Fatal("server exited")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

// server bundles the chi router over every orchestrator's admin routes.
type server struct {
	*http.Server
}

func newServer(cfg config.Config, log *logger.Logger, ethics *aiethics.Orchestrator, comply *compliance.Orchestrator, creds *credlife.Orchestrator, resp *incident.Orchestrator) *server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(50), 100)))

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	jwtSecret := []byte(os.Getenv("GOVCTL_JWT_SECRET"))
	if len(jwtSecret) == 0 {
		jwtSecret = []byte("development-only-secret-change-me-32b")
		log.Op("server", "startup").Warn("GOVCTL_JWT_SECRET not set, using an insecure development default")
	}

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(jwtMiddleware(jwtSecret))

		admin.Get("/aiethics/summary", jsonHandler(func() any { return ethics.GetSummary() }))
		admin.Get("/compliance/summary", jsonHandler(func() any { return comply.GetSummary() }))
		admin.Get("/credlife/summary", jsonHandler(func() any { return creds.GetSummary() }))
		admin.Get("/incident/summary", jsonHandler(func() any { return resp.GetSummary() }))
	})

	return &server{Server: &http.Server{
		Addr:              addr(cfg),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func addr(cfg config.Config) string {
	host := cfg.Server.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	return host + ":" + strconv.Itoa(port)
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func jsonHandler(f func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f())
	}
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			next.ServeHTTP(w, r)
			log.Op("server", "request").WithField("path", r.URL.Path).WithField("duration_ms", time.Since(started).Milliseconds()).Info("handled request")
		})
	}
}

// rateLimitMiddleware rejects requests once the shared token bucket is
// exhausted, ahead of any per-domain evaluator work.
func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// jwtMiddleware requires a valid Bearer token signed with secret on every
// /admin route.
func jwtMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if len(raw) <= len(prefix) || raw[:len(prefix)] != prefix {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			token, err := jwt.Parse(raw[len(prefix):], func(t *jwt.Token) (any, error) {
				return secret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sweepScheduler drives the periodic housekeeping work the admin surface
// never triggers directly: due-rotation checks, expired-retention
// deletion, and incident-backlog visibility.
type sweepScheduler struct {
	cron   *cron.Cron
	log    *logger.Logger
	creds  *credlife.Orchestrator
	comply *compliance.Orchestrator
	resp   *incident.Orchestrator
}

func newSweepScheduler(log *logger.Logger, creds *credlife.Orchestrator, comply *compliance.Orchestrator, resp *incident.Orchestrator) *sweepScheduler {
	s := &sweepScheduler{cron: cron.New(), log: log, creds: creds, comply: comply, resp: resp}

	_, _ = s.cron.AddFunc("@every 1h", s.sweepDueRotations)
	_, _ = s.cron.AddFunc("@every 6h", s.sweepExpiredRetention)
	_, _ = s.cron.AddFunc("@every 15m", s.sweepIncidentBacklog)

	return s
}

func (s *sweepScheduler) Start() { s.cron.Start() }
func (s *sweepScheduler) Stop()  { <-s.cron.Stop().Done() }

func (s *sweepScheduler) sweepDueRotations() {
	due := s.creds.Rotation.CheckDueRotations()
	s.log.Op("credlife", "sweep_due_rotations").WithField("due_count", len(due.Due)).Info("checked rotation schedules")
}

func (s *sweepScheduler) sweepExpiredRetention() {
	deleted := s.comply.Retention.AutoDeleteExpired(clock.System{})
	s.log.Op("compliance", "sweep_expired_retention").WithField("deleted_count", len(deleted.DeletedIDs)).Info("swept expired retention records")
}

func (s *sweepScheduler) sweepIncidentBacklog() {
	summary := s.resp.Detector.GetSummary()
	s.log.Op("incident", "sweep_incident_backlog").WithField("active", summary.Stats["active"]).Info("checked incident backlog")
}
