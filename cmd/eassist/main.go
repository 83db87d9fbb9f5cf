package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"eassist/internal/auth"
	"eassist/internal/config"
	"eassist/internal/handlers"
	"eassist/internal/metrics"
	"eassist/internal/middleware"
	"eassist/internal/realtime"
	"eassist/internal/reports"
	"eassist/internal/store"
	"eassist/internal/utils"
	"eassist/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      *utils.Logger
	users       *auth.UserStore
	sessions    *auth.SessionStore
	tickets     *store.TicketStore
	audit       *store.AuditLog
	settings    *store.SettingsStore
	provider    *metrics.HostProvider
	evaluator   *realtime.AlertEvaluator
	hub         *realtime.Hub
	monitor     *realtime.Monitor
	rateLimiter *middleware.RateLimiter
}

func main() {
	configPath := flag.String("config", "eassist.config.json", "path to the configuration file")
	flag.Parse()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	app.monitor.Start()

	r := setupRouter(app)

	srv := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Starting server on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	app.monitor.Stop()
	app.rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	app.logger.Write("Server stopped")
	app.logger.Close()
	log.Println("Server exited")
}

func newApp(cfg *config.Config) (*App, error) {
	logger := utils.NewLogger(filepath.Join(cfg.DataDir, cfg.LogFile))

	users := auth.NewUserStore(filepath.Join(cfg.DataDir, "users.json"))
	if err := users.Load(); err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	if users.IsEmpty() {
		if err := seedAdmin(users, logger); err != nil {
			return nil, fmt.Errorf("seeding admin account: %w", err)
		}
	}

	tickets := store.NewTicketStore(filepath.Join(cfg.DataDir, "tickets.json"))
	if err := tickets.Load(); err != nil {
		return nil, fmt.Errorf("loading tickets: %w", err)
	}
	audit := store.NewAuditLog(filepath.Join(cfg.DataDir, "audit.json"))
	if err := audit.Load(); err != nil {
		return nil, fmt.Errorf("loading audit log: %w", err)
	}
	settings := store.NewSettingsStore(filepath.Join(cfg.DataDir, "settings.json"))
	if err := settings.Load(); err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	provider := metrics.NewHostProvider("/")
	evaluator := realtime.NewAlertEvaluator(cfg.Cooldown())
	evaluator.SetThreshold("cpu", cfg.CPUThreshold)
	evaluator.SetThreshold("memory", cfg.MemoryThreshold)
	evaluator.SetThreshold("disk", cfg.DiskThreshold)

	hub := realtime.NewHub(logger)
	monitor := realtime.NewMonitor(provider, evaluator, hub, cfg.Interval(), logger)
	hub.SetFetcher(monitor)

	app := &App{
		cfg:         cfg,
		logger:      logger,
		users:       users,
		sessions:    auth.NewSessionStore(users),
		tickets:     tickets,
		audit:       audit,
		settings:    settings,
		provider:    provider,
		evaluator:   evaluator,
		hub:         hub,
		monitor:     monitor,
		rateLimiter: middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	}
	return app, nil
}

// seedAdmin creates the initial admin account on an empty user store. The
// password comes from EASSIST_ADMIN_PASSWORD, or is generated and written to
// the log for first login.
func seedAdmin(users *auth.UserStore, logger *utils.Logger) error {
	password := os.Getenv("EASSIST_ADMIN_PASSWORD")
	generated := false
	if password == "" {
		buf := make([]byte, 12)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		password = base64.RawURLEncoding.EncodeToString(buf)
		generated = true
	}
	if _, err := users.Create("admin", password, "", "Administrator", auth.RoleAdmin); err != nil {
		return err
	}
	if generated {
		logger.Writef("Created initial admin account with password: %s", password)
		log.Printf("Initial admin password: %s (change it after first login)", password)
	} else {
		logger.Write("Created initial admin account from EASSIST_ADMIN_PASSWORD")
	}
	return nil
}

func setupRouter(app *App) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestMetrics())
	r.Use(app.rateLimiter.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "monitor_running": app.monitor.Running()})
	})
	r.GET("/api/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": version.String()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandlers := handlers.NewAuthHandlers(app.users, app.sessions, app.audit, app.logger, app.cfg.SessionTTL())
	userHandlers := handlers.NewUserHandlers(app.users, app.sessions, app.audit, app.logger)
	systemHandlers := handlers.NewSystemHandlers(app.provider, app.audit, app.logger)
	networkHandlers := handlers.NewNetworkHandlers(app.audit)
	toolHandlers := handlers.NewToolHandlers(app.audit, app.logger)
	ticketHandlers := handlers.NewTicketHandlers(app.tickets, app.audit)
	auditHandlers := handlers.NewAuditHandlers(app.audit)
	settingsHandlers := handlers.NewSettingsHandlers(app.evaluator, app.settings, app.audit)
	kbHandlers := handlers.NewKBHandlers()
	reportHandlers := handlers.NewReportHandlers(reports.NewGenerator(app.provider), app.audit)

	settingsHandlers.ApplySaved()

	r.POST("/api/login", authHandlers.Login)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth(app.sessions))
	{
		api.POST("/logout", authHandlers.Logout)
		api.GET("/me", authHandlers.Me)
		api.POST("/me/password", authHandlers.ChangePassword)

		api.GET("/system/current", systemHandlers.Current)
		api.GET("/system/health", systemHandlers.Health)
		api.GET("/system/processes", systemHandlers.Processes)

		api.GET("/network/info", networkHandlers.Info)
		api.POST("/network/ping", networkHandlers.Ping)
		api.POST("/network/dns", networkHandlers.DNS)
		api.POST("/network/port-check", networkHandlers.PortCheck)

		api.GET("/tickets", ticketHandlers.List)
		api.GET("/tickets/stats", ticketHandlers.Stats)
		api.GET("/tickets/:id", ticketHandlers.Get)
		api.POST("/tickets", ticketHandlers.Create)
		api.PATCH("/tickets/:id", ticketHandlers.Update)

		api.GET("/kb", kbHandlers.List)
		api.GET("/kb/categories", kbHandlers.Categories)
		api.GET("/kb/search", kbHandlers.Search)
		api.GET("/kb/:id", kbHandlers.Get)

		api.GET("/settings", settingsHandlers.Get)
		api.GET("/reports", reportHandlers.Generate)
	}

	// Remediation tools mutate host state: admin and technician only.
	tech := api.Group("/")
	tech.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleTechnician))
	{
		tech.POST("system/clean-temp", systemHandlers.CleanTemp)
		tech.POST("network/traceroute", networkHandlers.Traceroute)
		tech.POST("tools/flush-dns", toolHandlers.FlushDNS)
		tech.POST("tools/network-reset", toolHandlers.NetworkReset)
		tech.GET("tools/error-logs", toolHandlers.ErrorLogs)
		tech.DELETE("tickets/:id", ticketHandlers.Delete)
	}

	admin := api.Group("/")
	admin.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("users", userHandlers.List)
		admin.POST("users", userHandlers.Create)
		admin.PATCH("users/:username", userHandlers.Update)
		admin.POST("users/:username/password", userHandlers.ResetPassword)
		admin.POST("users/:username/unlock", userHandlers.Unlock)
		admin.DELETE("users/:username", userHandlers.Delete)
		admin.GET("audit", auditHandlers.List)
		admin.DELETE("audit", auditHandlers.Prune)
		admin.PUT("settings", settingsHandlers.Update)
	}

	// WebSocket endpoint
	r.GET("/ws", app.hub.HandleWebSocket())

	return r
}
