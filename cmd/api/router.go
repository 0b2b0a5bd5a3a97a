package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	c "connectrpc.com/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/handler"
	"github.com/FACorreiaa/smart-expense-tracker/pkg/interceptors"
	"github.com/FACorreiaa/smart-expense-tracker/pkg/observability"
)

// SetupRouter configures all routes and returns the HTTP service
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	jwtSecret := []byte(deps.Config.Auth.JWTSecret)
	if len(jwtSecret) == 0 {
		deps.Logger.Warn("JWT secret is empty; authentication interceptor will reject requests")
	}

	// Previewing a parse needs no account.
	publicProcedures := []string{
		handler.ExpenseServiceParseExpenseProcedure,
		handler.ExpenseServiceParseExpensesProcedure,
	}

	tracer := otel.GetTracerProvider().Tracer("expense/api")

	chain := []connect.Interceptor{
		interceptors.NewRequestIDInterceptor("X-Request-ID"),
		interceptors.NewTracingInterceptor(tracer),
	}
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		chain = append(chain, interceptors.NewRateLimitInterceptor(limiter))
	}
	chain = append(chain,
		interceptors.NewRecoveryInterceptor(deps.Logger),
		interceptors.NewLoggingInterceptor(deps.Logger),
		interceptors.NewAuthInterceptor(jwtSecret, publicProcedures...),
		observability.NewMetricsInterceptor(),
	)

	// Register Connect RPC routes
	registerConnectRoutes(mux, deps, connect.WithInterceptors(chain...))

	// Register health and metrics routes
	registerUtilityRoutes(mux, deps)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   c.AllowedMethods(),
		AllowedHeaders:   append(c.AllowedHeaders(), "Authorization", "X-Request-ID"),
		ExposedHeaders:   append(c.ExposedHeaders(), "X-Request-ID"),
		AllowCredentials: true,
		MaxAge:           7200, // Cache preflights for 2 hours
	})

	return corsHandler.Handler(mux)
}

// registerConnectRoutes registers all Connect RPC services
func registerConnectRoutes(mux *http.ServeMux, deps *Dependencies, opts connect.HandlerOption) {
	expensePath, expenseHandler := handler.NewExpenseServiceHandler(deps.ExpenseHandler, opts)
	mux.Handle(expensePath, limitBody(expenseHandler))
	deps.Logger.Info("registered Connect RPC service", slog.String("path", expensePath))

	deps.Logger.Info("Connect RPC routes configured")
}

func limitBody(next http.Handler) http.Handler {
	const maxBodyBytes int64 = 1 << 20 // 1 MiB

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		next.ServeHTTP(w, r)
	})
}

// registerUtilityRoutes registers health check, metrics, and other utility routes
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		if err := deps.DB.Health(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, writeErr := w.Write([]byte("database unhealthy")); writeErr != nil {
				deps.Logger.Error("failed to write health response", slog.Any("error", writeErr))
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			deps.Logger.Error("failed to write health response", slog.Any("error", err))
		}
	})
	deps.Logger.Info("registered health check", slog.String("path", "/health"))

	// Extended health with details on dependencies/env
	mux.HandleFunc("/health/details", func(w http.ResponseWriter, _ *http.Request) {
		type status struct {
			Status string `json:"status"`
			Detail string `json:"detail,omitempty"`
		}
		result := map[string]status{
			"db":     {Status: "ok"},
			"env":    {Status: "ok"},
			"parser": {Status: "ok"},
			"ready":  {Status: "ok"},
		}

		if err := deps.DB.Health(); err != nil {
			result["db"] = status{Status: "fail", Detail: err.Error()}
			result["ready"] = status{Status: "fail", Detail: "db unavailable"}
		}

		if deps.Config.Auth.JWTSecret == "" {
			result["env"] = status{Status: "warn", Detail: "JWT_SECRET missing"}
		}

		if deps.Config.Parser.AIFallbackEnabled {
			result["parser"] = status{Status: "warn", Detail: "AI fallback enabled but not implemented"}
		}

		code := http.StatusOK
		for _, v := range result {
			if v.Status == "fail" {
				code = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(result); err != nil {
			deps.Logger.Error("failed to encode health details", slog.Any("error", err))
		}
	})
	deps.Logger.Info("registered health details", slog.String("path", "/health/details"))

	// Readiness check endpoint
	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ready")); err != nil {
			deps.Logger.Error("failed to write readiness response", slog.Any("error", err))
		}
	})
	deps.Logger.Info("registered readiness check", slog.String("path", "/ready"))

	// Metrics endpoint (Prometheus)
	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		deps.Logger.Info("registered metrics endpoint", slog.String("path", "/metrics"))
	}
}
