package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/careflow/clinic-api/config"
	"github.com/careflow/clinic-api/internal/handler"
	appointmenthandler "github.com/careflow/clinic-api/internal/handler/appointment"
	authhandler "github.com/careflow/clinic-api/internal/handler/auth"
	billinghandler "github.com/careflow/clinic-api/internal/handler/billing"
	cataloghandler "github.com/careflow/clinic-api/internal/handler/catalog"
	patienthandler "github.com/careflow/clinic-api/internal/handler/patient"
	recordhandler "github.com/careflow/clinic-api/internal/handler/record"
	"github.com/careflow/clinic-api/internal/middleware"
	"github.com/careflow/clinic-api/internal/model"
)

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        *authhandler.Handler
	appointmentH *appointmenthandler.Handler
	patientH     *patienthandler.Handler
	catalogH     *cataloghandler.Handler
	recordH      *recordhandler.Handler
	billingH     *billinghandler.Handler
	healthH      *handler.HealthHandler
	metrics      *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authhandler.Handler,
	appointmentH *appointmenthandler.Handler,
	patientH *patienthandler.Handler,
	catalogH *cataloghandler.Handler,
	recordH *recordhandler.Handler,
	billingH *billinghandler.Handler,
	healthH *handler.HealthHandler,
	rateCfg config.RateLimitConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()

	engine := gin.New()

	r := &Router{
		engine:       engine,
		auth:         auth,
		authH:        authH,
		appointmentH: appointmentH,
		patientH:     patientH,
		catalogH:     catalogH,
		recordH:      recordH,
		billingH:     billingH,
		healthH:      healthH,
		metrics:      initRouterMetrics("clinic_api"),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.Timeout(30*time.Second),
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.RateLimit(rateCfg.RequestsPerSecond, rateCfg.Burst),
	)

	return r
}

// registerValidators installs the "role" binding tag so requests can declare
// a login type that is checked against the closed enumeration.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			_, err := model.ParseRole(fl.Field().String())
			return err == nil
		})
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	health := api.Group("/health")
	{
		health.GET("/live", r.healthH.LivenessCheck)
		health.GET("/ready", r.healthH.ReadinessCheck)
		health.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.authH.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.authH.RegisterProtectedRoutes(protected, r.auth)
	r.appointmentH.RegisterRoutes(protected, r.auth)
	r.patientH.RegisterRoutes(protected, r.auth)
	r.catalogH.RegisterRoutes(protected, r.auth)
	r.recordH.RegisterRoutes(protected, r.auth)
	r.billingH.RegisterRoutes(protected, r.auth)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
