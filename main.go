package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"udi-review/config"
	"udi-review/gateway"
	"udi-review/models"
	"udi-review/services"
	"udi-review/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	reviewsAddedCounter prometheus.Counter
	operationsCounter   *prometheus.CounterVec
)

func init() {
	reviewsAddedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_added_total",
			Help: "Total number of reviews added to the database.",
		},
	)
	operationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_operations_total",
			Help: "Total number of invoked gateway operations.",
		},
		[]string{"operation"},
	)
	prometheus.MustRegister(reviewsAddedCounter, operationsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Store öffnen (bzw. im Packaged-Modus zuerst seeden). Schlägt das fehl,
	// läuft der Prozess trotzdem an; alle Operationen melden dann sauber
	// "store not connected".
	store := storage.Open(cfg, logging)
	gw := gateway.New(store, logging)

	// Schema-Ensure vor dem ersten Request; kein Aufrufer erreicht das
	// Gateway vor diesen beiden Operationen.
	if err := gw.EnsureReviewsSchema(context.Background()); err != nil {
		logging.Error("Could not ensure reviews schema", zap.Error(err))
	}
	if err := gw.EnsureUserSchema(context.Background()); err != nil {
		logging.Error("Could not ensure user schema", zap.Error(err))
	}

	exportService := services.NewExportService(cfg, gw, logging)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"service":         "udi-review",
			"store_available": store.Available(),
		})
	})

	// Setup Routes
	setupBridgeRoutes(router, gw, logging)
	setupReviewRoutes(router, gw, exportService, logging)
	setupDataRoutes(router, gw)
	setupUserRoutes(router, gw)

	// Setup Cron: regelmäßige Review-Snapshots
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.SnapshotSchedule, func() {
		path, err := exportService.WriteSnapshot(context.Background())
		if err != nil {
			logging.Error("Scheduled snapshot failed", zap.Error(err))
		} else {
			logging.Info("Scheduled snapshot completed", zap.String("path", path))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// statusForError bildet Gateway-Fehler auf HTTP-Status ab. Nach außen geht
// nur die Beschreibung (Operationsname + Ursache).
func statusForError(err error) int {
	switch {
	case errors.Is(err, gateway.ErrUnknownOperation):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// setupBridgeRoutes stellt den generischen Operations-Bridge bereit: das
// UI ruft jede Katalog-Operation unter ihrem Namen auf und erhält genau eine
// Auflösung oder genau eine Ablehnung.
func setupBridgeRoutes(router *gin.Engine, gw *gateway.Gateway, log *zap.Logger) {
	rg := router.Group("/invoke")

	rg.POST("/:operation", func(c *gin.Context) {
		name := c.Param("operation")

		var req struct {
			Args []any `json:"args"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}

		operationsCounter.WithLabelValues(name).Inc()
		result, err := gw.Invoke(c.Request.Context(), name, req.Args...)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		if name == gateway.OpAddReview {
			reviewsAddedCounter.Inc()
		}
		c.JSON(http.StatusOK, gin.H{"result": result})
	})
}

func setupReviewRoutes(router *gin.Engine, gw *gateway.Gateway, exportService *services.ExportService, log *zap.Logger) {
	rg := router.Group("/reviews")

	rg.POST("/", func(c *gin.Context) {
		var review models.Review
		if err := c.ShouldBindJSON(&review); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		review.ID = 0 // die ID vergibt der Store
		id, err := gw.AddReview(c.Request.Context(), review)
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		reviewsAddedCounter.Inc()
		c.JSON(http.StatusCreated, gin.H{"id": id})
	})

	rg.GET("/", func(c *gin.Context) {
		reviews, err := gw.FetchAllReviews(c.Request.Context())
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, reviews)
	})

	// Download-Dokument für das UI (reviews.json)
	rg.GET("/export", func(c *gin.Context) {
		data, err := exportService.MarshalReviews(c.Request.Context())
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="reviews.json"`)
		c.Data(http.StatusOK, "application/json", data)
	})
}

func setupDataRoutes(router *gin.Engine, gw *gateway.Gateway) {
	rg := router.Group("/data")

	rg.GET("/count", func(c *gin.Context) {
		result, err := gw.Invoke(c.Request.Context(), gateway.OpFetchRowCount)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/row/:combined_id", func(c *gin.Context) {
		result, err := gw.Invoke(c.Request.Context(), gateway.OpFetchRowData, c.Param("combined_id"))
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		if result == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "row not found"})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/row-by-id/:id", func(c *gin.Context) {
		result, err := gw.Invoke(c.Request.Context(), gateway.OpFetchRowDataFromID, c.Param("id"))
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		if result == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "row not found"})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/expanded-counts", func(c *gin.Context) {
		result, err := gw.Invoke(c.Request.Context(), gateway.OpFetchExpandedCounts)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	rg.GET("/paraphrased-counts", func(c *gin.Context) {
		result, err := gw.Invoke(c.Request.Context(), gateway.OpFetchParaphrasedCounts,
			c.Query("template_id"), c.Query("expanded_id"))
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

func setupUserRoutes(router *gin.Engine, gw *gateway.Gateway) {
	rg := router.Group("/user")

	rg.GET("/", func(c *gin.Context) {
		result, err := gw.FetchUser(c.Request.Context())
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		if result == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, result)
	})
}
