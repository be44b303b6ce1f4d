package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/handlers"
	"taskmanager/internal/middleware"
	"taskmanager/internal/pdf"
	"taskmanager/internal/repositories"
	"taskmanager/internal/routes"
	"taskmanager/internal/services"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "taskmanager/docs"
)

const shutdownTimeout = 5 * time.Second

func Run() {
	cfg := config.LoadConfig()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("timezone: ", err)
	}

	// === DB ===
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	taskRepo, db, err := openStore(ctx, cfg.Database)
	cancel()
	if err != nil {
		log.Fatal("database: ", err)
	}
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("close database: %v", err)
			}
		}()
	}
	log.Printf("[app][store][ok] driver=%s tz=%s", cfg.Database.Driver, loc)

	// === Services ===
	taskService := services.NewTaskService(taskRepo, time.Now, loc)
	reports := pdf.NewReportGenerator(cfg.Reports.FontPath)

	// === Handlers ===
	taskHandler := handlers.NewTaskHandler(taskService, reports)
	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}
	healthHandler := handlers.NewHealthHandler(pinger)

	router := NewRouter(taskHandler, healthHandler)

	// === Run ===
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[app][http][start] addr=%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[app][http][shutdown] %v", err)
	}
	log.Printf("[app][http][stopped]")
}

// NewRouter builds the engine with middleware, swagger and the API routes.
func NewRouter(taskHandler *handlers.TaskHandler, healthHandler *handlers.HealthHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return routes.SetupRoutes(router, taskHandler, healthHandler)
}

// openStore returns the repository for the configured driver. The *sql.DB is
// nil for the memory backend.
func openStore(ctx context.Context, dbCfg config.DatabaseConfig) (repositories.TaskRepository, *sql.DB, error) {
	switch dbCfg.Driver {
	case "memory":
		return repositories.NewMemoryTaskRepository(), nil, nil
	case "postgres", "sqlite":
		dialect := repositories.Dialect(dbCfg.Driver)
		db, err := repositories.Open(ctx, dialect, dbCfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewTaskRepository(db, dialect), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}
}
