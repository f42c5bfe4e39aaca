package bootstrap

import (
	"log"

	"github.com/aihub/rag-go/internal/config"
	"github.com/aihub/rag-go/internal/database"
	"github.com/aihub/rag-go/internal/di"
	"github.com/aihub/rag-go/internal/kafka"
	"github.com/aihub/rag-go/internal/logger"
	"github.com/aihub/rag-go/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// App encapsulates lifecycle resources that need to be cleaned up on shutdown.
type App struct {
	cleanupTasks []func() error
}

// Global app instance for controllers to access
var globalApp *App

// GetApp returns the global app instance
func GetApp() *App {
	return globalApp
}

// SetGlobalApp sets the global app instance
func SetGlobalApp(app *App) {
	globalApp = app
}

// Init bootstraps configuration, logger, database connections and the
// dependency container required by the Beego application.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize structured logger.
	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	// Load dynamic configuration.
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	config.WatchConfig(func(cfg *config.Config) {
		logger.Info("Configuration file reloaded")
	})

	app := &App{}
	cfg := config.AppConfig

	// Initialize Postgres only when the vector store actually needs it.
	if cfg.Knowledge.VectorStore.Provider == "db" || cfg.Knowledge.VectorStore.Provider == "postgres" {
		if _, err := database.InitDB(); err != nil {
			return nil, err
		}
		app.cleanupTasks = append(app.cleanupTasks, func() error {
			return database.CloseDB()
		})
	}

	// Initialize Redis (optional). Failure shouldn't block the app.
	if _, err := database.InitRedis(); err != nil {
		logger.Warn("Failed to initialize Redis", zap.Error(err))
	} else if database.RedisClient != nil {
		app.cleanupTasks = append(app.cleanupTasks, func() error {
			return database.CloseRedis()
		})
	}

	// Initialize MinIO (optional). Failure shouldn't block the app.
	if _, err := storage.InitMinIO(); err != nil {
		logger.Warn("Failed to initialize MinIO", zap.Error(err))
	}

	// Initialize Kafka (optional). Failure shouldn't block the app.
	if cfg.Kafka.Enabled {
		if err := kafka.InitProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
			logger.Warn("Failed to initialize Kafka producer", zap.Error(err))
		} else {
			app.cleanupTasks = append(app.cleanupTasks, func() error {
				producer := kafka.GetProducer()
				if producer != nil {
					return producer.Close()
				}
				return nil
			})
		}
	}

	// Build the dependency container once infrastructure is up.
	container := di.InitContainer()
	if err := di.RegisterProviders(container); err != nil {
		return nil, err
	}

	app.cleanupTasks = append(app.cleanupTasks, func() error {
		logger.Sync()
		return nil
	})

	SetGlobalApp(app)
	logger.Info("Application bootstrap completed",
		zap.String("vector_store", cfg.Knowledge.VectorStore.Provider),
		zap.String("port", cfg.Server.Port))
	return app, nil
}

// Cleanup releases resources in reverse initialization order.
func (a *App) Cleanup() {
	for i := len(a.cleanupTasks) - 1; i >= 0; i-- {
		if err := a.cleanupTasks[i](); err != nil {
			log.Printf("cleanup task failed: %v", err)
		}
	}
}
