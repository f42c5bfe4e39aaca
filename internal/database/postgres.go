package database

import (
	"fmt"
	"time"

	"github.com/aihub/rag-go/internal/config"
	"github.com/aihub/rag-go/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB 初始化PostgreSQL连接并执行pgvector迁移
func InitDB() (*gorm.DB, error) {
	cfg := config.AppConfig
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 连接池上限：池耗尽时等待受连接上下文超时约束，不会无限阻塞
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := migrate(db, cfg.Knowledge.VectorStore.VectorSize); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	DB = db
	logger.Info("Database connected successfully")
	return db, nil
}

// migrate 创建片段表和ivfflat索引
//
// embedding列宽度在建表时固定为配置的向量维度，写入时强制校验。
func migrate(db *gorm.DB, dimensions int) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error; err != nil {
		return err
	}

	if err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS document_chunks (
			id bigserial PRIMARY KEY,
			content text NOT NULL,
			embedding vector(%d) NOT NULL,
			tag text,
			source_id text NOT NULL,
			page_number int,
			sequence_index int NOT NULL,
			created_at timestamptz DEFAULT NOW()
		)`, dimensions)).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding
		ON document_chunks USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`).Error; err != nil {
		return err
	}

	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_document_chunks_tag ON document_chunks (tag)`).Error
}

// CloseDB 关闭数据库连接
func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
