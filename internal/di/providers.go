package di

import (
	"fmt"
	"time"

	"github.com/aihub/rag-go/internal/config"
	"github.com/aihub/rag-go/internal/database"
	"github.com/aihub/rag-go/internal/knowledge"
	"github.com/aihub/rag-go/internal/llm"
	"github.com/aihub/rag-go/internal/services"
	"go.uber.org/dig"
)

// RegisterProviders 注册所有依赖提供者
func RegisterProviders(container *dig.Container) error {
	// 注册配置
	if err := container.Provide(func() (*config.Config, error) {
		cfg := config.GetAppConfig()
		if cfg == nil {
			return nil, fmt.Errorf("config not loaded")
		}
		return cfg, nil
	}); err != nil {
		return err
	}

	// 注册分块器
	if err := container.Provide(func(cfg *config.Config) (*knowledge.Chunker, error) {
		return knowledge.NewChunker(cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap)
	}); err != nil {
		return err
	}

	// 注册文档加载器注册表
	if err := container.Provide(knowledge.NewLoaderRegistry); err != nil {
		return err
	}

	// 注册向量化服务
	if err := container.Provide(func(cfg *config.Config) knowledge.Embedder {
		emb := cfg.Knowledge.Embedding
		return knowledge.NewOpenAIEmbedder(emb.APIKey, emb.BaseURL, emb.Model,
			time.Duration(emb.TimeoutSec)*time.Second)
	}); err != nil {
		return err
	}

	// 注册向量存储，按provider选择实现
	if err := container.Provide(func(cfg *config.Config) (knowledge.VectorStore, error) {
		return buildVectorStore(cfg)
	}); err != nil {
		return err
	}

	// 注册标签分类器
	if err := container.Provide(func(cfg *config.Config) *knowledge.TagClassifier {
		rules := make([]knowledge.TagRule, 0, len(cfg.Knowledge.Tags))
		for _, r := range cfg.Knowledge.Tags {
			rules = append(rules, knowledge.TagRule{Label: r.Label, Keywords: r.Keywords})
		}
		return knowledge.NewTagClassifier(rules)
	}); err != nil {
		return err
	}

	// 注册生成服务客户端
	if err := container.Provide(func(cfg *config.Config) llm.Provider {
		return llm.NewOpenAIProvider(llm.Options{
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
			Timeout:   time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		})
	}); err != nil {
		return err
	}

	// 注册检索缓存，Redis未启用时client为nil，缓存退化为no-op
	if err := container.Provide(func(cfg *config.Config) *services.RetrievalCache {
		return services.NewRetrievalCache(database.RedisClient,
			time.Duration(cfg.Redis.TTL)*time.Second)
	}); err != nil {
		return err
	}

	// 注册编排服务
	if err := container.Provide(services.NewIngestService); err != nil {
		return err
	}

	if err := container.Provide(services.NewRetrievalService); err != nil {
		return err
	}

	if err := container.Provide(func(cfg *config.Config, retrieval *services.RetrievalService,
		classifier *knowledge.TagClassifier, provider llm.Provider) *services.ChatService {
		return services.NewChatService(retrieval, classifier, provider,
			cfg.Knowledge.MaxMessage, cfg.Knowledge.TopK)
	}); err != nil {
		return err
	}

	return nil
}

// buildVectorStore 根据配置选择向量存储后端
func buildVectorStore(cfg *config.Config) (knowledge.VectorStore, error) {
	vs := cfg.Knowledge.VectorStore
	switch vs.Provider {
	case "memory", "":
		return knowledge.NewMemoryVectorStore(vs.VectorSize), nil
	case "db", "postgres":
		if database.DB == nil {
			return nil, fmt.Errorf("database not initialized for vector store provider %q", vs.Provider)
		}
		return knowledge.NewDatabaseVectorStore(database.DB, vs.VectorSize, vs.Probes), nil
	case "milvus":
		return knowledge.NewMilvusVectorStore(knowledge.MilvusOptions{
			Address:    vs.Milvus.Address,
			Username:   vs.Milvus.Username,
			Password:   vs.Milvus.Password,
			Collection: vs.Milvus.Collection,
			Database:   vs.Milvus.Database,
			UseTLS:     vs.Milvus.TLS,
			VectorSize: vs.VectorSize,
			Probes:     vs.Probes,
			Timeout:    time.Duration(vs.TimeoutSec) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown vector store provider: %s", vs.Provider)
	}
}
