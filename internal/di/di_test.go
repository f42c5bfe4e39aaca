package di

import (
	"testing"

	"github.com/aihub/rag-go/internal/config"
	"github.com/aihub/rag-go/internal/knowledge"
	"github.com/aihub/rag-go/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyInjectionContainer(t *testing.T) {
	container := InitContainer()
	assert.NotNil(t, container)
	assert.NotNil(t, Container)
}

func TestContainerBasicOperations(t *testing.T) {
	container := InitContainer()

	type TestService struct {
		Name string
	}

	err := container.Provide(func() *TestService {
		return &TestService{Name: "test"}
	})
	require.NoError(t, err)

	err = container.Invoke(func(svc *TestService) {
		assert.Equal(t, "test", svc.Name)
	})
	assert.NoError(t, err)
}

func TestRegisterProvidersResolvesServices(t *testing.T) {
	require.NoError(t, config.LoadConfig())

	container := InitContainer()
	require.NoError(t, RegisterProviders(container))

	// 默认配置（memory存储、无API key）下整个服务图应可解析
	err := container.Invoke(func(
		ingest *services.IngestService,
		retrieval *services.RetrievalService,
		chat *services.ChatService,
		store knowledge.VectorStore,
		embedder knowledge.Embedder,
	) {
		assert.NotNil(t, ingest)
		assert.NotNil(t, retrieval)
		assert.NotNil(t, chat)
		assert.IsType(t, &knowledge.MemoryVectorStore{}, store)
		assert.False(t, embedder.Ready())
	})
	require.NoError(t, err)
}

func TestBuildVectorStoreUnknownProvider(t *testing.T) {
	require.NoError(t, config.LoadConfig())
	cfg := *config.GetAppConfig()
	cfg.Knowledge.VectorStore.Provider = "bogus"

	_, err := buildVectorStore(&cfg)
	require.Error(t, err)
}
