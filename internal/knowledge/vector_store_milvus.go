package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	UseTLS     bool
	VectorSize int
	Probes     int // IVF搜索的nprobe，召回率/速度的调节旋钮
	Timeout    time.Duration
}

// MilvusVectorStore 基于Milvus的近似最近邻向量存储
//
// 使用IVF_FLAT分区索引：以一个小而有界的漏检概率换取常数级加速，
// nprobe（探测分区数）通过配置暴露。
type MilvusVectorStore struct {
	milvusClient client.Client
	collection   string
	dimensions   int
	probes       int
}

const milvusIndexPartitions = 128

// NewMilvusVectorStore 创建Milvus向量存储
func NewMilvusVectorStore(opts MilvusOptions) (*MilvusVectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "document_chunks"
	}
	if opts.Database == "" {
		opts.Database = "default"
	}
	if opts.Probes <= 0 {
		opts.Probes = 10
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	milvusClient, err := client.NewClient(ctx, client.Config{
		Address:       opts.Address,
		DBName:        opts.Database,
		Username:      opts.Username,
		Password:      opts.Password,
		EnableTLSAuth: opts.UseTLS,
	})
	if err != nil {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorConnection,
			"failed to connect to milvus").WithCause(err)
	}

	store := &MilvusVectorStore{
		milvusClient: milvusClient,
		collection:   opts.Collection,
		dimensions:   opts.VectorSize,
		probes:       opts.Probes,
	}
	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MilvusVectorStore) ensureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return apperrors.NewVectorStoreError(apperrors.ErrCodeVectorConnection,
			"failed to check collection").WithCause(err)
	}
	if hasCollection {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: s.collection,
		Description:    "document fragments with embeddings",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:     "content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "tag",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "source_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "page_number",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "sequence_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", s.dimensions),
				},
			},
		},
	}

	if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"failed to create collection").WithCause(err)
	}

	index, err := entity.NewIndexIvfFlat(entity.COSINE, milvusIndexPartitions)
	if err != nil {
		return apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"failed to build index definition").WithCause(err)
	}
	if err := s.milvusClient.CreateIndex(ctx, s.collection, "vector", index, false); err != nil {
		return apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"failed to create index").WithCause(err)
	}
	if err := s.milvusClient.LoadCollection(ctx, s.collection, false); err != nil {
		return apperrors.NewVectorStoreError(apperrors.ErrCodeVectorConnection,
			"failed to load collection").WithCause(err)
	}
	return nil
}

func (s *MilvusVectorStore) Add(ctx context.Context, fragments []Fragment) error {
	if err := validateFragments(fragments, s.dimensions); err != nil {
		return err
	}
	if len(fragments) == 0 {
		return nil
	}

	contents := make([]string, 0, len(fragments))
	tags := make([]string, 0, len(fragments))
	sourceIDs := make([]string, 0, len(fragments))
	pageNumbers := make([]int64, 0, len(fragments))
	sequenceIndexes := make([]int64, 0, len(fragments))
	vectors := make([][]float32, 0, len(fragments))

	for _, f := range fragments {
		contents = append(contents, f.Content)
		tags = append(tags, f.Tag)
		sourceIDs = append(sourceIDs, f.SourceID)
		pageNumber := int64(0)
		if f.PageNumber != nil {
			pageNumber = int64(*f.PageNumber)
		}
		pageNumbers = append(pageNumbers, pageNumber)
		sequenceIndexes = append(sequenceIndexes, int64(f.SequenceIndex))
		vectors = append(vectors, f.Embedding)
	}

	// 整批在一次Insert里提交，Milvus保证批内写入不半途可见
	_, err := s.milvusClient.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar("content", contents),
		entity.NewColumnVarChar("tag", tags),
		entity.NewColumnVarChar("source_id", sourceIDs),
		entity.NewColumnInt64("page_number", pageNumbers),
		entity.NewColumnInt64("sequence_index", sequenceIndexes),
		entity.NewColumnFloatVector("vector", s.dimensions, vectors),
	)
	if err != nil {
		return apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"milvus insert failed").WithCause(err)
	}

	// Flush确保片段在调用返回后立即可检索
	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		return apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"milvus flush failed").WithCause(err)
	}
	return nil
}

func (s *MilvusVectorStore) Search(ctx context.Context, embedding []float32, topK int, tag string) (RetrievalResult, error) {
	if len(embedding) != s.dimensions {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"query embedding dimensionality mismatch")
	}
	if topK <= 0 {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"topK must be positive")
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(s.probes)
	if err != nil {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"invalid search params").WithCause(err)
	}

	expr := ""
	if tag != "" {
		expr = fmt.Sprintf(`tag == "%s"`, strings.ReplaceAll(tag, `"`, ``))
	}

	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		expr,
		[]string{"content", "tag", "source_id", "page_number", "sequence_index"},
		[]entity.Vector{entity.FloatVector(embedding)},
		"vector",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"milvus search failed").WithCause(err)
	}
	if len(searchResults) == 0 {
		return RetrievalResult{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"milvus search failed").WithCause(result.Err)
	}

	var contents, tags, sourceIDs []string
	var pageNumbers, sequenceIndexes []int64
	for _, field := range result.Fields {
		switch field.Name() {
		case "content":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				contents = col.Data()
			}
		case "tag":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				tags = col.Data()
			}
		case "source_id":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				sourceIDs = col.Data()
			}
		case "page_number":
			if col, ok := field.(*entity.ColumnInt64); ok {
				pageNumbers = col.Data()
			}
		case "sequence_index":
			if col, ok := field.(*entity.ColumnInt64); ok {
				sequenceIndexes = col.Data()
			}
		}
	}

	results := make(RetrievalResult, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		fragment := Fragment{}
		if i < len(contents) {
			fragment.Content = contents[i]
		}
		if i < len(tags) {
			fragment.Tag = tags[i]
		}
		if i < len(sourceIDs) {
			fragment.SourceID = sourceIDs[i]
		}
		if i < len(pageNumbers) && pageNumbers[i] > 0 {
			n := int(pageNumbers[i])
			fragment.PageNumber = &n
		}
		if i < len(sequenceIndexes) {
			fragment.SequenceIndex = int(sequenceIndexes[i])
		}

		// COSINE度量下Milvus返回相似度分数，转换为余弦距离
		distance := float64(1)
		if i < len(result.Scores) {
			distance = 1 - float64(result.Scores[i])
		}
		results = append(results, ScoredFragment{Fragment: fragment, Distance: distance})
	}

	// Milvus只按距离排序，相同距离的并列项在本地按确定性规则重排
	sortResults(results)
	return results, nil
}

func (s *MilvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
