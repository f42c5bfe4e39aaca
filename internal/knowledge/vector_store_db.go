package knowledge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"gorm.io/gorm"
)

// DatabaseVectorStore 基于PostgreSQL + pgvector的向量存储
//
// 搜索走ivfflat近似索引：以一个小而有界的漏检概率换取常数级加速。
// ivfflat.probes（探测分区数）是召回率/速度的调节旋钮，来自配置而非隐式默认。
type DatabaseVectorStore struct {
	db         *gorm.DB
	dimensions int
	probes     int
}

// NewDatabaseVectorStore 创建PostgreSQL向量存储
func NewDatabaseVectorStore(db *gorm.DB, dimensions, probes int) *DatabaseVectorStore {
	if probes <= 0 {
		probes = 10
	}
	return &DatabaseVectorStore{
		db:         db,
		dimensions: dimensions,
		probes:     probes,
	}
}

// 存储I/O的兜底超时，池耗尽时等待有界，不会无限阻塞
const storeOpTimeout = 10 * time.Second

type fragmentRecord struct {
	Content       string
	Tag           string
	SourceID      string
	PageNumber    *int
	SequenceIndex int
	Distance      float64
}

func (s *DatabaseVectorStore) Add(ctx context.Context, fragments []Fragment) error {
	// 维度校验在任何SQL之前完成，坏批次不触碰数据库
	if err := validateFragments(fragments, s.dimensions); err != nil {
		return err
	}
	if len(fragments) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	// 单事务写入整批，失败时回滚，不留半批数据
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, f := range fragments {
			err := tx.Exec(`
				INSERT INTO document_chunks (content, embedding, tag, source_id, page_number, sequence_index)
				VALUES (?, ?::vector, ?, ?, ?, ?)`,
				f.Content, vectorLiteral(f.Embedding), nullableString(f.Tag),
				f.SourceID, f.PageNumber, f.SequenceIndex,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"failed to store fragments").WithCause(err)
	}
	return nil
}

func (s *DatabaseVectorStore) Search(ctx context.Context, embedding []float32, topK int, tag string) (RetrievalResult, error) {
	if len(embedding) != s.dimensions {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"query embedding dimensionality mismatch")
	}
	if topK <= 0 {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"topK must be positive")
	}

	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	var rows []fragmentRecord
	// SET LOCAL 只在事务内生效，探测分区数不泄漏到连接池的其他会话
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("SET LOCAL ivfflat.probes = %d", s.probes)).Error; err != nil {
			return err
		}

		query := `
			SELECT content, COALESCE(tag, '') AS tag, source_id, page_number, sequence_index,
			       (embedding <=> ?::vector) AS distance
			FROM document_chunks`
		args := []interface{}{vectorLiteral(embedding)}
		if tag != "" {
			query += " WHERE tag = ?"
			args = append(args, tag)
		}
		query += " ORDER BY distance ASC, sequence_index ASC, source_id ASC LIMIT ?"
		args = append(args, topK)

		return tx.Raw(query, args...).Scan(&rows).Error
	})
	if err != nil {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"vector search failed").WithCause(err)
	}

	results := make(RetrievalResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, ScoredFragment{
			Fragment: Fragment{
				Content:       row.Content,
				Tag:           row.Tag,
				SourceID:      row.SourceID,
				PageNumber:    row.PageNumber,
				SequenceIndex: row.SequenceIndex,
			},
			Distance: row.Distance,
		})
	}
	return results, nil
}

func (s *DatabaseVectorStore) Ready() bool {
	if s.db == nil {
		return false
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx) == nil
}

// vectorLiteral 将向量编码为pgvector的文本字面量 [1,2,3]
func vectorLiteral(vec []float32) string {
	var builder strings.Builder
	builder.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	builder.WriteByte(']')
	return builder.String()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
