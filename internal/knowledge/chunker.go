package knowledge

import (
	"strings"
	"unicode"

	apperrors "github.com/aihub/rag-go/internal/errors"
)

// Page 文档的一页文本，页码从1开始
type Page struct {
	Number int
	Text   string
}

// Draft 分块后的文本片段，尚未附加向量和来源信息
type Draft struct {
	Content       string
	PageNumber    *int
	SequenceIndex int
}

// Chunker 固定窗口文本分块器
//
// 按字符窗口滑动切分，窗口之间保留重叠，避免语义短语被切点截断。
// 末尾不足一个窗口的片段保留，不会静默丢弃。
type Chunker struct {
	windowSize int
	overlap    int
}

// NewChunker 创建分块器，配置非法时立即失败
func NewChunker(windowSize, overlap int) (*Chunker, error) {
	if windowSize <= 0 {
		return nil, apperrors.NewChunkingConfigError("window size must be positive")
	}
	if overlap < 0 || overlap >= windowSize {
		return nil, apperrors.NewChunkingConfigError("overlap must satisfy 0 <= overlap < window size")
	}
	return &Chunker{
		windowSize: windowSize,
		overlap:    overlap,
	}, nil
}

// Chunk 将整组页面切分为片段草稿
//
// SequenceIndex 在整组页面内全局递增，不按页重置，
// 这样后续排序不依赖页边界。空白页不产生片段。
func (c *Chunker) Chunk(pages []Page) []Draft {
	step := c.windowSize - c.overlap
	var drafts []Draft
	seq := 0

	for _, page := range pages {
		clean := normalizeWhitespace(page.Text)
		if clean == "" {
			continue
		}

		runes := []rune(clean)
		pageNumber := page.Number
		for start := 0; start < len(runes); start += step {
			end := start + c.windowSize
			if end > len(runes) {
				end = len(runes)
			}

			var pn *int
			if pageNumber > 0 {
				n := pageNumber
				pn = &n
			}
			drafts = append(drafts, Draft{
				Content:       string(runes[start:end]),
				PageNumber:    pn,
				SequenceIndex: seq,
			})
			seq++

			if end == len(runes) {
				break
			}
		}
	}

	return drafts
}

// WindowSize 返回窗口大小（字符数）
func (c *Chunker) WindowSize() int {
	return c.windowSize
}

// Overlap 返回重叠大小（字符数）
func (c *Chunker) Overlap() int {
	return c.overlap
}

func normalizeWhitespace(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	var prevSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			builder.WriteRune(' ')
			prevSpace = true
			continue
		}
		builder.WriteRune(r)
		prevSpace = false
	}

	return strings.TrimSpace(builder.String())
}
