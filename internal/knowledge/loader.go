package knowledge

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// DocumentLoader 文档加载器接口，把原始字节解析为按页组织的文本
type DocumentLoader interface {
	Load(data []byte) ([]Page, error)
}

// LoaderRegistry 按扩展名分发的加载器注册表
//
// 可变对象，通过Register开放扩展，按引用传递给编排层。
type LoaderRegistry struct {
	loaders map[string]DocumentLoader
}

// NewLoaderRegistry 创建带内置加载器的注册表
func NewLoaderRegistry() *LoaderRegistry {
	r := &LoaderRegistry{loaders: make(map[string]DocumentLoader)}
	r.Register(".pdf", &PDFLoader{})
	r.Register(".docx", &DocxLoader{})
	r.Register(".txt", &TextLoader{})
	r.Register(".md", &TextLoader{})
	r.Register(".markdown", &TextLoader{})
	return r
}

// Register 注册扩展名对应的加载器，覆盖已有注册
func (r *LoaderRegistry) Register(ext string, loader DocumentLoader) {
	r.loaders[strings.ToLower(ext)] = loader
}

// LoaderFor 按文件名扩展名选择加载器
func (r *LoaderRegistry) LoaderFor(filename string) (DocumentLoader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	loader, ok := r.loaders[ext]
	if !ok {
		return nil, apperrors.NewDocumentError(apperrors.ErrCodeDocumentUnsupported,
			fmt.Sprintf("unsupported file type %q, supported: %s", ext, strings.Join(r.SupportedExtensions(), ", ")))
	}
	return loader, nil
}

// SupportedExtensions 返回已注册的扩展名列表
func (r *LoaderRegistry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// PDFLoader PDF文档加载器，逐页提取文本
type PDFLoader struct{}

func (l *PDFLoader) Load(data []byte) ([]Page, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewDocumentError(apperrors.ErrCodeDocumentCorrupted,
			"failed to open PDF").WithCause(err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, apperrors.NewDocumentError(apperrors.ErrCodeDocumentCorrupted,
			"failed to read PDF page count").WithCause(err)
	}

	pages := make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		text, err := ex.ExtractText()
		if err != nil {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}

// DocxLoader Word文档加载器
//
// docx没有固定分页概念，整个文档作为第1页返回。
type DocxLoader struct{}

func (l *DocxLoader) Load(data []byte) ([]Page, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperrors.NewDocumentError(apperrors.ErrCodeDocumentCorrupted,
			"failed to open docx").WithCause(err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			textBuilder.WriteString(run.Text())
		}
		textBuilder.WriteString("\n")
	}

	return []Page{{Number: 1, Text: textBuilder.String()}}, nil
}

// TextLoader 纯文本加载器，适用于txt和markdown
type TextLoader struct{}

func (l *TextLoader) Load(data []byte) ([]Page, error) {
	return []Page{{Number: 1, Text: string(data)}}, nil
}
