// Package ingestion loads resume documents and turns them into plain text.
package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"
)

// Supported document types.
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxDocumentSize caps how much of a document is read.
const MaxDocumentSize = 10 << 20

// ErrUnsupportedFormat is returned for documents that are not PDF, DOCX or plain text.
var ErrUnsupportedFormat = errors.New("unsupported document format")

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
	inlineSpace  = regexp.MustCompile(`[ \t\f\v]+`)
)

// Document is a loaded resume file.
type Document struct {
	Name string
	MIME string
	Data []byte
}

// Loader reads documents from the local filesystem or from S3.
type Loader struct {
	s3     objectGetter
	logger *zap.Logger
}

// NewLoader creates a loader. store may be nil when only local files are used.
func NewLoader(store objectGetter, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{s3: store, logger: logger}
}

// Load reads the document at location, either a local path or s3://bucket/key.
func (l *Loader) Load(ctx context.Context, location string) (*Document, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("resume location is empty")
	}

	var (
		data []byte
		err  error
	)
	if bucket, key, ok := ParseS3URL(location); ok {
		if l.s3 == nil {
			return nil, errors.New("s3 storage is not configured")
		}
		l.logger.Debug("downloading resume", zap.String("bucket", bucket), zap.String("key", key))
		data, err = download(ctx, l.s3, bucket, key)
	} else {
		data, err = readFile(location)
	}
	if err != nil {
		return nil, err
	}

	return &Document{
		Name: filepath.Base(location),
		MIME: DetectMIME(location, data),
		Data: data,
	}, nil
}

// Read builds a document from an uploaded stream. name is only used to detect the type.
func Read(name string, r io.Reader) (*Document, error) {
	data, err := readLimited(r)
	if err != nil {
		return nil, err
	}
	return &Document{
		Name: filepath.Base(name),
		MIME: DetectMIME(name, data),
		Data: data,
	}, nil
}

// Text extracts and cleans the document text.
func (d *Document) Text() (string, error) {
	text, err := ExtractText(d.MIME, d.Data)
	if err != nil {
		return "", err
	}
	return CleanText(text), nil
}

// DetectMIME picks the document type from the file extension and falls back to
// sniffing the content.
func DetectMIME(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDocx
	case ".txt", ".md", ".text":
		return MIMEText
	}

	switch sniffed := http.DetectContentType(data); {
	case strings.HasPrefix(sniffed, MIMEPDF):
		return MIMEPDF
	case strings.HasPrefix(sniffed, "application/zip"):
		return MIMEDocx
	case strings.HasPrefix(sniffed, "text/plain"):
		return MIMEText
	default:
		return sniffed
	}
}

// ExtractText returns the raw text of a document of the given MIME type.
func ExtractText(mime string, data []byte) (string, error) {
	mime = strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])

	switch mime {
	case MIMEText, "text/markdown":
		return string(data), nil
	case MIMEPDF:
		return extractPDFText(data)
	case MIMEDocx:
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}
}

// CleanText normalizes line endings, collapses inline whitespace and long runs of
// blank lines.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}

	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func extractPDFText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return xmlToText(doc.Editable().GetContent()), nil
}

// xmlToText turns WordprocessingML into text, one paragraph per line.
func xmlToText(content string) string {
	content = paragraphEnd.ReplaceAllStringFunc(content, func(tag string) string {
		if tag == "<w:tab/>" {
			return " "
		}
		return "\n"
	})
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open resume: %w", err)
	}
	defer f.Close()

	return readLimited(f)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("resume is larger than %d bytes", MaxDocumentSize)
	}
	return data, nil
}
