package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rudradey/campus-companion/internal/core/domain"
	"github.com/rudradey/campus-companion/internal/core/ports"
)

// Selector routes a document to the extractor matching its MIME type.
// PDFs go to the pdf extractor, anything text-like to plaintext.
type Selector struct {
	pdf       ports.TextExtractor
	plaintext ports.TextExtractor
}

func NewSelector(pdfExtractor, plaintextExtractor ports.TextExtractor) *Selector {
	return &Selector{pdf: pdfExtractor, plaintext: plaintextExtractor}
}

func (s *Selector) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	mime := strings.ToLower(strings.TrimSpace(doc.MimeType))
	switch {
	case mime == "application/pdf":
		return s.pdf.Extract(ctx, doc)
	case strings.HasPrefix(mime, "text/"), mime == "", mime == "application/octet-stream":
		return s.plaintext.Extract(ctx, doc)
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "select extractor",
			fmt.Errorf("unsupported mime type %q", doc.MimeType))
	}
}
