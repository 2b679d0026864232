package gateway

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Routing modes for SubmitOCR.
const (
	ModeAuto  = "auto"
	ModeAsync = "async"
)

// MaxPagesSync is the page limit of the synchronous PDF path, matching the
// Vision API's online annotation limit.
const MaxPagesSync = 5

// pageCountUnknown stands in when the PDF structure cannot be inspected, so
// the size policy routes the document to the async path instead of guessing
// a page range.
const pageCountUnknown = 9999

// SubmitOCR routes an uploaded file to exactly one synchronous handling
// path based on its declared content type, performing at most one engine
// invocation.
//
// Images get single-image detection and always produce exactly one page
// numbered 1, even when no text is recognized. PDFs within the synchronous
// policy (mode != "async" and at most MaxPagesSync pages) get multi-page
// detection with pages numbered in request order; larger PDFs are rejected
// toward the async endpoint. Everything else is unsupported.
func (s *Service) SubmitOCR(ctx context.Context, data []byte, contentType, mode string) (*SyncResult, error) {
	mimeType := normalizeMimeType(contentType)

	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	if strings.HasPrefix(mimeType, "image/") {
		text, err := s.engine.DetectImage(ctx, data, mimeType)
		if err != nil {
			return nil, err
		}
		return &SyncResult{
			Kind:  "image",
			Pages: []Page{{Page: 1, Text: text}},
		}, nil
	}

	if mimeType == "application/pdf" {
		count := s.countPages(data)
		if mode != ModeAsync && count <= MaxPagesSync {
			detected, err := s.engine.DetectDocument(ctx, data, mimeType, count)
			if err != nil {
				return nil, err
			}
			pages := make([]Page, 0, len(detected))
			for i, p := range detected {
				pages = append(pages, Page{Page: i + 1, Text: p.Text})
			}
			return &SyncResult{Kind: "pdf", Pages: pages}, nil
		}
		s.log.Info().Int("pages", count).Str("mode", mode).Msg("PDF rejected from sync path")
		return nil, &TooManyPagesError{Pages: count}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mimeType)
}

// normalizeMimeType lowers the declared content type and strips parameters
// such as charset.
func normalizeMimeType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// countPDFPages inspects the document structure to determine the page count.
// Unparseable documents report pageCountUnknown; the ledongthuc/pdf parser
// panics on some malformed inputs, which counts as unparseable too.
func countPDFPages(data []byte) (count int) {
	defer func() {
		if r := recover(); r != nil {
			count = pageCountUnknown
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return pageCountUnknown
	}
	return reader.NumPage()
}
