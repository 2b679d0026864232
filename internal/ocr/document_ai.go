package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIEngine implements the synchronous half of Engine using a Google
// Document AI OCR processor. The asynchronous GCS pipeline stays on Vision;
// both StartAsync and OperationStatus report ErrAsyncUnsupported.
type DocumentAIEngine struct {
	client        *documentai.DocumentProcessorClient
	processorName string
}

// NewDocumentAIEngine creates an engine bound to the given processor.
// Credentials follow the same scheme as the Vision engine.
func NewDocumentAIEngine(ctx context.Context, project, location, processorID string) (Engine, error) {
	const op = "NewDocumentAIEngine"

	var opts []option.ClientOption
	if location != "" && location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", location))
	}

	return &DocumentAIEngine{
		client:        client,
		processorName: fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processorID),
	}, nil
}

// NewDocumentAIEngineWithClient creates an engine with an explicit client (for testing).
func NewDocumentAIEngineWithClient(client *documentai.DocumentProcessorClient, processorName string) Engine {
	return &DocumentAIEngine{client: client, processorName: processorName}
}

func (d *DocumentAIEngine) DetectImage(ctx context.Context, content []byte, mimeType string) (string, error) {
	const op = "DetectImage"

	doc, err := d.process(ctx, content, mimeType)
	if err != nil {
		return "", WrapOCRError(op, err, "")
	}
	return doc.Text, nil
}

func (d *DocumentAIEngine) DetectDocument(ctx context.Context, content []byte, mimeType string, pages int) ([]PageText, error) {
	const op = "DetectDocument"

	doc, err := d.process(ctx, content, mimeType)
	if err != nil {
		return nil, WrapOCRError(op, err, "")
	}

	// Document AI processes the whole document in one call; slice out the
	// requested page range from the returned layout.
	result := make([]PageText, 0, pages)
	for i, page := range doc.Pages {
		if i >= pages {
			break
		}
		result = append(result, PageText{Text: anchorText(doc.Text, page.GetLayout().GetTextAnchor())})
	}

	return result, nil
}

func (d *DocumentAIEngine) StartAsync(ctx context.Context, req AsyncJobRequest) (string, error) {
	return "", WrapOCRError("StartAsync", ErrAsyncUnsupported, "use the vision engine for asynchronous jobs")
}

func (d *DocumentAIEngine) OperationStatus(ctx context.Context, name string) (*OperationStatus, error) {
	return nil, WrapOCRError("OperationStatus", ErrAsyncUnsupported, "use the vision engine for asynchronous jobs")
}

func (d *DocumentAIEngine) process(ctx context.Context, content []byte, mimeType string) (*documentaipb.Document, error) {
	req := &documentaipb.ProcessRequest{
		Name: d.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: Document AI error: %v", ErrEngineFailed, err)
	}
	if resp.Document == nil {
		return nil, fmt.Errorf("%w: no document in response", ErrEngineFailed)
	}
	return resp.Document, nil
}

// anchorText resolves a text anchor's segments against the document text.
func anchorText(fullText string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil {
		return ""
	}
	var b strings.Builder
	for _, seg := range anchor.GetTextSegments() {
		start, end := seg.GetStartIndex(), seg.GetEndIndex()
		if end > int64(len(fullText)) {
			end = int64(len(fullText))
		}
		if start < 0 || start > end {
			continue
		}
		b.WriteString(fullText[start:end])
	}
	return b.String()
}

// Close closes the underlying Document AI client.
func (d *DocumentAIEngine) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
