package ocr

import (
	"context"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// GoogleVisionEngine implements Engine using Google Cloud Vision API.
type GoogleVisionEngine struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionEngine creates an engine with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewGoogleVisionEngine(ctx context.Context) (Engine, error) {
	const op = "NewGoogleVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionEngine{client: client}, nil
}

// NewGoogleVisionEngineWithClient creates an engine with an explicit client (for testing).
func NewGoogleVisionEngineWithClient(client *vision.ImageAnnotatorClient) Engine {
	return &GoogleVisionEngine{client: client}
}

// DetectImage runs document text detection on a single inline image.
func (g *GoogleVisionEngine) DetectImage(ctx context.Context, content []byte, mimeType string) (string, error) {
	const op = "DetectImage"

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", WrapOCRError(op, ErrEngineFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return "", WrapOCRError(op, ErrEngineFailed, "no response from Vision API")
	}

	imgResp := resp.Responses[0]
	if imgResp.Error != nil {
		return "", WrapOCRError(op, ErrEngineFailed, fmt.Sprintf("Vision API error: %s", imgResp.Error.Message))
	}

	return imgResp.GetFullTextAnnotation().GetText(), nil
}

// DetectDocument runs synchronous text detection on an inline PDF for pages 1..pages.
func (g *GoogleVisionEngine) DetectDocument(ctx context.Context, content []byte, mimeType string, pages int) ([]PageText, error) {
	const op = "DetectDocument"

	pageNumbers := make([]int32, pages)
	for i := range pageNumbers {
		pageNumbers[i] = int32(i + 1)
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  content,
					MimeType: mimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				Pages: pageNumbers,
			},
		},
	}

	resp, err := g.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrEngineFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrEngineFailed, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, WrapOCRError(op, ErrEngineFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}

	// Fail fast on the first page-level error; no partial results.
	result := make([]PageText, 0, len(fileResp.Responses))
	for i, pageResp := range fileResp.Responses {
		if pageResp.Error != nil {
			return nil, WrapOCRError(op, ErrEngineFailed, fmt.Sprintf("page %d: %s", i+1, pageResp.Error.Message))
		}
		result = append(result, PageText{Text: pageResp.GetFullTextAnnotation().GetText()})
	}

	return result, nil
}

// StartAsync starts an asynchronous detection job over GCS and returns the
// fully-qualified operation name.
func (g *GoogleVisionEngine) StartAsync(ctx context.Context, jobReq AsyncJobRequest) (string, error) {
	const op = "StartAsync"

	req := &visionpb.AsyncBatchAnnotateFilesRequest{
		Requests: []*visionpb.AsyncAnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					GcsSource: &visionpb.GcsSource{Uri: jobReq.InputURI},
					MimeType:  jobReq.MimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				OutputConfig: &visionpb.OutputConfig{
					GcsDestination: &visionpb.GcsDestination{Uri: jobReq.OutputPrefixURI},
					BatchSize:      jobReq.BatchSize,
				},
			},
		},
	}

	operation, err := g.client.AsyncBatchAnnotateFiles(ctx, req)
	if err != nil {
		return "", WrapOCRError(op, ErrEngineFailed, fmt.Sprintf("failed to start async job: %v", err))
	}

	return operation.Name(), nil
}

// OperationStatus performs a single poll of the named long-running operation
// and converts its descriptor into an explicit snapshot.
func (g *GoogleVisionEngine) OperationStatus(ctx context.Context, name string) (*OperationStatus, error) {
	const op = "OperationStatus"

	operation := g.client.AsyncBatchAnnotateFilesOperation(name)
	_, pollErr := operation.Poll(ctx)

	if pollErr != nil && !operation.Done() {
		// The poll RPC itself failed; the operation state is unknown.
		return nil, WrapOCRError(op, ErrEngineFailed, fmt.Sprintf("failed to poll operation: %v", pollErr))
	}

	status := &OperationStatus{
		Name: name,
		Done: operation.Done(),
	}
	if pollErr != nil {
		// Operation finished with an error.
		status.Error = &OperationError{Message: pollErr.Error()}
	}

	if meta, err := operation.Metadata(); err == nil && meta != nil {
		status.State = meta.State.String()
		if meta.CreateTime != nil {
			t := meta.CreateTime.AsTime()
			status.CreateTime = &t
		}
		if meta.UpdateTime != nil {
			t := meta.UpdateTime.AsTime()
			status.UpdateTime = &t
		}
	}

	return status, nil
}

// Close closes the underlying Vision client.
func (g *GoogleVisionEngine) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
