package gateway

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ocrgateway/internal/ocr"
)

// fakeEngine records calls and returns canned responses.
type fakeEngine struct {
	imageText string
	imageErr  error
	docPages  []ocr.PageText
	docErr    error
	asyncOp   string
	asyncErr  error
	status    *ocr.OperationStatus

	imageCalls   int
	docCalls     int
	lastDocPages int
	asyncCalls   int
	lastAsync    ocr.AsyncJobRequest
}

func (f *fakeEngine) DetectImage(ctx context.Context, content []byte, mimeType string) (string, error) {
	f.imageCalls++
	return f.imageText, f.imageErr
}

func (f *fakeEngine) DetectDocument(ctx context.Context, content []byte, mimeType string, pages int) ([]ocr.PageText, error) {
	f.docCalls++
	f.lastDocPages = pages
	return f.docPages, f.docErr
}

func (f *fakeEngine) StartAsync(ctx context.Context, req ocr.AsyncJobRequest) (string, error) {
	f.asyncCalls++
	f.lastAsync = req
	if f.asyncErr != nil {
		return "", f.asyncErr
	}
	if f.asyncOp == "" {
		return fmt.Sprintf("projects/p/operations/op-%d", f.asyncCalls), nil
	}
	return f.asyncOp, nil
}

func (f *fakeEngine) OperationStatus(ctx context.Context, name string) (*ocr.OperationStatus, error) {
	if f.status != nil {
		return f.status, nil
	}
	return &ocr.OperationStatus{Name: name, Done: false}, nil
}

// fakeStore keeps objects in a map keyed bucket + "/" + name.
type fakeStore struct {
	objects   map[string][]byte
	listOrder []string // explicit List order; sorted map order when empty

	uploads   []string
	listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) put(bucket, name string, data []byte) {
	f.objects[bucket+"/"+name] = data
}

func (f *fakeStore) Upload(ctx context.Context, bucket, object string, data []byte) error {
	f.put(bucket, object, data)
	f.uploads = append(f.uploads, bucket+"/"+object)
	return nil
}

func (f *fakeStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	f.listCalls++
	if f.listOrder != nil {
		return f.listOrder, nil
	}
	var names []string
	for key := range f.objects {
		b, name, _ := strings.Cut(key, "/")
		if b == bucket && strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeStore) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	data, ok := f.objects[bucket+"/"+object]
	if !ok {
		return nil, fmt.Errorf("object not found: %s/%s", bucket, object)
	}
	return data, nil
}

func newTestService(engine *fakeEngine, store *fakeStore) *Service {
	return NewService(engine, store, Config{
		UploadBucket: "uploads",
		OutputBucket: "out",
		OutputRoot:   "gcv_vision_ocr",
	})
}
