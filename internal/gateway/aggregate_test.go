package gateway

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"ocrgateway/internal/storage"
)

func TestAggregateResult_OrdersPagesByShardAddress(t *testing.T) {
	store := newFakeStore()
	store.put("out", "jobs/abc/0.json", []byte(`{"responses":[{"fullTextAnnotation":{"text":"A"}},{"fullTextAnnotation":{"text":"B"}}]}`))
	store.put("out", "jobs/abc/1.json", []byte(`{"responses":[{"fullTextAnnotation":{"text":"C"}}]}`))
	svc := newTestService(&fakeEngine{}, store)

	result, err := svc.AggregateResult(context.Background(), "gs://out/jobs/abc/")
	if err != nil {
		t.Fatalf("AggregateResult() error = %v", err)
	}

	want := []Page{
		{Page: 1, Text: "A", Source: "gs://out/jobs/abc/0.json"},
		{Page: 2, Text: "B", Source: "gs://out/jobs/abc/0.json"},
		{Page: 3, Text: "C", Source: "gs://out/jobs/abc/1.json"},
	}
	if !reflect.DeepEqual(result.Pages, want) {
		t.Errorf("Pages = %+v, want %+v", result.Pages, want)
	}
	if result.FileCount != 2 {
		t.Errorf("FileCount = %d, want 2", result.FileCount)
	}
}

func TestAggregateResult_DeterministicUnderListingOrder(t *testing.T) {
	shard0 := []byte(`{"responses":[{"fullTextAnnotation":{"text":"A"}}]}`)
	shard1 := []byte(`{"responses":[{"fullTextAnnotation":{"text":"B"}}]}`)

	var runs [][]Page
	for _, order := range [][]string{
		{"jobs/abc/0.json", "jobs/abc/1.json"},
		{"jobs/abc/1.json", "jobs/abc/0.json"},
	} {
		store := newFakeStore()
		store.put("out", "jobs/abc/0.json", shard0)
		store.put("out", "jobs/abc/1.json", shard1)
		store.listOrder = order
		svc := newTestService(&fakeEngine{}, store)

		result, err := svc.AggregateResult(context.Background(), "gs://out/jobs/abc/")
		if err != nil {
			t.Fatalf("AggregateResult() error = %v", err)
		}
		runs = append(runs, result.Pages)
	}

	if !reflect.DeepEqual(runs[0], runs[1]) {
		t.Errorf("page order depends on listing order:\n%+v\nvs\n%+v", runs[0], runs[1])
	}
	if runs[0][0].Text != "A" || runs[0][1].Text != "B" {
		t.Errorf("pages = %+v, want A before B", runs[0])
	}
}

func TestAggregateResult_MissingTextDefaultsToEmpty(t *testing.T) {
	store := newFakeStore()
	store.put("out", "jobs/abc/0.json", []byte(`{"responses":[{}]}`))
	svc := newTestService(&fakeEngine{}, store)

	result, err := svc.AggregateResult(context.Background(), "gs://out/jobs/abc/")
	if err != nil {
		t.Fatalf("AggregateResult() error = %v", err)
	}
	if len(result.Pages) != 1 || result.Pages[0].Text != "" {
		t.Errorf("Pages = %+v, want one page with empty text", result.Pages)
	}
}

func TestAggregateResult_EmptyPrefix(t *testing.T) {
	svc := newTestService(&fakeEngine{}, newFakeStore())

	result, err := svc.AggregateResult(context.Background(), "gs://out/jobs/nothing/")
	if err != nil {
		t.Fatalf("AggregateResult() error = %v", err)
	}
	if len(result.Pages) != 0 {
		t.Errorf("Pages = %+v, want empty", result.Pages)
	}
	if result.FileCount != 0 {
		t.Errorf("FileCount = %d, want 0", result.FileCount)
	}
	if result.Pages == nil {
		t.Error("Pages must encode as [] rather than null")
	}
}

func TestAggregateResult_ShardWithNoResponses(t *testing.T) {
	store := newFakeStore()
	store.put("out", "jobs/abc/0.json", []byte(`{"responses":[]}`))
	store.put("out", "jobs/abc/1.json", []byte(`{"responses":[{"fullTextAnnotation":{"text":"X"}}]}`))
	svc := newTestService(&fakeEngine{}, store)

	result, err := svc.AggregateResult(context.Background(), "gs://out/jobs/abc/")
	if err != nil {
		t.Fatalf("AggregateResult() error = %v", err)
	}
	if len(result.Pages) != 1 || result.Pages[0].Text != "X" {
		t.Errorf("Pages = %+v, want the single page from shard 1", result.Pages)
	}
	// Both shards still count.
	if result.FileCount != 2 {
		t.Errorf("FileCount = %d, want 2", result.FileCount)
	}
}

func TestAggregateResult_IgnoresNonJSONObjects(t *testing.T) {
	store := newFakeStore()
	store.put("out", "jobs/abc/source.pdf", []byte("%PDF"))
	store.put("out", "jobs/abc/0.json", []byte(`{"responses":[{"fullTextAnnotation":{"text":"A"}}]}`))
	svc := newTestService(&fakeEngine{}, store)

	result, err := svc.AggregateResult(context.Background(), "gs://out/jobs/abc/")
	if err != nil {
		t.Fatalf("AggregateResult() error = %v", err)
	}
	if len(result.Pages) != 1 || result.FileCount != 1 {
		t.Errorf("got %d pages, fileCount %d; want 1 and 1", len(result.Pages), result.FileCount)
	}
}

func TestAggregateResult_PrefixNormalization(t *testing.T) {
	store := newFakeStore()
	store.put("out", "jobs/abc/0.json", []byte(`{"responses":[{"fullTextAnnotation":{"text":"A"}}]}`))
	// Sibling folder sharing the string prefix must not match.
	store.put("out", "jobs/abc-other/0.json", []byte(`{"responses":[{"fullTextAnnotation":{"text":"Z"}}]}`))
	svc := newTestService(&fakeEngine{}, store)

	result, err := svc.AggregateResult(context.Background(), "gs://out/jobs/abc")
	if err != nil {
		t.Fatalf("AggregateResult() error = %v", err)
	}
	if len(result.Pages) != 1 || result.Pages[0].Text != "A" {
		t.Errorf("Pages = %+v, want only the page under jobs/abc/", result.Pages)
	}
}

func TestAggregateResult_InvalidPrefix(t *testing.T) {
	svc := newTestService(&fakeEngine{}, newFakeStore())

	if _, err := svc.AggregateResult(context.Background(), "not-a-uri"); !errors.Is(err, storage.ErrInvalidURI) {
		t.Errorf("error = %v, want ErrInvalidURI", err)
	}
}

func TestAggregateResult_SecondIndependentListing(t *testing.T) {
	store := newFakeStore()
	store.put("out", "jobs/abc/0.json", []byte(`{"responses":[]}`))
	svc := newTestService(&fakeEngine{}, store)

	if _, err := svc.AggregateResult(context.Background(), "gs://out/jobs/abc/"); err != nil {
		t.Fatalf("AggregateResult() error = %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("listCalls = %d, want 2 (aggregation walk + independent count)", store.listCalls)
	}
}

func TestAggregateResult_MalformedShard(t *testing.T) {
	store := newFakeStore()
	store.put("out", "jobs/abc/0.json", []byte("not json"))
	svc := newTestService(&fakeEngine{}, store)

	if _, err := svc.AggregateResult(context.Background(), "gs://out/jobs/abc/"); err == nil {
		t.Fatal("AggregateResult() expected error for malformed shard")
	}
}
