package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ocrgateway/internal/storage"
)

const shardSuffix = ".json"

// Explicit schema for a Vision result shard: one file holds the
// AnnotateImageResponse of up to batchSize pages.
type shardFile struct {
	Responses []shardResponse `json:"responses"`
}

type shardResponse struct {
	FullTextAnnotation *shardTextAnnotation `json:"fullTextAnnotation"`
}

type shardTextAnnotation struct {
	Text string `json:"text"`
}

// AggregateResult collects every result shard under the given gs:// prefix
// and merges them into one ordered page sequence.
//
// Candidate pages are sorted by originating shard address before numbering,
// because object listings carry no stable order guarantee across calls; the
// sort makes the output deterministic for a given set of shards. FileCount
// comes from a second, independent listing pass and is reported even when a
// shard contributes zero pages. An empty prefix yields an empty page list
// and a zero count, not an error.
func (s *Service) AggregateResult(ctx context.Context, prefixURI string) (*AggregatedResult, error) {
	bucket, prefix, err := storage.ParseURI(prefixURI)
	if err != nil {
		return nil, err
	}
	// Treat the prefix as a folder boundary so sibling prefixes sharing the
	// same leading string never match.
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	names, err := s.store.List(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list result shards: %w", err)
	}

	pages := make([]Page, 0)
	for _, name := range names {
		if !strings.HasSuffix(strings.ToLower(name), shardSuffix) {
			continue
		}

		data, err := s.store.Download(ctx, bucket, name)
		if err != nil {
			return nil, fmt.Errorf("failed to download shard: %w", err)
		}

		var shard shardFile
		if err := json.Unmarshal(data, &shard); err != nil {
			return nil, fmt.Errorf("failed to decode shard %s: %w", storage.URI(bucket, name), err)
		}

		source := storage.URI(bucket, name)
		for _, resp := range shard.Responses {
			text := ""
			if resp.FullTextAnnotation != nil {
				text = resp.FullTextAnnotation.Text
			}
			pages = append(pages, Page{Text: text, Source: source})
		}
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Source < pages[j].Source })
	for i := range pages {
		pages[i].Page = i + 1
	}

	fileCount, err := s.countShards(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	return &AggregatedResult{Pages: pages, FileCount: fileCount}, nil
}

// countShards counts result shards under the prefix with its own listing
// call, kept separate from the shard walk in AggregateResult.
func (s *Service) countShards(ctx context.Context, bucket, prefix string) (int, error) {
	names, err := s.store.List(ctx, bucket, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to count result shards: %w", err)
	}
	count := 0
	for _, name := range names {
		if strings.HasSuffix(strings.ToLower(name), shardSuffix) {
			count++
		}
	}
	return count, nil
}
