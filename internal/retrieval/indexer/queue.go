// Package indexer drives the per-file pipeline that turns workspace
// source into searchable chunks: hash the file, skip it if the
// catalog already has it at that hash, chunk it, look up or compute
// embeddings, write the chunk into the vector and BM25 stores, and
// update the catalog. The embedding queue component batches chunks
// across files and retries a failed provider call with exponential
// backoff before falling back to embedding one chunk at a time.
package indexer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/kadirpekel/cocode/internal/retrieval/embedding"
)

// QueueConfig controls the embedding queue's batching and retry
// behavior.
type QueueConfig struct {
	BatchSize        int
	MaxRetries       uint
	InitialInterval  time.Duration
	MaxInterval      time.Duration
	FallbackToSingle bool
}

func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		BatchSize:        32,
		MaxRetries:       5,
		InitialInterval:  500 * time.Millisecond,
		MaxInterval:      30 * time.Second,
		FallbackToSingle: true,
	}
}

// EmbeddingQueue batches pending chunk texts and calls a Provider,
// retrying transient failures with exponential backoff and degrading
// to one-at-a-time calls when a whole batch keeps failing.
type EmbeddingQueue struct {
	provider embedding.Provider
	cfg      QueueConfig
}

func NewEmbeddingQueue(provider embedding.Provider, cfg QueueConfig) *EmbeddingQueue {
	return &EmbeddingQueue{provider: provider, cfg: cfg}
}

// EmbedAll embeds every text, chunking the work into cfg.BatchSize
// groups and retrying each group with exponential backoff. If a batch
// still fails after MaxRetries and FallbackToSingle is set, its texts
// are retried individually rather than failing the whole call.
func (q *EmbeddingQueue) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	batchSize := q.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(texts)
	}
	if batchSize == 0 {
		return out, nil
	}

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		embeddings, err := q.embedBatchWithRetry(ctx, batch)
		if err != nil {
			if !q.cfg.FallbackToSingle {
				return nil, err
			}
			for i, text := range batch {
				single, singleErr := q.embedBatchWithRetry(ctx, []string{text})
				if singleErr != nil {
					return nil, singleErr
				}
				out[start+i] = single[0]
			}
			continue
		}
		for i, e := range embeddings {
			out[start+i] = e
		}
	}
	return out, nil
}

func (q *EmbeddingQueue) embedBatchWithRetry(ctx context.Context, batch []string) ([][]float32, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = q.cfg.InitialInterval
	bo.MaxInterval = q.cfg.MaxInterval

	return backoff.Retry(ctx, func() ([][]float32, error) {
		result, err := q.provider.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		return result, nil
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(q.cfg.MaxRetries))
}
