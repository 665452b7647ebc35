package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"regintel/internal/domain"
	"regintel/internal/port"
)

// Okapi BM25 parameters, matching the reference retriever.
const (
	k1      = 1.5
	b       = 0.75
	epsilon = 0.25
)

// docIndex is the complete, immutable ranking model for one document.
type docIndex struct {
	sections []domain.Section
	freqs    []map[string]int
	lens     []int
	avgLen   float64
	idf      map[string]float64
}

// BM25Index ranks a single document's sections by relevance to a free-text
// query using Okapi BM25 over whitespace-lowercased tokens. Indices are
// per-document; a query never crosses document boundaries, which keeps
// citations tied to the document being processed.
type BM25Index struct {
	mu       sync.RWMutex
	sections port.SectionRepository
	docs     map[uuid.UUID]*docIndex
}

// NewBM25Index creates an empty index backed by the given section store for
// lazy builds.
func NewBM25Index(sections port.SectionRepository) *BM25Index {
	return &BM25Index{
		sections: sections,
		docs:     make(map[uuid.UUID]*docIndex),
	}
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Build indexes a document's sections, replacing any prior index for that
// document. Building with zero sections stores nothing. The index is
// constructed off-lock and published atomically, so concurrent queries never
// observe a partially built index.
func (i *BM25Index) Build(documentID uuid.UUID, sections []domain.Section) {
	if len(sections) == 0 {
		return
	}

	idx := &docIndex{
		sections: sections,
		freqs:    make([]map[string]int, len(sections)),
		lens:     make([]int, len(sections)),
		idf:      make(map[string]float64),
	}

	df := make(map[string]int)
	totalLen := 0
	for n, s := range sections {
		tokens := tokenize(s.Text)
		freq := make(map[string]int, len(tokens))
		for _, t := range tokens {
			freq[t]++
		}
		for t := range freq {
			df[t]++
		}
		idx.freqs[n] = freq
		idx.lens[n] = len(tokens)
		totalLen += len(tokens)
	}
	idx.avgLen = float64(totalLen) / float64(len(sections))

	// Okapi IDF with the negative-value floor: terms appearing in more than
	// half the sections get epsilon times the average IDF instead of a
	// negative weight.
	n := float64(len(sections))
	idfSum := 0.0
	var negative []string
	for t, d := range df {
		idf := math.Log((n - float64(d) + 0.5) / (float64(d) + 0.5))
		idx.idf[t] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, t)
		}
	}
	avgIDF := idfSum / float64(len(df))
	for _, t := range negative {
		idx.idf[t] = epsilon * avgIDF
	}

	i.mu.Lock()
	i.docs[documentID] = idx
	i.mu.Unlock()
}

// Query returns up to topK (section, score) results ordered by descending
// score, ties broken by original section order. Unknown documents and
// documents with no sections yield an empty result. A document that has not
// been built yet is built lazily from the section store.
func (i *BM25Index) Query(ctx context.Context, documentID uuid.UUID, query string, topK int) ([]port.RetrievalResult, error) {
	i.mu.RLock()
	idx, ok := i.docs[documentID]
	i.mu.RUnlock()

	if !ok {
		sections, err := i.sections.ListByDocument(ctx, documentID)
		if err != nil {
			return nil, fmt.Errorf("bm25: loading sections for %s: %w", documentID, err)
		}
		i.Build(documentID, sections)

		i.mu.RLock()
		idx, ok = i.docs[documentID]
		i.mu.RUnlock()
		if !ok {
			return nil, nil
		}
	}

	if topK <= 0 {
		return nil, nil
	}

	results := make([]port.RetrievalResult, len(idx.sections))
	tokens := tokenize(query)
	for n := range idx.sections {
		score := 0.0
		norm := k1 * (1 - b + b*float64(idx.lens[n])/idx.avgLen)
		for _, t := range tokens {
			f := float64(idx.freqs[n][t])
			if f == 0 {
				continue
			}
			score += idx.idf[t] * f * (k1 + 1) / (f + norm)
		}
		results[n] = port.RetrievalResult{Section: idx.sections[n], Score: score}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// QueryKeywords joins keywords into a single query string.
func (i *BM25Index) QueryKeywords(ctx context.Context, documentID uuid.UUID, keywords []string, topK int) ([]port.RetrievalResult, error) {
	return i.Query(ctx, documentID, strings.Join(keywords, " "), topK)
}
