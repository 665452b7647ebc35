// Command extract runs the extraction pipeline over a single pre-segmented
// document without a database. It reads an ingestion payload from a JSON
// file, builds the SFDR state, and writes the result record as JSON.
// Usage: go run ./cmd/extract -input document.json [-output state.json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"regintel/internal/config"
	"regintel/internal/controller"
	"regintel/internal/domain"
	"regintel/internal/export"
	"regintel/internal/port"
	"regintel/internal/retrieval"
	"regintel/internal/service"
	"regintel/internal/worker"
	"regintel/internal/worker/ollama"
	"regintel/internal/worker/openai"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	inputPath := flag.String("input", "", "path to the ingestion payload JSON")
	outputPath := flag.String("output", "", "path for the result JSON (default stdout)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall extraction timeout")
	flag.Parse()

	if *inputPath == "" {
		return fmt.Errorf("-input is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	var input service.IngestDocumentInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}

	docType := domain.DocumentType(input.DocumentType)
	if !domain.AllowedDocumentTypes[docType] {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedDocumentType, input.DocumentType)
	}

	documentID := uuid.New()
	now := time.Now().UTC()
	sections := make([]domain.Section, 0, len(input.Sections))
	for _, in := range input.Sections {
		sections = append(sections, domain.Section{
			ID:         uuid.New(),
			DocumentID: documentID,
			Title:      in.Title,
			Level:      in.Level,
			PageStart:  in.PageStart,
			PageEnd:    in.PageEnd,
			Text:       in.Text,
			CreatedAt:  now,
		})
	}

	worker.RegisterProvider("openai", openai.New)
	worker.RegisterProvider("ollama", ollama.New)

	llmWorker, err := worker.NewWorker(&cfg.Worker.Primary)
	if err != nil {
		return fmt.Errorf("failed to initialize worker: %w", err)
	}
	if secondary := cfg.Worker.SecondaryConfig(); secondary != nil {
		secondaryWorker, err := worker.NewWorker(secondary)
		if err != nil {
			return fmt.Errorf("failed to initialize secondary worker: %w", err)
		}
		llmWorker = worker.NewFallbackWorker([]port.LLMWorker{llmWorker, secondaryWorker})
	}

	store := &memSectionStore{byDocument: map[uuid.UUID][]domain.Section{documentID: sections}}
	retriever := retrieval.NewBM25Index(store)
	retriever.Build(documentID, sections)

	builder := controller.NewDefaultStateBuilder(retriever, llmWorker, cfg.Extraction)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Printf("extract: building state for %s (isin=%s, sections=%d, worker=%s)",
		*inputPath, input.ISIN, len(sections), llmWorker.Name())

	state, err := builder.BuildState(ctx, documentID, input.ISIN, input.Version)
	if err != nil {
		return fmt.Errorf("building state: %w", err)
	}

	record := &export.Record{
		State: state,
		Metadata: export.Metadata{
			DocumentID:   documentID,
			ISIN:         input.ISIN,
			DocumentType: input.DocumentType,
			Worker:       llmWorker.Name(),
		},
	}

	out := os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return export.WriteJSON(out, record)
}

// memSectionStore backs the retriever when there is no database.
type memSectionStore struct {
	mu         sync.RWMutex
	byDocument map[uuid.UUID][]domain.Section
}

func (s *memSectionStore) Create(ctx context.Context, section *domain.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDocument[section.DocumentID] = append(s.byDocument[section.DocumentID], *section)
	return nil
}

func (s *memSectionStore) CreateBatch(ctx context.Context, sections []domain.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sec := range sections {
		s.byDocument[sec.DocumentID] = append(s.byDocument[sec.DocumentID], sec)
	}
	return nil
}

func (s *memSectionStore) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byDocument[documentID], nil
}
