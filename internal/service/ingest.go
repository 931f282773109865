package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"docchat/internal/domain"
	"docchat/internal/extractor"
	"docchat/internal/store/memory"
	"docchat/internal/vectorstore"
	"github.com/rs/zerolog/log"
)

var errEmptyExtraction = errors.New("extracted text is empty")

// FileInput is one uploaded file handed to ingestion
type FileInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IngestResult is the uniform per-file record of a successful ingestion
type IngestResult struct {
	DocumentID string             `json:"documentId"`
	Filename   string             `json:"filename"`
	TextLength int                `json:"textLength"`
	Tier       domain.StorageTier `json:"storage"`
}

// IngestFailure captures one file's failure without aborting the batch
type IngestFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"error"`
}

// BatchResult is the partial-success report for a multi-file upload
type BatchResult struct {
	Results  []IngestResult  `json:"results"`
	Failures []IngestFailure `json:"errors"`
}

// IngestService coordinates extraction and tiered storage of uploaded
// documents.
type IngestService struct {
	extractor *extractor.Extractor
	vectors   vectorstore.Store
	fallback  *memory.Store
}

func NewIngestService(ext *extractor.Extractor, vectors vectorstore.Store, fallback *memory.Store) *IngestService {
	return &IngestService{
		extractor: ext,
		vectors:   vectors,
		fallback:  fallback,
	}
}

// IngestFile extracts one file's text and stores the resulting document in
// the vector tier, degrading to the in-memory fallback when the vector
// store cannot take it. Empty or whitespace-only extraction fails fast and
// never creates a document.
func (s *IngestService) IngestFile(ctx context.Context, sessionID string, file FileInput) (*IngestResult, error) {
	text, err := s.extractor.Extract(ctx, file.Data, file.ContentType, file.Filename)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, &domain.ExtractionError{
			Filename: file.Filename,
			Err:      errEmptyExtraction,
		}
	}

	now := time.Now()
	doc := domain.Document{
		ID:        domain.NewDocumentID(sessionID, file.Filename, now),
		SessionID: sessionID,
		Content:   text,
		Metadata: domain.DocumentMetadata{
			Filename:    file.Filename,
			ContentType: file.ContentType,
			SizeBytes:   int64(len(file.Data)),
			IngestedAt:  now,
		},
	}

	tier := domain.TierVector
	if err := s.vectors.StoreDocument(ctx, &doc); err != nil {
		log.Warn().Err(err).
			Str("session_id", sessionID).
			Str("document_id", doc.ID).
			Msg("vector store rejected document, using fallback tier")
		s.fallback.PutDocument(doc)
		tier = domain.TierFallback
	}

	return &IngestResult{
		DocumentID: doc.ID,
		Filename:   file.Filename,
		TextLength: len(text),
		Tier:       tier,
	}, nil
}

// IngestBatch processes files sequentially and independently: one file's
// failure is recorded and the rest continue.
func (s *IngestService) IngestBatch(ctx context.Context, sessionID string, files []FileInput) *BatchResult {
	batch := &BatchResult{
		Results:  []IngestResult{},
		Failures: []IngestFailure{},
	}

	for _, file := range files {
		result, err := s.IngestFile(ctx, sessionID, file)
		if err != nil {
			batch.Failures = append(batch.Failures, IngestFailure{
				Filename: file.Filename,
				Reason:   err.Error(),
			})
			continue
		}
		batch.Results = append(batch.Results, *result)
	}

	return batch
}
