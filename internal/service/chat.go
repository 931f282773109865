package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docchat/internal/domain"
	"docchat/internal/llm"
	"docchat/internal/store/memory"
	"docchat/internal/vectorstore"
	"github.com/rs/zerolog/log"
)

// QuotaWarning flags a degraded response produced under quota exhaustion
const QuotaWarning = "model quota exceeded; returned a degraded response"

// ChatResult is one chat turn's outcome
type ChatResult struct {
	Response       string             `json:"response"`
	DocumentsFound int                `json:"documentsFound"`
	Tier           domain.StorageTier `json:"storage"`
	Warning        string             `json:"warning,omitempty"`
}

// ChatService runs the retrieval-augmented chat pipeline: resolve session,
// retrieve grounding documents, build a prompt, generate, degrade on quota.
type ChatService struct {
	provider llm.Provider
	vectors  vectorstore.Store
	fallback *memory.Store
}

func NewChatService(provider llm.Provider, vectors vectorstore.Store, fallback *memory.Store) *ChatService {
	return &ChatService{
		provider: provider,
		vectors:  vectors,
		fallback: fallback,
	}
}

// Chat answers one message for a session. Quota exhaustion on the model
// call degrades to a canned response with a warning instead of failing;
// every other model failure is an UpstreamError. No stage retries.
func (s *ChatService) Chat(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	s.fallback.Touch(sessionID)

	docs, tier := s.retrieve(ctx, sessionID, message)

	var prompt string
	if len(docs) > 0 {
		prompt = llm.BuildGroundedPrompt(docs, message)
	} else {
		prompt = llm.BuildAssistantPrompt(message)
	}

	answer, err := s.provider.GenerateText(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("chat degraded by quota exhaustion")
			return &ChatResult{
				Response:       degradedResponse(len(docs)),
				DocumentsFound: len(docs),
				Tier:           tier,
				Warning:        QuotaWarning,
			}, nil
		}
		return nil, &domain.UpstreamError{Op: "generate", Err: err}
	}

	now := time.Now()
	s.fallback.AppendMessage(sessionID, domain.Message{Role: domain.RoleUser, Content: message, CreatedAt: now})
	s.fallback.AppendMessage(sessionID, domain.Message{Role: domain.RoleAssistant, Content: answer, CreatedAt: time.Now()})

	return &ChatResult{
		Response:       answer,
		DocumentsFound: len(docs),
		Tier:           tier,
	}, nil
}

// retrieve finds up to DefaultTopK grounding documents: vector search
// first, fallback scan (storage order, no ranking) when the search fails
// or finds nothing.
func (s *ChatService) retrieve(ctx context.Context, sessionID, message string) ([]llm.RetrievedDocument, domain.StorageTier) {
	matches, err := s.vectors.SearchDocuments(ctx, sessionID, message, vectorstore.DefaultTopK)
	if err == nil && len(matches) > 0 {
		docs := make([]llm.RetrievedDocument, 0, len(matches))
		for _, m := range matches {
			docs = append(docs, llm.RetrievedDocument{Filename: m.Metadata.Filename, Content: m.Content})
		}
		return docs, domain.TierVector
	}
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("vector search failed, scanning fallback store")
	}

	stored := s.fallback.SessionDocuments(sessionID, vectorstore.DefaultTopK)
	docs := make([]llm.RetrievedDocument, 0, len(stored))
	for _, d := range stored {
		docs = append(docs, llm.RetrievedDocument{Filename: d.Metadata.Filename, Content: d.Content})
	}
	return docs, domain.TierFallback
}

// SessionInfo reports a session's document count and the tier serving it:
// the vector listing when it is reachable and has records, otherwise the
// fallback store.
func (s *ChatService) SessionInfo(ctx context.Context, sessionID string) (int, domain.StorageTier) {
	matches, err := s.vectors.SessionDocuments(ctx, sessionID)
	if err == nil && len(matches) > 0 {
		return len(matches), domain.TierVector
	}

	if count := s.fallback.DocumentCount(sessionID); count > 0 {
		return count, domain.TierFallback
	}
	if err == nil {
		return 0, domain.TierVector
	}
	return 0, domain.TierFallback
}

func degradedResponse(documentsFound int) string {
	if documentsFound > 0 {
		return fmt.Sprintf("I found %d relevant document(s) for your question, but the language model is temporarily rate-limited and cannot compose an answer right now. Please try again in a moment.", documentsFound)
	}
	return "The language model is temporarily rate-limited and cannot answer right now. Please try again in a moment."
}
