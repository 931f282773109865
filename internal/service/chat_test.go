package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"docchat/internal/domain"
	"docchat/internal/extractor"
	"docchat/internal/store/memory"
	"docchat/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newChatFixture(t *testing.T) (*ChatService, *MockProvider, *MockVectorStore, *memory.Store) {
	t.Helper()
	provider := new(MockProvider)
	vectors := new(MockVectorStore)
	fallback := memory.NewStore()
	svc := NewChatService(provider, vectors, fallback)
	return svc, provider, vectors, fallback
}

func TestChat_NoDocumentsPlainPrompt(t *testing.T) {
	svc, provider, vectors, _ := newChatFixture(t)
	ctx := context.Background()

	vectors.On("SearchDocuments", ctx, "new-session", "hello", vectorstore.DefaultTopK).
		Return([]vectorstore.Match{}, nil)

	var prompt string
	provider.On("GenerateText", ctx, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return("Hi there!", nil)

	result, err := svc.Chat(ctx, "new-session", "hello")

	assert.NoError(t, err)
	assert.Equal(t, 0, result.DocumentsFound)
	assert.Equal(t, "Hi there!", result.Response)
	assert.NotContains(t, prompt, "Document:", "no grounding section without retrieved documents")
	assert.Contains(t, prompt, "hello")
}

func TestChat_GroundedPromptContainsFilenames(t *testing.T) {
	svc, provider, vectors, _ := newChatFixture(t)
	ctx := context.Background()

	matches := []vectorstore.Match{
		{DocumentID: "s1_1_a", Content: "alpha content", Metadata: domain.DocumentMetadata{Filename: "alpha.txt"}, Score: 0.9},
		{DocumentID: "s1_2_b", Content: "beta content", Metadata: domain.DocumentMetadata{Filename: "beta.pdf"}, Score: 0.7},
	}
	vectors.On("SearchDocuments", ctx, "s1", "question", vectorstore.DefaultTopK).
		Return(matches, nil)

	var prompt string
	provider.On("GenerateText", ctx, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return("answer", nil)

	result, err := svc.Chat(ctx, "s1", "question")

	assert.NoError(t, err)
	assert.Equal(t, 2, result.DocumentsFound)
	assert.Equal(t, domain.TierVector, result.Tier)
	assert.Contains(t, prompt, "alpha.txt")
	assert.Contains(t, prompt, "beta.pdf")
	assert.Contains(t, prompt, "alpha content")
}

func TestChat_SearchFailureScansFallback(t *testing.T) {
	svc, provider, vectors, fallback := newChatFixture(t)
	ctx := context.Background()

	fallback.PutDocument(domain.Document{
		ID: "s1_1_notes", SessionID: "s1", Content: "fallback notes",
		Metadata: domain.DocumentMetadata{Filename: "notes.txt"},
	})

	vectors.On("SearchDocuments", ctx, "s1", "what do my notes say?", vectorstore.DefaultTopK).
		Return(nil, &domain.StoreError{Op: "search", Err: errors.New("unreachable")})
	provider.On("GenerateText", ctx, mock.AnythingOfType("string")).Return("your notes say things", nil)

	result, err := svc.Chat(ctx, "s1", "what do my notes say?")

	assert.NoError(t, err)
	assert.Equal(t, 1, result.DocumentsFound)
	assert.Equal(t, domain.TierFallback, result.Tier)
}

func TestChat_FallbackScanCapped(t *testing.T) {
	svc, provider, vectors, fallback := newChatFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		fallback.PutDocument(domain.Document{
			ID: fmt.Sprintf("s1_%d", i), SessionID: "s1", Content: "c",
			Metadata: domain.DocumentMetadata{Filename: fmt.Sprintf("f%d.txt", i)},
		})
	}

	vectors.On("SearchDocuments", ctx, "s1", "q", vectorstore.DefaultTopK).
		Return([]vectorstore.Match{}, nil)
	provider.On("GenerateText", ctx, mock.AnythingOfType("string")).Return("ok", nil)

	result, err := svc.Chat(ctx, "s1", "q")

	assert.NoError(t, err)
	assert.Equal(t, vectorstore.DefaultTopK, result.DocumentsFound, "fallback scan takes the first three in storage order")
}

func TestChat_QuotaDegradesWithWarning(t *testing.T) {
	svc, provider, vectors, _ := newChatFixture(t)
	ctx := context.Background()

	vectors.On("SearchDocuments", ctx, "s1", "q", vectorstore.DefaultTopK).
		Return([]vectorstore.Match{}, nil)
	provider.On("GenerateText", ctx, mock.AnythingOfType("string")).
		Return("", fmt.Errorf("gemini generation: %w", domain.ErrQuotaExceeded))

	result, err := svc.Chat(ctx, "s1", "q")

	assert.NoError(t, err, "quota exhaustion must not fail the request")
	assert.Equal(t, QuotaWarning, result.Warning)
	assert.NotEmpty(t, result.Response)
}

func TestChat_OtherModelErrorPropagates(t *testing.T) {
	svc, provider, vectors, _ := newChatFixture(t)
	ctx := context.Background()

	vectors.On("SearchDocuments", ctx, "s1", "q", vectorstore.DefaultTopK).
		Return([]vectorstore.Match{}, nil)
	provider.On("GenerateText", ctx, mock.AnythingOfType("string")).
		Return("", errors.New("backend exploded"))

	result, err := svc.Chat(ctx, "s1", "q")

	assert.Nil(t, result)
	var upstream *domain.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestChat_SuccessAppendsHistory(t *testing.T) {
	svc, provider, vectors, fallback := newChatFixture(t)
	ctx := context.Background()

	vectors.On("SearchDocuments", ctx, "s1", "hi", vectorstore.DefaultTopK).
		Return([]vectorstore.Match{}, nil)
	provider.On("GenerateText", ctx, mock.AnythingOfType("string")).Return("hello!", nil)

	_, err := svc.Chat(ctx, "s1", "hi")
	assert.NoError(t, err)

	history := fallback.History("s1")
	assert.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Equal(t, "hello!", history[1].Content)
}

// End-to-end through ingestion and chat with the vector tier down: the
// kiln manual lands in the fallback store and still grounds the answer.
func TestUploadThenChat_FallbackPath(t *testing.T) {
	provider := new(MockProvider)
	vectors := new(MockVectorStore)
	fallback := memory.NewStore()
	ingest := NewIngestService(extractor.New(provider), vectors, fallback)
	chat := NewChatService(provider, vectors, fallback)
	ctx := context.Background()

	vectors.On("StoreDocument", ctx, mock.AnythingOfType("*domain.Document")).
		Return(&domain.StoreError{Op: "upsert", Err: errors.New("down")})
	vectors.On("SearchDocuments", ctx, "s1", mock.AnythingOfType("string"), vectorstore.DefaultTopK).
		Return(nil, &domain.StoreError{Op: "search", Err: errors.New("down")})
	vectors.On("SessionDocuments", ctx, "s1").
		Return(nil, &domain.StoreError{Op: "scroll", Err: errors.New("down")})

	ingestResult, err := ingest.IngestFile(ctx, "s1", FileInput{
		Filename:    "manual.txt",
		ContentType: "text/plain",
		Data:        []byte("Kiln temperature must stay below 1450C."),
	})
	assert.NoError(t, err)
	assert.Equal(t, 39, ingestResult.TextLength)
	assert.True(t, strings.HasPrefix(ingestResult.DocumentID, "s1_"))

	count, tier := chat.SessionInfo(ctx, "s1")
	assert.Equal(t, 1, count)
	assert.Equal(t, domain.TierFallback, tier)

	var prompt string
	provider.On("GenerateText", ctx, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return("The manual says the maximum kiln temperature is **1450C**.", nil)

	chatResult, err := chat.Chat(ctx, "s1", "What is the max kiln temperature?")
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, chatResult.DocumentsFound, 1)
	assert.Contains(t, chatResult.Response, "1450")
	assert.Contains(t, prompt, "manual.txt")
	assert.Contains(t, prompt, "1450C")
}

func TestSessionInfo_PrefersVectorListing(t *testing.T) {
	svc, _, vectors, fallback := newChatFixture(t)
	ctx := context.Background()

	vectors.On("SessionDocuments", ctx, "s1").
		Return([]vectorstore.Match{{DocumentID: "s1_1"}, {DocumentID: "s1_2"}}, nil)
	fallback.PutDocument(domain.Document{ID: "s1_old", SessionID: "s1", Content: "x"})

	count, tier := svc.SessionInfo(ctx, "s1")
	assert.Equal(t, 2, count)
	assert.Equal(t, domain.TierVector, tier)
}

func TestSessionInfo_EmptySession(t *testing.T) {
	svc, _, vectors, _ := newChatFixture(t)
	ctx := context.Background()

	vectors.On("SessionDocuments", ctx, "nobody").
		Return([]vectorstore.Match{}, nil)

	count, tier := svc.SessionInfo(ctx, "nobody")
	assert.Equal(t, 0, count)
	assert.Equal(t, domain.TierVector, tier)
}
