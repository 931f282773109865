package extractor

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"docchat/internal/domain"
	"docchat/internal/llm"
)

// Extractor converts an uploaded file's raw bytes into plain text. Plain
// text is decoded locally; opaque binary formats (PDF/DOC/DOCX) go through
// a generative extraction call.
type Extractor struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract returns the text content of a file. Plain-text input is returned
// verbatim. Quota exhaustion on the model call surfaces as
// domain.ErrQuotaExceeded; any other failure, or a response with no usable
// text, is a domain.ExtractionError carrying the filename.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType, filename string) (string, error) {
	if isPlainText(mimeType) {
		if !utf8.Valid(data) {
			return "", &domain.ExtractionError{
				Filename: filename,
				Err:      errors.New("file is not valid UTF-8 text"),
			}
		}
		return string(data), nil
	}

	out, err := e.provider.GenerateFromFile(ctx, mimeType, data, llm.ExtractionInstruction(filename))
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			return "", err
		}
		return "", &domain.ExtractionError{Filename: filename, Err: err}
	}

	if strings.TrimSpace(out) == "" {
		return "", &domain.ExtractionError{
			Filename: filename,
			Err:      errors.New("model returned no usable text"),
		}
	}

	return out, nil
}

func isPlainText(mimeType string) bool {
	mt := strings.ToLower(mimeType)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return strings.HasPrefix(mt, "text/")
}
