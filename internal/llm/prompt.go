package llm

import (
	"fmt"
	"strings"
)

// excerpt budget per document in the grounding section
const excerptLimit = 2000

// RetrievedDocument is one grounding source for a chat prompt
type RetrievedDocument struct {
	Filename string
	Content  string
}

const formattingRules = `Format your answer for readability: use **bold** for key terms, bullet or numbered lists where they help, and separate ideas into paragraphs.`

// BuildGroundedPrompt assembles a document-grounded chat prompt. Each
// retrieved document contributes its filename and a content excerpt.
func BuildGroundedPrompt(docs []RetrievedDocument, question string) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant answering questions about the user's uploaded documents.\n\n")

	for _, doc := range docs {
		b.WriteString(fmt.Sprintf("Document: %s\nContent: %s\n\n", doc.Filename, excerpt(doc.Content)))
	}

	b.WriteString(fmt.Sprintf(`Question: %s

Answer primarily from the documents above. Use general knowledge only when the documents are insufficient, and clearly say which parts of your answer come from the documents and which do not.
%s`, question, formattingRules))

	return b.String()
}

// BuildAssistantPrompt is the no-documents variant of the chat prompt
func BuildAssistantPrompt(question string) string {
	return fmt.Sprintf(`You are a helpful assistant.

Question: %s

Answer from general knowledge. If the question seems to concern the user's own files, suggest uploading the relevant documents so you can answer from them.
%s`, question, formattingRules)
}

// ExtractionInstruction asks the model to return the plain text of an
// attached binary document and nothing else.
func ExtractionInstruction(filename string) string {
	return fmt.Sprintf(`Extract the complete text content of the attached document %q.
Return only the cleaned plain text: no commentary, no markdown fences, no summaries. Preserve paragraph structure.`, filename)
}

func excerpt(content string) string {
	if len(content) <= excerptLimit {
		return content
	}
	cut := excerptLimit
	for cut > 0 && !isRuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
