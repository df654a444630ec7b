package ollama

import (
	"fmt"
	"strings"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
)

func buildAnswerPrompt(question string, sources []domain.Document) string {
	var contextBuilder strings.Builder
	for idx, doc := range sources {
		contextBuilder.WriteString(fmt.Sprintf(
			"[%d] source=%s page=%d type=%s\n%s\n\n",
			idx+1,
			doc.Source,
			doc.Page,
			doc.ContentType,
			doc.Text,
		))
	}

	return fmt.Sprintf(`Answer the user question only from the documentation excerpts below.
Quote exact figures and units when the excerpts contain them.
If the excerpts do not contain the answer, say that the documentation does not specify it.

Question:
%s

Excerpts:
%s
`, question, contextBuilder.String())
}
