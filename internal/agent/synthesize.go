package agent

import (
	"context"
	"regexp"
	"strings"

	"github.com/sqlpilot/sqlpilot/internal/errors"
	"github.com/sqlpilot/sqlpilot/internal/llm"
	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// Synthesizer turns a natural language request into a cleaned SQL candidate
// by way of the text-generation service, enriching the prompt with schema
// context and conversational hints.
type Synthesizer struct {
	llm      llm.Service
	registry *schema.Registry
	memory   *Memory
}

// NewSynthesizer wires a synthesizer to its collaborators.
func NewSynthesizer(svc llm.Service, registry *schema.Registry, memory *Memory) *Synthesizer {
	return &Synthesizer{llm: svc, registry: registry, memory: memory}
}

// Synthesize generates and cleans one SQL statement for a request. The
// prompt/statement pair is recorded in shared memory regardless of outcome.
func (s *Synthesizer) Synthesize(ctx context.Context, request string) (string, error) {
	schemaContext := s.registry.Describe()

	if hints := s.memory.Hints(); hints != "" {
		schemaContext += "\n" + hints
	}

	raw, err := s.llm.GenerateSQL(ctx, request, schemaContext)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeSynthesis, "SQL generation failed")
	}

	cleaned := CleanSQL(raw)
	s.memory.RecordQuery(request, cleaned)

	if cleaned == "" {
		return "", errors.New(errors.ErrTypeSynthesis, "no SQL statement in generated text").
			WithSuggestion("rephrase the request naming a table and an action")
	}

	// Generated statements routinely use plural or aliased table names.
	return s.registry.NormalizeSQL(cleaned), nil
}

var (
	fenceRe      = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)```")
	sqlKeywordRe = regexp.MustCompile(`(?is)\b(SELECT|INSERT|UPDATE|DELETE)\b`)
)

// CleanSQL strips code fences and surrounding prose from generated text,
// keeping the first statement. An empty return means no SQL was recognized.
func CleanSQL(raw string) string {
	text := strings.TrimSpace(raw)

	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	loc := sqlKeywordRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	text = text[loc[0]:]

	// Keep a single statement: cut at the first semicolon outside quotes.
	if i := topLevelSemicolon(text); i >= 0 {
		text = text[:i+1]
	}

	return strings.TrimSpace(text)
}

func topLevelSemicolon(s string) int {
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ';':
			return i
		}
	}

	return -1
}
