package screening

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/utils"

	"go.uber.org/zap"
)

// Kind selects the judging policy for an answer.
type Kind string

const (
	KindInfo      Kind = "info"
	KindInterview Kind = "interview"
)

//go:embed prompts/*.md
var prompts embed.FS

var (
	validateTemplate  = mustPrompt("validate.md")
	normalizeTemplate = mustPrompt("normalize.md")
	rules             = map[Kind]string{
		KindInfo:      mustPrompt("rules_info.md"),
		KindInterview: mustPrompt("rules_interview.md"),
	}
)

var normalizeInstructions = map[candidate.Field]string{
	candidate.FieldName:       `Return the person's name as they gave it, without filler such as "my name is" or "I think".`,
	candidate.FieldEmail:      "Return only the email address, in lowercase.",
	candidate.FieldPhone:      "Return digits only, with no spaces, separators or symbols.",
	candidate.FieldExperience: "Return the number of years as a bare number, e.g. 3 or 2.5. Convert spelled-out numbers to digits.",
	candidate.FieldPosition:   "Return the position title(s), comma-separated when there are several.",
	candidate.FieldLocation:   "Return the location as written, e.g. City or City, Country.",
	candidate.FieldTechStack:  "Return the technologies as a comma-separated list of their canonical names, e.g. Python, Django, PostgreSQL.",
}

const defaultMaxLogLength = 200

// Gateway wraps the oracle with the validation and normalization prompt contracts.
type Gateway struct {
	oracle    ai.Oracle
	logger    *zap.Logger
	maxLogLen int
}

func New(oracle ai.Oracle, logger *zap.Logger, maxLogLength int) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Gateway{oracle: oracle, logger: logger, maxLogLen: maxLogLength}
}

// Validate asks the oracle to judge answer against question, with transcript as context.
// Oracle failures are returned as errors; unparseable output fails closed.
func (g *Gateway) Validate(ctx context.Context, transcript candidate.Transcript, question, answer string, kind Kind) (Verdict, error) {
	prompt := BuildValidationPrompt(transcript, question, answer, kind)

	raw, err := g.oracle.Generate(ctx, prompt)
	if err != nil {
		return Verdict{}, fmt.Errorf("validate %s answer: %w", kind, err)
	}

	verdict := ParseVerdict(raw)
	g.logger.Debug("answer validated",
		zap.String("kind", string(kind)),
		zap.String("question", utils.TruncateForLog(question, g.maxLogLen)),
		zap.Bool("valid", verdict.Valid),
		zap.String("verdict_preview", utils.TruncateForLog(raw, g.maxLogLen)),
	)

	return verdict, nil
}

// Normalize asks the oracle for the canonical form of a field value.
func (g *Gateway) Normalize(ctx context.Context, field candidate.Field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	out, err := g.oracle.Generate(ctx, BuildNormalizationPrompt(field, raw))
	if err != nil {
		return "", fmt.Errorf("normalize %s: %w", field, err)
	}

	value := strings.TrimSpace(out)
	if value == "" {
		g.logger.Warn("empty normalization, keeping raw answer", zap.String("field", string(field)))
		return raw, nil
	}

	g.logger.Debug("field normalized",
		zap.String("field", string(field)),
		zap.String("value_preview", utils.TruncateForLog(value, g.maxLogLen)),
	)

	return value, nil
}

// BuildValidationPrompt fills the validation template.
func BuildValidationPrompt(transcript candidate.Transcript, question, answer string, kind Kind) string {
	policy, ok := rules[kind]
	if !ok {
		policy = rules[KindInfo]
	}

	history := transcript.Context()
	if history == "" {
		history = "(no messages yet)"
	}

	return fill(validateTemplate, map[string]string{
		"TRANSCRIPT": history,
		"KIND":       string(kind),
		"QUESTION":   question,
		"ANSWER":     answer,
		"RULES":      strings.TrimSpace(policy),
	})
}

// BuildNormalizationPrompt fills the normalization template for the field.
func BuildNormalizationPrompt(field candidate.Field, raw string) string {
	instruction, ok := normalizeInstructions[field]
	if !ok {
		instruction = "Return the value concisely."
	}

	return fill(normalizeTemplate, map[string]string{
		"LABEL":       field.Label(),
		"INSTRUCTION": instruction,
		"ANSWER":      raw,
	})
}

func fill(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	// Single pass so user text containing a placeholder is never expanded.
	return strings.NewReplacer(pairs...).Replace(template)
}

func mustPrompt(name string) string {
	data, err := prompts.ReadFile("prompts/" + name)
	if err != nil {
		panic(fmt.Sprintf("missing embedded prompt %s: %v", name, err))
	}
	return string(data)
}
