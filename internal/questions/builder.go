package questions

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/utils"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

// listMarkers are stripped from the start of every generated line.
const listMarkers = "-•*0123456789.) \t"

// Builder derives one technical question per declared technology.
type Builder struct {
	oracle ai.Oracle
	logger *zap.Logger
}

func NewBuilder(oracle ai.Oracle, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{oracle: oracle, logger: logger}
}

// Build requests len(SplitTechStack(techStack)) questions from the oracle.
// The result may be shorter than requested, including empty; it is never longer.
func (b *Builder) Build(ctx context.Context, techStack, experience string) ([]string, error) {
	techs := SplitTechStack(techStack)
	if len(techs) == 0 {
		return nil, nil
	}

	raw, err := b.oracle.Generate(ctx, BuildPrompt(techs, experience))
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	questions := ParseQuestionList(raw)
	if len(questions) > len(techs) {
		questions = questions[:len(techs)]
	}

	b.logger.Info("question set generated",
		zap.Int("requested", len(techs)),
		zap.Int("received", len(questions)),
	)
	if len(questions) < len(techs) {
		b.logger.Warn("oracle under-produced questions",
			zap.Strings("technologies", techs),
			zap.String("response_preview", utils.TruncateForLog(raw, 200)),
		)
	}

	return questions, nil
}

// BuildPrompt fills the question generation template.
func BuildPrompt(techs []string, experience string) string {
	experience = strings.TrimSpace(experience)
	if experience == "" {
		experience = "unknown"
	}

	return strings.NewReplacer(
		"{{EXPERIENCE}}", experience,
		"{{TECHNOLOGIES}}", strings.Join(techs, ", "),
		"{{COUNT}}", strconv.Itoa(len(techs)),
	).Replace(promptTemplate)
}

// SplitTechStack splits a comma-separated stack into trimmed, non-empty tokens.
func SplitTechStack(techStack string) []string {
	parts := strings.Split(techStack, ",")
	techs := make([]string, 0, len(parts))
	for _, part := range parts {
		if tech := strings.TrimSpace(part); tech != "" {
			techs = append(techs, tech)
		}
	}
	return techs
}

// ParseQuestionList turns raw multi-line oracle output into clean questions:
// leading bullet and numbering markers are stripped, blank lines and lines ending in ':' are dropped.
func ParseQuestionList(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	questions := make([]string, 0, len(lines))
	for _, line := range lines {
		q := strings.TrimSpace(strings.TrimLeft(line, listMarkers))
		if q == "" || strings.HasSuffix(strings.TrimRight(q, "*"), ":") {
			continue
		}
		questions = append(questions, q)
	}
	return questions
}
