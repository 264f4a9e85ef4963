package screening

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/candidate"

	"go.uber.org/zap"
)

type stubOracle struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (s *stubOracle) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		raw   string
		valid bool
		retry string
	}{
		{name: "exact", raw: "VALID", valid: true},
		{name: "lowercase with punctuation", raw: "  valid.\n", valid: true},
		{name: "markdown emphasis", raw: "**VALID**", valid: true},
		{name: "rejection kept verbatim", raw: "  Please provide an email address with a domain, e.g. name@example.com.  ", retry: "Please provide an email address with a domain, e.g. name@example.com."},
		{name: "invalid token is a rejection", raw: "INVALID", retry: "INVALID"},
		{name: "valid not at start", raw: "The answer is VALID", retry: "The answer is VALID"},
		{name: "empty fails closed", raw: "   ", retry: DefaultRetryMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := ParseVerdict(tc.raw)
			if v.Valid != tc.valid {
				t.Fatalf("expected valid=%v, got %v", tc.valid, v.Valid)
			}
			if v.Retry != tc.retry {
				t.Fatalf("expected retry %q, got %q", tc.retry, v.Retry)
			}
		})
	}
}

func TestValidateBuildsPromptFromTranscript(t *testing.T) {
	stub := &stubOracle{response: "VALID"}
	g := New(stub, zap.NewNop(), 0)

	transcript := candidate.Transcript{
		{Speaker: candidate.SpeakerAssistant, Text: "What is your Full Name?"},
		{Speaker: candidate.SpeakerUser, Text: "I think my name is John"},
	}

	verdict, err := g.Validate(context.Background(), transcript, "Full Name", "I think my name is John", KindInfo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Valid {
		t.Fatalf("expected valid verdict")
	}

	prompt := stub.lastPrompt
	for _, want := range []string{
		"assistant: What is your Full Name?\nuser: I think my name is John",
		"Answer kind: info",
		`Current question: "Full Name"`,
		`Candidate's answer: "I think my name is John"`,
		"respond ONLY with the word VALID",
		"at least 7 digits",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}

	if strings.Contains(prompt, "{{") {
		t.Fatalf("unfilled placeholder in prompt:\n%s", prompt)
	}
}

func TestInterviewPromptAlwaysAcceptsDontKnow(t *testing.T) {
	prompt := BuildValidationPrompt(nil, "What is a goroutine?", "I don't know", KindInterview)

	if !strings.Contains(prompt, `"I don't know", "not sure", "no idea", "skip", "pass" and similar answers are ALWAYS VALID`) {
		t.Fatalf("expected always-accept instruction, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Never correct, grade or explain") {
		t.Fatalf("expected no-correction instruction, got:\n%s", prompt)
	}
	if strings.Contains(prompt, "Email Address: must contain") {
		t.Fatalf("interview prompt must not carry info rules")
	}
	if !strings.Contains(prompt, "(no messages yet)") {
		t.Fatalf("expected empty transcript placeholder")
	}
}

func TestValidatePropagatesOracleErrors(t *testing.T) {
	stub := &stubOracle{err: ai.ErrOracleUnavailable}
	g := New(stub, nil, 0)

	_, err := g.Validate(context.Background(), nil, "Email Address", "x", KindInfo)
	if !errors.Is(err, ai.ErrOracleUnavailable) {
		t.Fatalf("expected oracle unavailable, got %v", err)
	}
}

func TestPlaceholdersInAnswerAreNotExpanded(t *testing.T) {
	prompt := BuildValidationPrompt(nil, "Full Name", "{{RULES}}", KindInfo)
	if !strings.Contains(prompt, `Candidate's answer: "{{RULES}}"`) {
		t.Fatalf("answer must be embedded literally, got:\n%s", prompt)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name     string
		field    candidate.Field
		raw      string
		response string
		want     string
		hint     string
	}{
		{name: "phone digits", field: candidate.FieldPhone, raw: "+91 98765-43210", response: " 919876543210\n", want: "919876543210", hint: "digits only"},
		{name: "experience number", field: candidate.FieldExperience, raw: "about three years", response: "3", want: "3", hint: "bare number"},
		{name: "tech stack", field: candidate.FieldTechStack, raw: "python django", response: "Python, Django", want: "Python, Django", hint: "comma-separated list"},
		{name: "empty falls back to raw", field: candidate.FieldLocation, raw: "  Bangalore ", response: "  ", want: "Bangalore", hint: "City"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubOracle{response: tc.response}
			got, err := New(stub, zap.NewNop(), 0).Normalize(context.Background(), tc.field, tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if !strings.Contains(stub.lastPrompt, tc.hint) {
				t.Fatalf("expected prompt to contain %q, got:\n%s", tc.hint, stub.lastPrompt)
			}
			if !strings.Contains(stub.lastPrompt, tc.field.Label()) {
				t.Fatalf("expected prompt to mention %q", tc.field.Label())
			}
		})
	}
}

func TestNormalizePropagatesOracleErrors(t *testing.T) {
	stub := &stubOracle{err: errors.New("boom")}
	if _, err := New(stub, nil, 0).Normalize(context.Background(), candidate.FieldEmail, "a@b.c"); err == nil {
		t.Fatal("expected error")
	}
}
