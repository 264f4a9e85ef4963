package screening

import "strings"

const (
	validToken = "VALID"

	// DefaultRetryMessage is surfaced when the oracle verdict is blank.
	DefaultRetryMessage = "Sorry, I couldn't validate that answer. Could you please answer again?"
)

// Verdict is the classification of an answer: Valid, or Invalid with a candidate-facing retry message.
type Verdict struct {
	Valid bool
	Retry string
}

func Valid() Verdict { return Verdict{Valid: true} }

func Invalid(retry string) Verdict { return Verdict{Retry: retry} }

// ParseVerdict classifies raw oracle output. Anything whose trimmed, upper-cased text does not start
// with VALID is a rejection and the trimmed text is kept verbatim as the retry message.
func ParseVerdict(raw string) Verdict {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Invalid(DefaultRetryMessage)
	}

	// Tolerate markdown emphasis or quoting around the token.
	head := strings.TrimLeft(text, "\"'`*_ ")
	if strings.HasPrefix(strings.ToUpper(head), validToken) {
		return Valid()
	}

	return Invalid(text)
}
