package candidate

import (
	"fmt"
	"strings"
)

// Field is a named slot of the candidate record.
type Field string

const (
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldExperience Field = "experience"
	FieldPosition   Field = "position"
	FieldLocation   Field = "location"
	FieldTechStack  Field = "tech_stack"
)

// Fields lists the record fields in collection order.
var Fields = []Field{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldExperience,
	FieldPosition,
	FieldLocation,
	FieldTechStack,
}

var labels = map[Field]string{
	FieldName:       "Full Name",
	FieldEmail:      "Email Address",
	FieldPhone:      "Phone Number",
	FieldExperience: "Years of Experience",
	FieldPosition:   "Desired Position(s)",
	FieldLocation:   "Current Location",
	FieldTechStack:  "Tech Stack",
}

// Label returns the human readable question label of the field.
func (f Field) Label() string {
	if label, ok := labels[f]; ok {
		return label
	}
	return string(f)
}

// Record maps field names to their normalized values.
type Record map[Field]string

// Get returns the stored value or an empty string.
func (r Record) Get(f Field) string {
	if r == nil {
		return ""
	}
	return r[f]
}

// Has reports whether the field was collected.
func (r Record) Has(f Field) bool {
	_, ok := r[f]
	return ok
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Speaker identifies the author of a transcript turn.
type Speaker string

const (
	SpeakerAssistant Speaker = "assistant"
	SpeakerUser      Speaker = "user"
)

// Turn is a single transcript entry.
type Turn struct {
	Speaker Speaker `json:"role"`
	Text    string  `json:"content"`
}

// Transcript is the append-only conversation log.
type Transcript []Turn

// Context renders the transcript as "role: content" lines, the form passed to the oracle.
func (t Transcript) Context() string {
	lines := make([]string, 0, len(t))
	for _, turn := range t {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Speaker, turn.Text))
	}
	return strings.Join(lines, "\n")
}

// Answer is an accepted response to a technical question.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnswerLog is the ordered list of accepted technical answers.
type AnswerLog []Answer

// Format concatenates the log into a single "Qn/An" block string.
func (l AnswerLog) Format() string {
	blocks := make([]string, 0, len(l))
	for i, a := range l {
		blocks = append(blocks, fmt.Sprintf("Q%d: %s\nA%d: %s", i+1, a.Question, i+1, a.Answer))
	}
	return strings.Join(blocks, "\n\n")
}
