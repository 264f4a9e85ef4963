package dialogue

import (
	"fmt"

	"github.com/spigell/talentscout/internal/candidate"

	"github.com/google/uuid"
)

// Step is a named state of the interview state machine.
type Step string

const (
	StepGreeting    Step = "greeting"
	StepAskName     Step = "ask_name"
	StepAskEmail    Step = "ask_email"
	StepAskPhone    Step = "ask_phone"
	StepAskExp      Step = "ask_exp"
	StepAskPosition Step = "ask_position"
	StepAskLocation Step = "ask_location"
	StepAskTech     Step = "ask_tech"
	StepAskQuestion Step = "ask_question"
	StepEnd         Step = "end"
)

// Order is the fixed sequence of states a session moves through.
var Order = []Step{
	StepGreeting,
	StepAskName,
	StepAskEmail,
	StepAskPhone,
	StepAskExp,
	StepAskPosition,
	StepAskLocation,
	StepAskTech,
	StepAskQuestion,
	StepEnd,
}

// Session is the state of one candidate's conversation.
type Session struct {
	ID         string
	Step       Step
	Record     candidate.Record
	Transcript candidate.Transcript
	Questions  []string
	Answers    candidate.AnswerLog
	// QuestionIndex is the position of the pending question; it equals the number of accepted answers.
	QuestionIndex int
	LastQuestion  string

	closed bool
}

func NewSession() *Session {
	return &Session{
		ID:     uuid.NewString(),
		Step:   StepGreeting,
		Record: candidate.Record{},
	}
}

// Done reports whether the session reached the terminal state.
func (s *Session) Done() bool {
	return s.Step == StepEnd
}

// Snapshot returns a deep copy safe to hand to renderers and exporters.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}

	return &Session{
		ID:            s.ID,
		Step:          s.Step,
		Record:        s.Record.Clone(),
		Transcript:    append(candidate.Transcript(nil), s.Transcript...),
		Questions:     append([]string(nil), s.Questions...),
		Answers:       append(candidate.AnswerLog(nil), s.Answers...),
		QuestionIndex: s.QuestionIndex,
		LastQuestion:  s.LastQuestion,
		closed:        s.closed,
	}
}

func (s *Session) say(speaker candidate.Speaker, text string) {
	s.Transcript = append(s.Transcript, candidate.Turn{Speaker: speaker, Text: text})
}

// end moves the session to the terminal state. The closing message is appended only once.
func (s *Session) end(closing string) {
	if !s.closed {
		s.say(candidate.SpeakerAssistant, closing)
		s.closed = true
	}
	s.Step = StepEnd
}

func (s *Session) pendingQuestion() string {
	if s.QuestionIndex < 0 || s.QuestionIndex >= len(s.Questions) {
		panic(fmt.Sprintf("question index %d out of range [0, %d)", s.QuestionIndex, len(s.Questions)))
	}
	return s.Questions[s.QuestionIndex]
}
