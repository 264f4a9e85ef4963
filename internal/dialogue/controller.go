package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/logger"
	"github.com/spigell/talentscout/internal/screening"

	"go.uber.org/zap"
)

const (
	MessageGreeting = "Hello! I'm TalentScout Assistant. I'll gather some details from you step by step. " +
		"Type 'exit' anytime to quit. Let's begin: what is your Full Name?"
	MessageGenerating   = "Thanks! Generating some technical questions for you..."
	MessageNoQuestions  = "I couldn't prepare questions for that tech stack. Please list your technologies again, separated by commas (e.g., Python, Django, React)."
	MessageExit         = "Thank you for your time! Your responses have been recorded. Goodbye."
	MessageCompleted    = "That's all the questions I had. Thank you for your responses! Our team will review and reach out to you soon."
	questionMessageForm = "Q%d: %s"
)

// ErrSessionClosed is returned for input received after the session ended.
var ErrSessionClosed = errors.New("session is closed")

var exitCommands = map[string]struct{}{
	"exit": {},
	"quit": {},
	"bye":  {},
}

type intakeStep struct {
	field candidate.Field
	next  Step
	// prompt asks for the next field once this one is accepted.
	prompt string
}

var intake = map[Step]intakeStep{
	StepAskName:     {field: candidate.FieldName, next: StepAskEmail, prompt: "Got it! Please provide your Email Address."},
	StepAskEmail:    {field: candidate.FieldEmail, next: StepAskPhone, prompt: "Thanks! Now share your Phone Number."},
	StepAskPhone:    {field: candidate.FieldPhone, next: StepAskExp, prompt: "Noted. How many Years of Experience do you have?"},
	StepAskExp:      {field: candidate.FieldExperience, next: StepAskPosition, prompt: "Great! What Position(s) are you applying for?"},
	StepAskPosition: {field: candidate.FieldPosition, next: StepAskLocation, prompt: "Got it. Where is your Current Location?"},
	StepAskLocation: {field: candidate.FieldLocation, next: StepAskTech, prompt: "Perfect. Finally, tell me your Tech Stack (comma-separated, e.g., Python, Django, React)."},
	StepAskTech:     {field: candidate.FieldTechStack, next: StepAskQuestion, prompt: MessageGenerating},
}

// Gateway validates and normalizes answers.
type Gateway interface {
	Validate(ctx context.Context, transcript candidate.Transcript, question, answer string, kind screening.Kind) (screening.Verdict, error)
	Normalize(ctx context.Context, field candidate.Field, raw string) (string, error)
}

// QuestionBuilder generates the technical question set.
type QuestionBuilder interface {
	Build(ctx context.Context, techStack, experience string) ([]string, error)
}

// Controller drives sessions through the interview state machine.
type Controller struct {
	gateway Gateway
	builder QuestionBuilder
	logger  *zap.Logger
}

func NewController(gateway Gateway, builder QuestionBuilder, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{gateway: gateway, builder: builder, logger: log}
}

// IsExitCommand reports whether input is one of the exit keywords.
func IsExitCommand(input string) bool {
	_, ok := exitCommands[strings.ToLower(strings.TrimSpace(input))]
	return ok
}

// Start appends the greeting and moves a fresh session to the first question.
// It is a no-op for sessions that already started.
func (c *Controller) Start(s *Session) {
	if s.Step != StepGreeting {
		return
	}
	s.say(candidate.SpeakerAssistant, MessageGreeting)
	c.transition(s, StepAskName)
}

// Handle processes one line of user input to completion.
// On error the turn is rolled back so the same input can be sent again.
func (c *Controller) Handle(ctx context.Context, s *Session, input string) error {
	if s.Done() {
		return ErrSessionClosed
	}
	c.Start(s)

	input = strings.TrimSpace(input)
	checkpoint := len(s.Transcript)
	s.say(candidate.SpeakerUser, input)

	if IsExitCommand(input) {
		c.logger.Info("exit requested", c.sessionFields(s)...)
		c.finish(s, MessageExit)
		return nil
	}

	var err error
	if s.Step == StepAskQuestion {
		err = c.handleAnswer(ctx, s, input)
	} else {
		step, ok := intake[s.Step]
		if !ok {
			panic(fmt.Sprintf("no handler for step %q", s.Step))
		}
		err = c.handleField(ctx, s, step, input)
	}

	if err != nil {
		s.Transcript = s.Transcript[:checkpoint]
		c.logger.Warn("turn failed", append(c.sessionFields(s), zap.Error(err))...)
		return err
	}

	return nil
}

func (c *Controller) handleField(ctx context.Context, s *Session, step intakeStep, input string) error {
	verdict, err := c.gateway.Validate(ctx, s.Transcript, step.field.Label(), input, screening.KindInfo)
	if err != nil {
		return err
	}
	if !verdict.Valid {
		c.reject(s, verdict)
		return nil
	}

	value, err := c.gateway.Normalize(ctx, step.field, input)
	if err != nil {
		return err
	}

	if step.next == StepAskQuestion {
		return c.startInterview(ctx, s, step, value)
	}

	s.Record[step.field] = value
	s.say(candidate.SpeakerAssistant, step.prompt)
	c.transition(s, step.next)
	return nil
}

func (c *Controller) startInterview(ctx context.Context, s *Session, step intakeStep, techStack string) error {
	questions, err := c.builder.Build(ctx, techStack, s.Record.Get(candidate.FieldExperience))
	if err != nil {
		return err
	}

	if len(questions) == 0 {
		c.logger.Warn("empty question set, asking for tech stack again", c.sessionFields(s)...)
		s.say(candidate.SpeakerAssistant, MessageNoQuestions)
		return nil
	}

	s.Record[step.field] = techStack
	s.say(candidate.SpeakerAssistant, step.prompt)
	s.Questions = questions
	s.QuestionIndex = 0
	c.transition(s, StepAskQuestion)
	c.ask(s)
	return nil
}

func (c *Controller) handleAnswer(ctx context.Context, s *Session, input string) error {
	question := s.pendingQuestion()

	verdict, err := c.gateway.Validate(ctx, s.Transcript, question, input, screening.KindInterview)
	if err != nil {
		return err
	}
	if !verdict.Valid {
		c.reject(s, verdict)
		return nil
	}

	s.Answers = append(s.Answers, candidate.Answer{Question: question, Answer: input})
	s.QuestionIndex++

	if s.QuestionIndex < len(s.Questions) {
		c.ask(s)
		return nil
	}

	c.finish(s, MessageCompleted)
	return nil
}

func (c *Controller) ask(s *Session) {
	q := s.pendingQuestion()
	s.LastQuestion = q
	s.say(candidate.SpeakerAssistant, fmt.Sprintf(questionMessageForm, s.QuestionIndex+1, q))
}

func (c *Controller) reject(s *Session, verdict screening.Verdict) {
	c.logger.Debug("answer rejected", c.sessionFields(s)...)
	s.say(candidate.SpeakerAssistant, verdict.Retry)
}

func (c *Controller) finish(s *Session, closing string) {
	from := s.Step
	s.end(closing)
	if from != StepEnd {
		c.logger.Info("session finished",
			append(c.sessionFields(s),
				zap.String("from", string(from)),
				zap.Int("fields", len(s.Record)),
				zap.Int("answers", len(s.Answers)),
			)...,
		)
	}
}

func (c *Controller) transition(s *Session, next Step) {
	c.logger.Debug("state transition",
		zap.String(logger.FieldSession, s.ID),
		zap.String("from", string(s.Step)),
		zap.String("to", string(next)),
	)
	s.Step = next
}

func (c *Controller) sessionFields(s *Session) []zap.Field {
	return []zap.Field{
		zap.String(logger.FieldSession, s.ID),
		zap.String(logger.FieldState, string(s.Step)),
	}
}
