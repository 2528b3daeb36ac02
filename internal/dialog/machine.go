package dialog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mkuznetsova/dobrobot/internal/domain"
	"github.com/mkuznetsova/dobrobot/internal/generation"
	"github.com/mkuznetsova/dobrobot/internal/session"
)

// Input is a single user event delivered by the messaging gateway: free
// text, a keyboard token, or an uploaded photo.
type Input struct {
	Text  string
	Photo []byte
}

// Outbound is one message to send back to the user.
type Outbound struct {
	Text     string
	Keyboard [][]string
	Photo    []byte
}

// Result carries everything a dialog step produced. The session passed to
// Handle is mutated in place; the caller persists it afterwards.
type Result struct {
	Messages []Outbound
}

func reply(text string, keyboard [][]string) *Result {
	return &Result{Messages: []Outbound{{Text: text, Keyboard: keyboard}}}
}

// Generator is the generation orchestrator as seen by the dialog.
type Generator interface {
	GeneratePost(ctx context.Context, pc generation.PromptContext) (string, error)
	GeneratePlan(ctx context.Context, pc generation.PlanPromptContext) (string, error)
	EditText(ctx context.Context, ec generation.EditPromptContext) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	RenderCard(ctx context.Context, req generation.CardRequest) ([]byte, error)
}

// Organizations is the profile service as seen by the dialog.
type Organizations interface {
	// Get returns (nil, nil) when the user has no active profile.
	Get(ctx context.Context, userID int64) (*domain.Organization, error)
	CreateOrUpdate(ctx context.Context, org *domain.Organization) (*domain.Organization, error)
	Delete(ctx context.Context, userID int64) (bool, error)
	Exists(ctx context.Context, userID int64) (bool, error)
}

// Plans is the content-plan service as seen by the dialog.
type Plans interface {
	SaveGeneratedPlan(ctx context.Context, userID int64, pc generation.PlanPromptContext, generated string) (*domain.ContentPlan, error)
	ListForUser(ctx context.Context, userID int64, activeOnly bool) ([]*domain.ContentPlan, error)
}

// Handler advances one dialog step. It mutates the session and returns the
// outbound messages.
type Handler func(ctx context.Context, s *session.Session, in Input) (*Result, error)

// predicate decides whether a transition accepts the input in the current
// session. Branching may depend on accumulated answers, not just the state.
type predicate func(s *session.Session, in Input) bool

// transition pairs an input predicate with its handler.
type transition struct {
	match  predicate
	handle Handler
}

// stateSpec lists a state's transitions plus the re-prompt issued when no
// transition matches. Invalid input never advances the dialog.
type stateSpec struct {
	transitions []transition
	fallback    Handler
}

// Machine is the dialog state machine. All collaborators are injected;
// handlers never reach for ambient globals.
type Machine struct {
	gen    Generator
	orgs   Organizations
	plans  Plans
	logger *slog.Logger
	table  map[session.State]stateSpec
}

// NewMachine builds the transition table over the injected collaborators.
func NewMachine(gen Generator, orgs Organizations, plans Plans, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Machine{gen: gen, orgs: orgs, plans: plans, logger: logger}
	m.table = map[session.State]stateSpec{}
	m.registerMenu()
	m.registerQuestionnaire()
	m.registerWizard()
	m.registerProfile()
	m.registerPlan()
	return m
}

// Handle routes one input through the cross-cutting commands and then the
// transition table of the current state.
func (m *Machine) Handle(ctx context.Context, s *session.Session, in Input) (*Result, error) {
	text := strings.TrimSpace(in.Text)
	in.Text = text

	// Restart is accepted in every state and overrides any dialog in
	// progress without confirmation.
	if text == StartCommand {
		resetSession(s)
		return reply(welcomeText, singleColumn(MainMenuOptions)), nil
	}

	// Cancel is likewise uniform across states.
	if text == CancelOption || text == CancelCommand {
		resetSession(s)
		return reply("Действие отменено.", singleColumn(MainMenuOptions)), nil
	}

	spec, ok := m.table[s.State]
	if !ok {
		m.logger.Warn("unknown dialog state, resetting", "state", string(s.State), "user_id", s.UserID)
		resetSession(s)
		spec = m.table[StateIdle]
	}

	for _, tr := range spec.transitions {
		if tr.match(s, in) {
			return tr.handle(ctx, s, in)
		}
	}
	return spec.fallback(ctx, s, in)
}

func (m *Machine) register(state session.State, spec stateSpec) {
	m.table[state] = spec
}

func resetSession(s *session.Session) {
	s.State = StateIdle
	s.Answers = make(map[string]any)
}

const welcomeText = "👋 Здравствуйте! Я помогаю НКО создавать контент для социальных сетей.\n" +
	"Выберите, с чего начнём."

// Common predicates.

func tokenIs(token string) predicate {
	return func(_ *session.Session, in Input) bool {
		return in.Text == token
	}
}

func tokenIn(options []string) predicate {
	return func(_ *session.Session, in Input) bool {
		return contains(options, in.Text)
	}
}

func anyText(_ *session.Session, in Input) bool {
	return in.Text != ""
}

func hasPhoto(_ *session.Session, in Input) bool {
	return len(in.Photo) > 0
}

func hasSelection(key string) predicate {
	return func(s *session.Session, _ Input) bool {
		return len(s.GetStringList(key)) > 0
	}
}

func and(preds ...predicate) predicate {
	return func(s *session.Session, in Input) bool {
		for _, p := range preds {
			if !p(s, in) {
				return false
			}
		}
		return true
	}
}

// reprompt builds a fallback that repeats the given prompt.
func reprompt(text string, keyboard [][]string) Handler {
	return func(_ context.Context, _ *session.Session, _ Input) (*Result, error) {
		return reply(text, keyboard), nil
	}
}
