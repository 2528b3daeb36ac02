package generation

import (
	"context"
	"fmt"
	"log/slog"
)

// Default card dimensions (open-graph post size).
const (
	DefaultCardWidth  = 1200
	DefaultCardHeight = 630
)

// Completion task names understood by the collaborator's per-task config.
const (
	taskPost = "post"
	taskPlan = "plan"
	taskEdit = "edit"
)

// Completer is the text-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, task, systemPrompt, userPrompt string) (string, error)
}

// ImageSynthesizer is the image-generation collaborator.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, prompt string, width, height int) ([]byte, error)
}

// CardRenderer turns a template plus data into a PNG card.
type CardRenderer interface {
	Render(ctx context.Context, templateID string, data map[string]string, width, height int) ([]byte, error)
}

// CardRequest bundles everything needed to render a branded card.
type CardRequest struct {
	TemplateID string
	Title      string
	Text       string
	NGOName    string
	EventDate  string
	EventPlace string
	Image      []byte
	Width      int
	Height     int
}

// Orchestrator glues the dialog's terminal states to the external
// generation collaborators. Each pipeline stage fails independently:
// a render failure never invalidates text already produced.
type Orchestrator struct {
	completer Completer
	images    ImageSynthesizer
	cards     CardRenderer
	logger    *slog.Logger
}

// NewOrchestrator wires the generation collaborators together.
func NewOrchestrator(completer Completer, images ImageSynthesizer, cards CardRenderer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{completer: completer, images: images, cards: cards, logger: logger}
}

// GeneratePost produces social media text from the accumulated answers.
func (o *Orchestrator) GeneratePost(ctx context.Context, pc PromptContext) (string, error) {
	text, err := o.completer.Complete(ctx, taskPost, postSystemPrompt, buildPostPrompt(pc))
	if err != nil {
		o.logger.Error("post generation failed", "error", err)
		return "", fmt.Errorf("generating post: %w", err)
	}
	return text, nil
}

// GeneratePlan produces a free-form content plan from the plan answers.
func (o *Orchestrator) GeneratePlan(ctx context.Context, pc PlanPromptContext) (string, error) {
	text, err := o.completer.Complete(ctx, taskPlan, planSystemPrompt, buildPlanPrompt(pc))
	if err != nil {
		o.logger.Error("plan generation failed", "error", err)
		return "", fmt.Errorf("generating plan: %w", err)
	}
	return text, nil
}

// EditText rewrites a generated text according to user instructions.
func (o *Orchestrator) EditText(ctx context.Context, ec EditPromptContext) (string, error) {
	text, err := o.completer.Complete(ctx, taskEdit, editSystemPrompt, buildEditPrompt(ec))
	if err != nil {
		o.logger.Error("text editing failed", "error", err)
		return "", fmt.Errorf("editing text: %w", err)
	}
	return text, nil
}

// GenerateImage synthesizes an illustration for the given prompt.
func (o *Orchestrator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	img, err := o.images.Synthesize(ctx, prompt, DefaultCardWidth, DefaultCardHeight)
	if err != nil {
		o.logger.Error("image synthesis failed", "error", err)
		return nil, fmt.Errorf("synthesizing image: %w", err)
	}
	return img, nil
}

// RenderCard renders the final branded card.
func (o *Orchestrator) RenderCard(ctx context.Context, req CardRequest) ([]byte, error) {
	if req.TemplateID == "" {
		req.TemplateID = "telegram"
	}
	if req.Width == 0 {
		req.Width = DefaultCardWidth
	}
	if req.Height == 0 {
		req.Height = DefaultCardHeight
	}

	data := map[string]string{
		"title":       req.Title,
		"text":        req.Text,
		"ngo_name":    req.NGOName,
		"event_date":  req.EventDate,
		"event_place": req.EventPlace,
	}
	if len(req.Image) > 0 {
		data["image"] = encodeImage(req.Image)
	}

	png, err := o.cards.Render(ctx, req.TemplateID, data, req.Width, req.Height)
	if err != nil {
		o.logger.Error("card rendering failed", "error", err)
		return nil, fmt.Errorf("rendering card: %w", err)
	}
	return png, nil
}
