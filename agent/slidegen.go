package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"rapidslides/config"
)

const defaultDeckSystemPrompt = `You are a presentation designer. Produce a complete HTML presentation document for the user's request.

Rules:
1. Output one full HTML document: <html>, <head> with a <title> and a single <style> block, and a <body>.
2. Each slide is a top-level <section class="slide"> element in the body. No content outside slide sections except the head and trailing global scripts.
3. For every chart, place a <canvas id="..."> inside the slide and an inline <script> in the same slide that initializes it via document.getElementById with the same id. Chart ids must be unique across the whole document.
4. Keep slides self-contained; do not reference elements of other slides.
5. Output only the HTML document, no commentary.`

const defaultEditSystemPrompt = `You are editing an existing HTML presentation. The user wants to change a contiguous range of slides.

Rules:
1. Output only replacement <section class="slide"> elements for the referenced range, nothing else. You may return more or fewer slides than the range contained.
2. Keep the document's visual style; do not emit <html>, <head> or <body>.
3. For every chart, pair a <canvas id="..."> with an inline <script> in the same slide using the same id.
4. Slides outside the range are shown for context only; never restate them.`

// SlideGenService drives the generative model that produces slide HTML.
type SlideGenService struct {
	ChatModel model.ChatModel
	cfg       config.Config
	logger    func(string)
}

// NewSlideGenService builds the chat model for the configured provider.
func NewSlideGenService(cfg config.Config, logger func(string)) (*SlideGenService, error) {
	var chatModel model.ChatModel
	var err error

	switch cfg.LLMProvider {
	case "Anthropic", "Claude-Compatible":
		chatModel, err = NewAnthropicChatModel(context.Background(), &AnthropicConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.ModelName,
			MaxTokens: cfg.MaxTokens,
		})
	default:
		// "OpenAI", "OpenAI-Compatible" and anything speaking the OpenAI wire format.
		chatModel, err = openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.ModelName,
			Timeout: 0,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %v", err)
	}

	return &SlideGenService{
		ChatModel: chatModel,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// GenerateDeckHTML asks the model for a complete presentation document.
func (s *SlideGenService) GenerateDeckHTML(ctx context.Context, request string, style config.VisualStyle) (string, error) {
	sys := s.cfg.Prompts.DeckSystemPrompt
	if sys == "" {
		sys = defaultDeckSystemPrompt
	}

	var user strings.Builder
	user.WriteString(request)
	if style.CSS != "" {
		fmt.Fprintf(&user, "\n\nUse this visual style (%s) as the base of the document stylesheet:\n%s", style.Name, style.CSS)
	}

	reply, err := s.invoke(ctx, sys, user.String())
	if err != nil {
		return "", err
	}
	s.log(fmt.Sprintf("[SLIDEGEN] Deck reply: %d chars", len(reply)))
	return ExtractHTML(reply), nil
}

// GenerateEditFragment asks the model for replacement slides for a
// contiguous range. outline gives the full deck for context; rangeSlides
// holds the current markup of the slides being replaced.
func (s *SlideGenService) GenerateEditFragment(ctx context.Context, request string, outline []string, rangeSlides []string) (string, error) {
	sys := s.cfg.Prompts.EditSystemPrompt
	if sys == "" {
		sys = defaultEditSystemPrompt
	}

	var user strings.Builder
	user.WriteString("Edit request: ")
	user.WriteString(request)
	user.WriteString("\n\nDeck outline:\n")
	for i, title := range outline {
		fmt.Fprintf(&user, "%d. %s\n", i, title)
	}
	user.WriteString("\nSlides to replace:\n")
	for _, html := range rangeSlides {
		user.WriteString(html)
		user.WriteString("\n")
	}

	reply, err := s.invoke(ctx, sys, user.String())
	if err != nil {
		return "", err
	}
	s.log(fmt.Sprintf("[SLIDEGEN] Edit reply: %d chars", len(reply)))
	return ExtractHTML(reply), nil
}

// invoke runs a single system+user exchange through an eino chain.
func (s *SlideGenService) invoke(ctx context.Context, system, user string) (string, error) {
	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(s.ChatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return "", err
	}

	resp, err := runnable.Invoke(ctx, []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (s *SlideGenService) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}
