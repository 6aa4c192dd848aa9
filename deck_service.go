package main

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"rapidslides/config"
	"rapidslides/database"
	"rapidslides/deck"
	"rapidslides/i18n"
)

// SlideGenerator produces slide HTML from natural-language requests. The
// production implementation is agent.SlideGenService; tests substitute a stub.
type SlideGenerator interface {
	GenerateDeckHTML(ctx context.Context, request string, style config.VisualStyle) (string, error)
	GenerateEditFragment(ctx context.Context, request string, outline []string, rangeSlides []string) (string, error)
}

// Advisory is a non-fatal validation finding surfaced to the frontend
// alongside a successful mutation.
type Advisory struct {
	Kind       string `json:"kind"`
	SlideIndex int    `json:"slide_index"`
	Detail     string `json:"detail"`
	Message    string `json:"message"`
}

// DeckResult is the uniform response for every deck mutation: the committed
// canonical HTML, the per-slide projection, and any advisories.
type DeckResult struct {
	SessionID  string                 `json:"session_id"`
	Title      string                 `json:"title"`
	HTML       string                 `json:"html"`
	Slides     []deck.SlideProjection `json:"slides"`
	Advisories []Advisory             `json:"advisories"`
}

// DeckService owns the per-session deck models and applies every mutation
// through the validate-then-commit pipeline. It is the only writer of the
// session cache.
type DeckService struct {
	configService ConfigProvider
	generator     SlideGenerator
	store         *database.SessionStore
	logger        func(string)

	builder *deck.Builder
	cache   *deck.SessionCache

	// notify publishes a frontend event. Wired to wails runtime.EventsEmit
	// by the app; nil in tests.
	notify func(event string, payload interface{})
}

// NewDeckService creates a DeckService. store may be nil when persistence is
// disabled (snapshots are then kept in memory only).
func NewDeckService(configService ConfigProvider, generator SlideGenerator, store *database.SessionStore, logger func(string)) *DeckService {
	builder := deck.NewBuilder(nil)
	return &DeckService{
		configService: configService,
		generator:     generator,
		store:         store,
		logger:        logger,
		builder:       builder,
	}
}

// Name returns the service name.
func (s *DeckService) Name() string {
	return "deck"
}

// Initialize sizes the session cache from configuration.
func (s *DeckService) Initialize(ctx context.Context) error {
	cfg, err := s.configService.GetConfig()
	if err != nil {
		return WrapError("deck", "Initialize", err)
	}
	timeout := time.Duration(cfg.LockTimeoutMs) * time.Millisecond
	s.cache = deck.NewSessionCache(s.builder, timeout)
	s.log(fmt.Sprintf("DeckService initialized (lock timeout %s, max slides %d)", timeout, cfg.Deck.MaxSlides))
	return nil
}

// Shutdown releases the service (no-op; snapshots are already persisted).
func (s *DeckService) Shutdown() error {
	return nil
}

// SetNotifier wires the frontend event sink.
func (s *DeckService) SetNotifier(notify func(event string, payload interface{})) {
	s.notify = notify
}

// policy derives the validation policy from the current configuration.
func (s *DeckService) policy() deck.Policy {
	cfg, err := s.configService.GetConfig()
	if err != nil {
		s.log(fmt.Sprintf("[DECK] Config unavailable, using default policy: %v", err))
		return deck.DefaultPolicy()
	}
	return deck.Policy{
		MaxSlides:      cfg.Deck.MaxSlides,
		StrictCharts:   cfg.Deck.StrictCharts,
		AllowEmptyDeck: cfg.Deck.AllowEmptyDeck,
	}
}

func (s *DeckService) editor() *deck.Editor {
	return deck.NewEditor(s.builder, s.policy())
}

// GenerateDeck asks the generative model for a fresh presentation and commits
// it as the session's deck, replacing any previous one.
func (s *DeckService) GenerateDeck(ctx context.Context, sessionID, request string) (*DeckResult, error) {
	cfg, err := s.configService.GetConfig()
	if err != nil {
		return nil, WrapError("deck", "GenerateDeck", err)
	}
	style := activeStyle(cfg)

	html, err := s.generator.GenerateDeckHTML(ctx, request, style)
	if err != nil {
		return nil, WrapError("deck", "GenerateDeck", WrapOperationError("generate deck", err))
	}

	policy := s.policy()
	advisories, err := s.cache.WithSessionLock(ctx, sessionID, func(*deck.SlideDeck) (*deck.SlideDeck, []deck.Violation, error) {
		d, err := s.builder.Parse(html)
		if err != nil {
			return nil, nil, err
		}
		violations := deck.Validate(d, policy)
		if deck.HasFatal(violations, policy) {
			return nil, nil, &deck.ValidationError{Violations: violations}
		}
		return d, deck.Advisories(violations, policy), nil
	})
	if err != nil {
		return nil, WrapError("deck", "GenerateDeck", err)
	}
	return s.committed(sessionID, advisories)
}

// headingRe finds the first heading inside a slide, used to build the edit
// prompt's deck outline.
var headingRe = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)

var tagRe = regexp.MustCompile(`<[^>]*>`)

func slideOutline(d *deck.SlideDeck) []string {
	outline := make([]string, len(d.Slides))
	for i, slide := range d.Slides {
		if m := headingRe.FindStringSubmatch(slide.HTML); m != nil {
			outline[i] = strings.TrimSpace(tagRe.ReplaceAllString(m[1], ""))
		}
		if outline[i] == "" {
			outline[i] = "(untitled slide)"
		}
	}
	return outline
}

// EditSlides rewrites the slides in [start, end] from a natural-language
// request. The model's replacement fragment may contain a different number
// of slides than the range held; the committed deck reflects that.
func (s *DeckService) EditSlides(ctx context.Context, sessionID, request string, start, end int) (*DeckResult, error) {
	editor := s.editor()
	advisories, err := s.cache.WithSessionLock(ctx, sessionID, func(current *deck.SlideDeck) (*deck.SlideDeck, []deck.Violation, error) {
		if current == nil {
			return nil, nil, fmt.Errorf("%s", i18n.T("deck.session_not_found"))
		}
		if start < 0 || end >= len(current.Slides) || start > end {
			return nil, nil, &deck.InvalidRangeError{Start: start, End: end, Len: len(current.Slides)}
		}

		rangeSlides := make([]string, 0, end-start+1)
		for _, slide := range current.Slides[start : end+1] {
			rangeSlides = append(rangeSlides, slide.HTML)
		}
		fragment, err := s.generator.GenerateEditFragment(ctx, request, slideOutline(current), rangeSlides)
		if err != nil {
			return nil, nil, WrapOperationError("generate replacement slides", err)
		}

		return editor.ReplaceRange(current, start, end, fragment)
	})
	if err != nil {
		return nil, WrapError("deck", "EditSlides", err)
	}
	return s.committed(sessionID, advisories)
}

// InsertSlide inserts one slide's markup at index.
func (s *DeckService) InsertSlide(ctx context.Context, sessionID string, index int, slideHTML string) (*DeckResult, error) {
	return s.mutate(ctx, sessionID, "InsertSlide", func(editor *deck.Editor, current *deck.SlideDeck) (*deck.SlideDeck, []deck.Violation, error) {
		return editor.Insert(current, index, slideHTML)
	})
}

// RemoveSlide removes the slide at index.
func (s *DeckService) RemoveSlide(ctx context.Context, sessionID string, index int) (*DeckResult, error) {
	return s.mutate(ctx, sessionID, "RemoveSlide", func(editor *deck.Editor, current *deck.SlideDeck) (*deck.SlideDeck, []deck.Violation, error) {
		return editor.Remove(current, index)
	})
}

// DuplicateSlide clones the slide at index and places the copy right after it.
func (s *DeckService) DuplicateSlide(ctx context.Context, sessionID string, index int) (*DeckResult, error) {
	return s.mutate(ctx, sessionID, "DuplicateSlide", func(editor *deck.Editor, current *deck.SlideDeck) (*deck.SlideDeck, []deck.Violation, error) {
		return editor.Duplicate(current, index)
	})
}

// MoveSlide moves the slide at from to position to.
func (s *DeckService) MoveSlide(ctx context.Context, sessionID string, from, to int) (*DeckResult, error) {
	return s.mutate(ctx, sessionID, "MoveSlide", func(editor *deck.Editor, current *deck.SlideDeck) (*deck.SlideDeck, []deck.Violation, error) {
		return editor.Move(current, from, to)
	})
}

func (s *DeckService) mutate(ctx context.Context, sessionID, operation string, apply func(*deck.Editor, *deck.SlideDeck) (*deck.SlideDeck, []deck.Violation, error)) (*DeckResult, error) {
	editor := s.editor()
	advisories, err := s.cache.WithSessionLock(ctx, sessionID, func(current *deck.SlideDeck) (*deck.SlideDeck, []deck.Violation, error) {
		if current == nil {
			return nil, nil, fmt.Errorf("%s", i18n.T("deck.session_not_found"))
		}
		return apply(editor, current)
	})
	if err != nil {
		return nil, WrapError("deck", operation, err)
	}
	return s.committed(sessionID, advisories)
}

// committed builds the result from the committed snapshot, persists it, and
// notifies the frontend.
func (s *DeckService) committed(sessionID string, advisories []deck.Violation) (*DeckResult, error) {
	d, html, ok := s.cache.Snapshot(sessionID)
	if !ok {
		return nil, WrapError("deck", "Snapshot", fmt.Errorf("%s", i18n.T("deck.session_not_found")))
	}

	result := &DeckResult{
		SessionID:  sessionID,
		Title:      d.Title,
		HTML:       html,
		Slides:     deck.ToProject(d),
		Advisories: toAdvisories(advisories),
	}

	if s.store != nil {
		err := s.store.Save(database.SessionSnapshot{
			SessionID:  sessionID,
			Title:      d.Title,
			HTML:       html,
			SlideCount: len(d.Slides),
		})
		if err != nil {
			// Persistence is best-effort; the committed in-memory state stands.
			s.log(fmt.Sprintf("[DECK] Failed to persist session %s: %v", sessionID, err))
		}
	}

	if s.notify != nil {
		s.notify("deck-updated", map[string]interface{}{
			"sessionId":  sessionID,
			"slideCount": len(d.Slides),
		})
	}
	return result, nil
}

// GetDeckProject returns the committed per-slide projection for rendering.
func (s *DeckService) GetDeckProject(sessionID string) (*DeckResult, error) {
	d, html, ok := s.cache.Snapshot(sessionID)
	if !ok {
		return nil, WrapError("deck", "GetDeckProject", fmt.Errorf("%s", i18n.T("deck.session_not_found")))
	}
	return &DeckResult{
		SessionID: sessionID,
		Title:     d.Title,
		HTML:      html,
		Slides:    deck.ToProject(d),
	}, nil
}

// GetDeckHTML returns the committed canonical HTML document.
func (s *DeckService) GetDeckHTML(sessionID string) (string, error) {
	_, html, ok := s.cache.Snapshot(sessionID)
	if !ok {
		return "", WrapError("deck", "GetDeckHTML", fmt.Errorf("%s", i18n.T("deck.session_not_found")))
	}
	return html, nil
}

// ResumeSession rebuilds a session's model from its persisted snapshot.
func (s *DeckService) ResumeSession(ctx context.Context, sessionID string) (*DeckResult, error) {
	if s.store == nil {
		return nil, WrapError("deck", "ResumeSession", errors.New("persistence is disabled"))
	}
	snap, err := s.store.Load(sessionID)
	if err != nil {
		return nil, WrapError("deck", "ResumeSession", err)
	}
	if snap == nil {
		return nil, WrapError("deck", "ResumeSession", fmt.Errorf("%s", i18n.T("deck.session_not_found")))
	}
	if _, err := s.cache.Load(ctx, sessionID, snap.HTML); err != nil {
		return nil, WrapError("deck", "ResumeSession", err)
	}
	return s.GetDeckProject(sessionID)
}

// ListSessions returns all persisted sessions, newest first.
func (s *DeckService) ListSessions() ([]database.SessionSnapshot, error) {
	if s.store == nil {
		return nil, nil
	}
	list, err := s.store.List()
	if err != nil {
		return nil, WrapError("deck", "ListSessions", err)
	}
	return list, nil
}

// CloseSession discards a session's in-memory state. The persisted snapshot
// is kept so the session can be resumed.
func (s *DeckService) CloseSession(sessionID string) {
	s.cache.Drop(sessionID)
}

// DeleteSession discards both the in-memory state and the persisted snapshot.
func (s *DeckService) DeleteSession(sessionID string) error {
	s.cache.Drop(sessionID)
	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(sessionID); err != nil {
		return WrapError("deck", "DeleteSession", err)
	}
	return nil
}

func toAdvisories(vs []deck.Violation) []Advisory {
	if len(vs) == 0 {
		return nil
	}
	out := make([]Advisory, len(vs))
	for i, v := range vs {
		out[i] = Advisory{
			Kind:       string(v.Kind),
			SlideIndex: v.SlideIndex,
			Detail:     v.Detail,
			Message:    i18n.T("violation." + string(v.Kind)),
		}
	}
	return out
}

func activeStyle(cfg config.Config) config.VisualStyle {
	for _, style := range cfg.Styles {
		if style.ID == cfg.ActiveStyle && style.Enabled {
			return style
		}
	}
	for _, style := range cfg.Styles {
		if style.Enabled {
			return style
		}
	}
	return config.VisualStyle{}
}

func (s *DeckService) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}
