package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"rapidslides/agent"
	"rapidslides/config"
	"rapidslides/database"
	"rapidslides/i18n"
	"rapidslides/logger"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// generatorProxy wraps the current SlideGenService behind the SlideGenerator
// interface so the generator can be rebuilt when the model configuration
// changes without re-wiring DeckService.
type generatorProxy struct {
	mu  sync.RWMutex
	gen SlideGenerator
}

func (p *generatorProxy) set(gen SlideGenerator) {
	p.mu.Lock()
	p.gen = gen
	p.mu.Unlock()
}

func (p *generatorProxy) current() (SlideGenerator, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.gen == nil {
		return nil, fmt.Errorf("%s", i18n.T("deck.llm_not_initialized"))
	}
	return p.gen, nil
}

func (p *generatorProxy) GenerateDeckHTML(ctx context.Context, request string, style config.VisualStyle) (string, error) {
	gen, err := p.current()
	if err != nil {
		return "", err
	}
	return gen.GenerateDeckHTML(ctx, request, style)
}

func (p *generatorProxy) GenerateEditFragment(ctx context.Context, request string, outline []string, rangeSlides []string) (string, error) {
	gen, err := p.current()
	if err != nil {
		return "", err
	}
	return gen.GenerateEditFragment(ctx, request, outline, rangeSlides)
}

// App struct
type App struct {
	ctx      context.Context
	registry *ServiceRegistry
	logger   *logger.Logger

	configService         *ConfigService
	deckService           *DeckService
	connectionTestService *ConnectionTestService
	generator             *generatorProxy

	db *sql.DB
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{
		logger:    logger.NewLogger(),
		generator: &generatorProxy{},
	}
}

// Log writes a message to the application log.
func (a *App) Log(message string) {
	a.logger.Log(message)
}

// startup is called when the app starts. The context is saved so we can call
// the runtime methods.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	a.registry = NewServiceRegistry(ctx, a.Log)

	a.configService = NewConfigService(a.Log)
	if err := a.registry.RegisterCritical(a.configService); err != nil {
		fmt.Printf("Error registering config service: %v\n", err)
		return
	}

	cfg, err := a.configService.GetConfig()
	if err != nil {
		fmt.Printf("Error loading config on startup: %v\n", err)
		cfg = a.configService.DefaultConfig()
	}

	storageDir, _ := a.configService.GetStorageDir()
	if err := a.logger.Init(storageDir); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
	}

	a.syncLanguage(cfg)
	a.Log(fmt.Sprintf("[STARTUP] i18n initialized with language: %s", i18n.GetLanguage()))

	dataDir := cfg.DataCacheDir
	if dataDir == "" {
		dataDir = storageDir
	}
	_ = os.MkdirAll(dataDir, 0755)

	var store *database.SessionStore
	a.db, err = database.InitDB(dataDir)
	if err != nil {
		// Sessions stay in memory only; everything else keeps working.
		a.Log(fmt.Sprintf("[STARTUP] Session database unavailable: %v", err))
	} else {
		store = database.NewSessionStore(a.db, a.Log)
		a.Log("[STARTUP] Session database ready")
	}

	a.rebuildGenerator(cfg)

	a.deckService = NewDeckService(a.configService, a.generator, store, a.Log)
	a.deckService.SetNotifier(func(event string, payload interface{}) {
		runtime.EventsEmit(a.ctx, event, payload)
	})
	if err := a.registry.RegisterCritical(a.deckService); err != nil {
		a.Log(fmt.Sprintf("[STARTUP] Failed to register deck service: %v", err))
		return
	}

	a.connectionTestService = NewConnectionTestService(a.Log)
	if err := a.registry.Register(a.connectionTestService); err != nil {
		a.Log(fmt.Sprintf("[STARTUP] Failed to register connection test service: %v", err))
	}

	a.configService.OnConfigChanged(func(updated config.Config) {
		a.syncLanguage(updated)
		a.rebuildGenerator(updated)
		runtime.EventsEmit(a.ctx, "config-updated")
	})

	if err := a.registry.InitializeAll(); err != nil {
		a.Log(fmt.Sprintf("[STARTUP] Service initialization failed: %v", err))
		return
	}
	a.Log("[STARTUP] All services initialized")
}

// shutdown is called when the app is closing.
func (a *App) shutdown(ctx context.Context) {
	if a.registry != nil {
		for _, err := range a.registry.ShutdownAll() {
			a.Log(fmt.Sprintf("[SHUTDOWN] %v", err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	a.logger.Close()
}

func (a *App) syncLanguage(cfg config.Config) {
	if cfg.Language == string(i18n.Chinese) {
		i18n.SetLanguage(i18n.Chinese)
	} else {
		i18n.SetLanguage(i18n.English)
	}
}

// rebuildGenerator replaces the slide generator after configuration changes.
func (a *App) rebuildGenerator(cfg config.Config) {
	gen, err := agent.NewSlideGenService(cfg, a.Log)
	if err != nil {
		a.Log(fmt.Sprintf("[STARTUP] Slide generator unavailable: %v", err))
		a.generator.set(nil)
		return
	}
	a.generator.set(gen)
}

// --- Configuration ---

// GetConfig returns the current configuration.
func (a *App) GetConfig() (config.Config, error) {
	return a.configService.GetConfig()
}

// SaveConfig persists the configuration and notifies change listeners.
func (a *App) SaveConfig(cfg config.Config) error {
	return a.configService.SaveConfig(cfg)
}

// --- Deck operations (bound to the frontend) ---

// GenerateDeck creates a presentation from a natural-language request.
func (a *App) GenerateDeck(sessionID, request string) (*DeckResult, error) {
	return a.deckService.GenerateDeck(a.ctx, sessionID, request)
}

// EditSlides rewrites a contiguous slide range from a natural-language request.
func (a *App) EditSlides(sessionID, request string, start, end int) (*DeckResult, error) {
	return a.deckService.EditSlides(a.ctx, sessionID, request, start, end)
}

// InsertSlide inserts slide markup at the given position.
func (a *App) InsertSlide(sessionID string, index int, slideHTML string) (*DeckResult, error) {
	return a.deckService.InsertSlide(a.ctx, sessionID, index, slideHTML)
}

// RemoveSlide deletes the slide at the given position.
func (a *App) RemoveSlide(sessionID string, index int) (*DeckResult, error) {
	return a.deckService.RemoveSlide(a.ctx, sessionID, index)
}

// DuplicateSlide clones the slide at the given position.
func (a *App) DuplicateSlide(sessionID string, index int) (*DeckResult, error) {
	return a.deckService.DuplicateSlide(a.ctx, sessionID, index)
}

// MoveSlide reorders a slide.
func (a *App) MoveSlide(sessionID string, from, to int) (*DeckResult, error) {
	return a.deckService.MoveSlide(a.ctx, sessionID, from, to)
}

// GetDeckProject returns the per-slide projection for the preview pane.
func (a *App) GetDeckProject(sessionID string) (*DeckResult, error) {
	return a.deckService.GetDeckProject(sessionID)
}

// GetDeckHTML returns the canonical HTML document for a session.
func (a *App) GetDeckHTML(sessionID string) (string, error) {
	return a.deckService.GetDeckHTML(sessionID)
}

// ExportDeck saves the presentation HTML to a file chosen by the user.
func (a *App) ExportDeck(sessionID string) (string, error) {
	html, err := a.deckService.GetDeckHTML(sessionID)
	if err != nil {
		return "", err
	}

	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		DefaultFilename: "presentation.html",
		Title:           "Export Presentation",
		Filters: []runtime.FileFilter{
			{DisplayName: "HTML Files (*.html)", Pattern: "*.html"},
		},
	})
	if err != nil {
		return "", WrapError("app", "ExportDeck", err)
	}
	if path == "" {
		return "", nil // user cancelled
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", WrapError("app", "ExportDeck", err)
	}
	a.Log(fmt.Sprintf("[EXPORT] Deck %s exported to %s", sessionID, path))
	return path, nil
}

// --- Session management ---

// ResumeSession restores a persisted presentation into memory.
func (a *App) ResumeSession(sessionID string) (*DeckResult, error) {
	return a.deckService.ResumeSession(a.ctx, sessionID)
}

// ListSessions returns all persisted sessions, newest first.
func (a *App) ListSessions() ([]database.SessionSnapshot, error) {
	return a.deckService.ListSessions()
}

// CloseSession discards a session's in-memory state, keeping the snapshot.
func (a *App) CloseSession(sessionID string) {
	a.deckService.CloseSession(sessionID)
}

// DeleteSession removes a session and its persisted snapshot.
func (a *App) DeleteSession(sessionID string) error {
	return a.deckService.DeleteSession(sessionID)
}

// --- Connection tests ---

// TestLLMConnection checks the configured model endpoint.
func (a *App) TestLLMConnection(cfg config.Config) ConnectionResult {
	return a.connectionTestService.TestLLMConnection(cfg)
}

// TestQuerySpace checks the configured data query space.
func (a *App) TestQuerySpace(qs config.QuerySpace) ConnectionResult {
	return a.connectionTestService.TestQuerySpace(qs)
}

// DescribeQuerySpace previews the tables and columns of the configured data
// query space.
func (a *App) DescribeQuerySpace(qs config.QuerySpace) SchemaResult {
	return a.connectionTestService.DescribeQuerySpace(qs)
}
