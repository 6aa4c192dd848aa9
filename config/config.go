package config

// QuerySpace represents the data-query space a deployment points its
// natural-language query service at.
type QuerySpace struct {
	Engine string `json:"engine"` // "sqlite", "mysql", "snowflake"
	DSN    string `json:"dsn"`    // connection string (file path for sqlite)
	Tested bool   `json:"tested"` // whether the connection has been tested successfully
}

// VisualStyle represents a selectable presentation style
type VisualStyle struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Display name (e.g., "Executive Dark")
	Description string `json:"description"` // Short description shown in the picker
	CSS         string `json:"css"`         // Stylesheet injected into generated decks
	Enabled     bool   `json:"enabled"`     // Whether this style is offered
}

// PromptTemplates holds the per-deployment prompt text used by the slide
// generation agent. Empty fields fall back to the built-in defaults.
type PromptTemplates struct {
	DeckSystemPrompt string `json:"deckSystemPrompt"` // full-deck generation
	EditSystemPrompt string `json:"editSystemPrompt"` // range-edit fragment generation
}

// DeckPolicy mirrors the validation policy applied to every deck commit.
type DeckPolicy struct {
	MaxSlides      int  `json:"maxSlides"`      // maximum slides per deck
	StrictCharts   bool `json:"strictCharts"`   // treat chart wiring mismatches as fatal
	AllowEmptyDeck bool `json:"allowEmptyDeck"` // permit decks with zero slides
}

// Config structure
type Config struct {
	LLMProvider   string          `json:"llmProvider"`
	APIKey        string          `json:"apiKey"`
	BaseURL       string          `json:"baseUrl"`
	ModelName     string          `json:"modelName"`
	MaxTokens     int             `json:"maxTokens"`
	Language      string          `json:"language"`
	DataCacheDir  string          `json:"dataCacheDir"`
	DetailedLog   bool            `json:"detailedLog"`
	QuerySpace    QuerySpace      `json:"querySpace"`
	Prompts       PromptTemplates `json:"prompts"`
	Styles        []VisualStyle   `json:"styles"`
	ActiveStyle   string          `json:"activeStyle,omitempty"` // ID of the selected visual style
	Deck          DeckPolicy      `json:"deck"`
	LockTimeoutMs int             `json:"lockTimeoutMs"` // per-session mutation lock acquire bound
}
