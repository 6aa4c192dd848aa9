package i18n

var englishTranslations = map[string]string{
	// Deck generation
	"deck.llm_not_initialized": "LLM service is not initialized, please check your model settings",
	"deck.generation_failed":   "Presentation generation failed: %s",
	"deck.generation_empty":    "The model returned no usable slide content",
	"deck.parse_failed":        "Generated slides could not be parsed: %s",
	"deck.edit_failed":         "Slide edit failed: %s",
	"deck.edit_busy":           "Another edit for this presentation is still running, please retry",
	"deck.invalid_range":       "The referenced slides do not exist in the current presentation",
	"deck.too_large":           "The presentation exceeds the maximum of %d slides",
	"deck.empty":               "The presentation has no slides",
	"deck.session_not_found":   "No presentation found for this session",
	"deck.resume_failed":       "Failed to restore the presentation: %s",
	"deck.saved":               "Presentation saved",
	"deck.deleted":             "Presentation deleted",

	// Validator
	"violation.duplicate_slide_id":         "Two slides share the same identifier",
	"violation.non_contiguous_index":       "Slide ordering is corrupt",
	"violation.dangling_chart_placeholder": "A chart placeholder has no init script",
	"violation.orphan_chart_script":        "A chart script references no placeholder",
	"violation.deck_too_large":             "Too many slides",
	"violation.empty_deck":                 "No slides left",

	// Configuration
	"config.save_success":  "Settings saved successfully",
	"config.save_failed":   "Failed to save settings: %s",
	"config.load_failed":   "Failed to load settings: %s",
	"config.invalid_style": "Unknown visual style",

	// Connection tests
	"connection.llm_success":        "Model endpoint connection successful",
	"connection.llm_failed":         "Model endpoint connection failed: %s",
	"connection.queryspace_success": "Data query space connection successful",
	"connection.queryspace_tables":  "Data query space connection successful, %d tables visible",
	"connection.queryspace_failed":  "Data query space connection failed: %s",
	"connection.unsupported_engine": "Unsupported query space engine: %s",
}
