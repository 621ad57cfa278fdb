package llm

// Config selects the active model backend. Loaded from config/models.yaml
// by the entrypoints; the environment still supplies credentials.
type Config struct {
	ActiveEngine string            `yaml:"active_engine"`
	Models       map[string]string `yaml:"models"` // engine -> model name override
}

// ModelFor returns the configured model name for an engine, or empty to let
// the provider pick its default.
func (c Config) ModelFor(engine string) string {
	if c.Models == nil {
		return ""
	}
	return c.Models[engine]
}
