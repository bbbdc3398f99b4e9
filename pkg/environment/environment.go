package environment

import "strings"

// Environment represents application environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config reads the environment name from APP_ENV.
type Config struct {
	Name string `env:"APP_ENV" envDefault:"development"`
}

// Environment parses the configured name.
func (c Config) Environment() Environment {
	return Parse(c.Name)
}

// Parse normalises common spellings ("prod", "stage", "dev").
// Unknown values are treated as development.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsStaging() bool     { return e == Staging }
func (e Environment) IsProduction() bool  { return e == Production }
