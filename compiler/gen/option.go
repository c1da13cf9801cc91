package gen

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
)

// Naming selects how entity types are named as tables.
type Naming uint8

// Table naming strategies.
const (
	// NamingEntity uses the entity type name as is.
	NamingEntity Naming = iota
	// NamingSnakePlural uses the snake-cased plural of the type name,
	// e.g. "UserGroup" becomes "user_groups".
	NamingSnakePlural
)

// DefaultAnonymousKeyPrefix is the prefix reserved for the generated names of
// anonymous candidate keys.
const DefaultAnonymousKeyPrefix = "__anon_"

// Config holds the translator configuration.
type Config struct {
	// Logger receives debug records about the translation.
	Logger *slog.Logger
	// Naming is the table naming strategy.
	Naming Naming
	// Separator joins the name segments of nested fields.
	Separator string
	// CaseInsensitive makes table and field names collide regardless of
	// their case.
	CaseInsensitive bool
	// AnonymousKeyPrefix is reserved for anonymous candidate keys; explicit
	// key names must not start with it.
	AnonymousKeyPrefix string
}

// Option configures the translator.
type Option func(*Config) error

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithTableNaming sets the table naming strategy.
func WithTableNaming(n Naming) Option {
	return func(c *Config) error {
		switch n {
		case NamingEntity, NamingSnakePlural:
			c.Naming = n
			return nil
		default:
			return NewConfigError("Naming", n, "unsupported naming strategy")
		}
	}
}

// WithPathSeparator sets the separator joining nested field names.
func WithPathSeparator(sep string) Option {
	return func(c *Config) error {
		if sep == "" {
			return NewConfigError("Separator", nil, "separator cannot be empty")
		}
		c.Separator = sep
		return nil
	}
}

// WithCaseInsensitiveNames makes name collisions case-insensitive.
func WithCaseInsensitiveNames() Option {
	return func(c *Config) error {
		c.CaseInsensitive = true
		return nil
	}
}

// WithAnonymousKeyPrefix sets the prefix reserved for anonymous keys.
func WithAnonymousKeyPrefix(prefix string) Option {
	return func(c *Config) error {
		if prefix == "" {
			return NewConfigError("AnonymousKeyPrefix", nil, "prefix cannot be empty")
		}
		c.AnonymousKeyPrefix = prefix
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Logger:             slog.Default(),
		Separator:          ".",
		AnonymousKeyPrefix: DefaultAnonymousKeyPrefix,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// TableName returns the table name of an entity type under the naming
// strategy.
func (c *Config) TableName(typeName string) string {
	if c.Naming == NamingSnakePlural {
		return inflect.Pluralize(inflect.Underscore(typeName))
	}
	return typeName
}

// nameKey returns the key under which a name is checked for collisions.
func (c *Config) nameKey(name string) string {
	if c.CaseInsensitive {
		return cases.Fold().String(name)
	}
	return name
}

// joinName joins name segments with the separator.
func (c *Config) joinName(segments []string) string {
	return strings.Join(segments, c.Separator)
}
