package config

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/manifold/internal/assets"
	"github.com/fulmenhq/manifold/pkg/schema"
)

// Validate checks a decoded configuration against the embedded config schema.
func Validate(c *Config) error {
	if c == nil {
		return fmt.Errorf("configuration is nil")
	}
	v, err := schema.GetEmbeddedValidator(assets.ConfigSchema)
	if err != nil {
		return fmt.Errorf("failed to load config schema: %w", err)
	}
	res, err := v.Validate(c)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !res.Valid {
		msgs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}
	return nil
}
