package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Redacted returns a copy of c with token secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.API.Auth.Tokens = make([]APIToken, len(c.API.Auth.Tokens))
	for i, t := range c.API.Auth.Tokens {
		out.API.Auth.Tokens[i] = APIToken{Token: mask(t.Token), Scopes: append([]string(nil), t.Scopes...)}
	}
	out.API.CORS.AllowedOrigins = append([]string(nil), c.API.CORS.AllowedOrigins...)
	return &out
}

func mask(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:2] + strings.Repeat("*", len(token)-4) + token[len(token)-2:]
}

// GetPath retrieves a value using a dot-notation path such as
// "navigation.timeout". An empty path returns the whole document.
func (c *Config) GetPath(path string) (any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return getValue(m, path)
}

func getValue(m map[string]any, path string) (any, error) {
	var current any = m
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			continue
		}
		node, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("path %q breaks at %q (not a map)", path, part)
		}
		val, exists := node[part]
		if !exists {
			return nil, fmt.Errorf("path %q: key %q not found", path, part)
		}
		current = val
	}
	return current, nil
}
