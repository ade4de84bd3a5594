package am

import (
	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/prov"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Timeout: 0 falls back to the default, negative is invalid
	if c.Explore.TimeoutSeconds < 0 {
		return errors.Newf("explore.timeout_seconds must be >= 0, got %d", c.Explore.TimeoutSeconds)
	}

	if c.Explore.MaxRadius < 0 {
		return errors.Newf("explore.max_radius must be >= 0, got %d", c.Explore.MaxRadius)
	}

	if c.MCP.RateLimit < 0 || c.MCP.Burst < 0 {
		return errors.Newf("mcp.rate_limit and mcp.burst must be >= 0, got %g and %d", c.MCP.RateLimit, c.MCP.Burst)
	}

	if c.Explore.DefaultStrategy != "" {
		s, err := prov.ParseStrategy(c.Explore.DefaultStrategy)
		if err != nil {
			return errors.Wrap(err, "explore.default_strategy")
		}
		if err := c.CheckRadius(s); err != nil {
			return errors.Wrap(err, "explore.default_strategy")
		}
	}

	return nil
}

// CheckRadius rejects strategies whose radius exceeds explore.max_radius
func (c *Config) CheckRadius(s prov.Strategy) error {
	if s.Radius > c.Explore.MaxRadius {
		return errors.WithHintf(
			errors.Invalidf("radius %d exceeds explore.max_radius %d", s.Radius, c.Explore.MaxRadius),
			"raise explore.max_radius in %s or PROVGRAPH_EXPLORE_MAX_RADIUS", ConfigFileName)
	}
	return nil
}
