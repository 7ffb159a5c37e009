// Package strategies holds the built-in strategies and the name registry
// the CLI resolves configured strategies through.
package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/daywalker/sim"
)

var registry = make(map[string]func(params map[string]any) (sim.Strategy, error))

// Register adds a constructor under a name. Later registrations replace
// earlier ones.
func Register(name string, build func(params map[string]any) (sim.Strategy, error)) {
	registry[strings.ToLower(name)] = build
}

// ByName builds a registered strategy from its config parameters.
func ByName(name string, params map[string]any) (sim.Strategy, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return build(params)
}

// Names lists the registered strategy names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing strategy param %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("strategy param %q must be a string", key)
	}
	return s, nil
}

func floatParam(params map[string]any, key string) (float64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing strategy param %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("strategy param %q must be a number", key)
	}
}
