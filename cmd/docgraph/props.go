package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseProperties turns k=v arguments into a property map. Values that are
// valid JSON keep their JSON type; anything else is a plain string.
func parseProperties(args []string) (map[string]any, error) {
	props := make(map[string]any, len(args))
	for _, arg := range args {
		k, raw, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid property %q, expected key=value", arg)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		props[k] = v
	}
	return props, nil
}

// autoKey maps "-" to an empty key so the store picks one.
func autoKey(arg string) string {
	if arg == "-" {
		return ""
	}
	return arg
}
