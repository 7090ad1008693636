// Package prompts holds the embedded prompt templates sent to the model.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed *.json
var files embed.FS

// Template is prompt text with {{.Key}} placeholders.
type Template string

// Load reads the template stored under key in an embedded prompt file.
func Load(filename, key string) (Template, error) {
	data, err := files.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var catalog map[string]string
	if err := json.Unmarshal(data, &catalog); err != nil {
		return "", fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	text, ok := catalog[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return Template(text), nil
}

// MustLoad is Load for templates a package needs at initialization.
func MustLoad(filename, key string) Template {
	t, err := Load(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return t
}

// Render replaces each {{.Key}} with data[Key] in a single pass, so
// placeholder text inside a value is left as-is and the output does not
// depend on map order. Unknown placeholders remain.
func (t Template) Render(data map[string]string) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(pairs...).Replace(string(t))
}
