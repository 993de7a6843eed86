// Package prompts provides a loader for externalized LLM prompt templates.
// Templates live in embedded JSON files, one object of key to template per file.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Prompt files.
const (
	FileResume       = "resume.json"
	FileRequirements = "requirements.json"
	FileMatching     = "matching.json"
	FileEditing      = "editing.json"
)

// placeholderPattern matches {{.Key}} slots.
var placeholderPattern = regexp.MustCompile(`{{\.([A-Za-z]+)}}`)

// library holds every template, keyed by file then key.
type library map[string]map[string]string

// load parses all embedded files once.
var load = sync.OnceValues(func() (library, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}
	lib := make(library, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read prompt file %s: %w", name, err)
		}
		var templates map[string]string
		if err := json.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("parse prompt file %s: %w", name, err)
		}
		lib[name] = templates
	}
	return lib, nil
})

func file(name string) (map[string]string, error) {
	lib, err := load()
	if err != nil {
		return nil, err
	}
	templates, ok := lib[name]
	if !ok {
		return nil, fmt.Errorf("unknown prompt file %s", name)
	}
	return templates, nil
}

// Get returns the template stored under key in the named file.
func Get(filename, key string) (string, error) {
	templates, err := file(filename)
	if err != nil {
		return "", err
	}
	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// MustGet is Get for templates the binary cannot run without.
func MustGet(filename, key string) string {
	template, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("prompts: %v", err))
	}
	return template
}

// Keys lists the template keys of a file in sorted order.
func Keys(filename string) ([]string, error) {
	templates, err := file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// Format substitutes each {{.Key}} with data[Key]. Unknown slots are left as is.
func Format(template string, data map[string]string) string {
	for key, value := range data {
		template = strings.ReplaceAll(template, "{{."+key+"}}", value)
	}
	return template
}

// Render fills a stored template and fails when any of its slots has no value.
// Slots are read from the template, so values may themselves contain braces.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if _, ok := data[m[1]]; !ok {
			return "", fmt.Errorf("prompt %s/%s: missing value for %s", filename, key, m[0])
		}
	}
	return Format(template, data), nil
}
