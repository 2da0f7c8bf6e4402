package template

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"strokesegapi/pkg/logger"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Generator renders sbatch scripts from a file template with {name}
// placeholders. The template is loaded once at construction and its
// placeholder set is precompiled; rendering only checks membership and
// substitutes.
type Generator struct {
	content      string
	placeholders []string
}

// NewGenerator loads the template at path. A missing or unreadable file is
// a startup error.
func NewGenerator(path string) (*Generator, error) {
	if path == "" {
		return nil, fmt.Errorf("template path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("template file not found: %s: %w", path, err)
	}

	content := string(data)
	seen := map[string]bool{}
	var placeholders []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			placeholders = append(placeholders, name)
		}
	}

	logger.Debugf("Template loaded successfully from: %s (%d placeholders)", path, len(placeholders))
	return &Generator{content: content, placeholders: placeholders}, nil
}

// Placeholders returns the distinct placeholder names found in the template.
func (g *Generator) Placeholders() []string {
	out := make([]string, len(g.placeholders))
	copy(out, g.placeholders)
	return out
}

// Render substitutes the provided variables into the template. Every
// placeholder must be covered; rendering is deterministic for equal inputs.
func (g *Generator) Render(vars map[string]string) (string, error) {
	var missing []string
	for _, name := range g.placeholders {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("missing template variables: [%s]", strings.Join(missing, " "))
	}

	rendered := placeholderPattern.ReplaceAllStringFunc(g.content, func(match string) string {
		name := match[1 : len(match)-1]
		return vars[name]
	})
	return rendered, nil
}
