package api

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Params holds path parameter values keyed by placeholder name
type Params map[string]any

var (
	placeholder = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

	ErrMissingParam = errors.New("missing path parameter")
	ErrExtraParam   = errors.New("unexpected path parameter")
)

// BuildURL substitutes every :name placeholder in template with the string
// form of params[name]. A missing or unused parameter is an error and no
// partially built path is returned.
func BuildURL(template string, params Params) (string, error) {
	used := make(map[string]bool, len(params))
	var missing []string

	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1:]
		v, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		used[name] = true
		return url.PathEscape(fmt.Sprint(v))
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w %s for %s", ErrMissingParam, strings.Join(missing, ", "), template)
	}

	var extra []string
	for name := range params {
		if !used[name] {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return "", fmt.Errorf("%w %s for %s", ErrExtraParam, strings.Join(extra, ", "), template)
	}
	return out, nil
}

// PathParams lists the placeholder names of template in order
func PathParams(template string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}

// MuxPath rewrites :name placeholders into the {name} form gorilla/mux expects
func MuxPath(template string) string {
	return placeholder.ReplaceAllString(template, "{$1}")
}
