package dataset

import (
	"fmt"
	"strings"
)

// Issue is a single structural problem found while building a Store.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError aggregates every issue found in a document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("dataset: %s: %s", e.Issues[0].Path, e.Issues[0].Message)
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Path+": "+is.Message)
	}
	return fmt.Sprintf("dataset: %d issues: %s", len(e.Issues), strings.Join(parts, "; "))
}

type validator struct {
	issues []Issue
}

func (v *validator) add(path, msg string) {
	v.issues = append(v.issues, Issue{Path: path, Message: msg})
}

func (v *validator) err() error {
	if len(v.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: v.issues}
}

func (v *validator) period(path string, labels []string, sources map[Source][]Value) period {
	p := period{labels: cloneStrings(labels), values: make(map[Source][]Value, len(sources))}
	if len(labels) == 0 {
		v.add(path, "labels required")
	}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			v.add(path, "duplicate label "+l)
		}
		seen[l] = struct{}{}
	}
	for src, vals := range sources {
		spath := path + "." + string(src)
		if !src.Valid() {
			v.add(spath, "unknown source")
			continue
		}
		if len(vals) > len(labels) {
			v.add(spath, fmt.Sprintf("%d values for %d labels", len(vals), len(labels)))
			continue
		}
		cells := make([]Value, len(labels))
		copy(cells, vals)
		for i, c := range vals {
			if c.Valid && c.N < 0 {
				v.add(fmt.Sprintf("%s[%d]", spath, i), "negative value")
			}
		}
		p.values[src] = cells
	}
	return p
}

func (v *validator) yearLabels(path string, labels []string) {
	prev := ""
	for _, l := range labels {
		if !isYear(l) {
			v.add(path, "label "+l+" is not a year")
			return
		}
		if prev != "" && l <= prev {
			v.add(path, "year labels must ascend")
			return
		}
		prev = l
	}
}

func (v *validator) monthLabels(path string, labels []string) {
	last := -1
	for _, l := range labels {
		idx := monthIndex(l)
		if idx < 0 {
			v.add(path, "label "+l+" is not a month")
			return
		}
		if idx <= last {
			v.add(path, "month labels out of order")
			return
		}
		last = idx
	}
}

func monthIndex(label string) int {
	for i, m := range Months {
		if m == label {
			return i
		}
	}
	return -1
}
