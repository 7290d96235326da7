package aggregate

import (
	"strings"
)

// descriptionSections is a test description split on its section markers.
type descriptionSections struct {
	preamble     string
	steps        string
	expected     string
	precondition string
	testData     string
}

// sectionMarkers maps the lower-cased line prefixes that open a section to
// the section they open. Longer markers are listed first so "expected
// output:" wins over "expected:".
var sectionMarkers = []struct {
	prefix string
	field  string
}{
	{"expected results:", "expected"},
	{"expected result:", "expected"},
	{"expected output:", "expected"},
	{"expected:", "expected"},
	{"preconditions:", "precondition"},
	{"precondition:", "precondition"},
	{"test steps:", "steps"},
	{"steps:", "steps"},
	{"test data:", "testData"},
}

// parseDescription splits a free-text description into sections. Lines
// before the first marker form the preamble. Text on the marker line after
// the colon belongs to the section.
func parseDescription(desc string) descriptionSections {
	buf := map[string][]string{}
	current := "preamble"

	for _, raw := range strings.Split(strings.ReplaceAll(desc, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)

		matched := false
		for _, m := range sectionMarkers {
			if strings.HasPrefix(lower, m.prefix) {
				current = m.field
				line = strings.TrimSpace(line[len(m.prefix):])
				matched = true
				break
			}
		}
		if line == "" && !matched && len(buf[current]) == 0 {
			continue
		}
		if line == "" && matched {
			continue
		}
		buf[current] = append(buf[current], line)
	}

	join := func(field string) string {
		return strings.TrimSpace(strings.Join(buf[field], "\n"))
	}
	return descriptionSections{
		preamble:     join("preamble"),
		steps:        join("steps"),
		expected:     join("expected"),
		precondition: join("precondition"),
		testData:     join("testData"),
	}
}
