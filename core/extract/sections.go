package extract

import "strings"

// HeadingDelimiter separates sections in a response.
const HeadingDelimiter = "##"

// Section is one titled span of a response.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SplitSectionList splits doc on HeadingDelimiter and returns the sections in
// document order. Fragments that are blank after trimming are dropped. The
// first line of a fragment is the title, with one trailing colon removed; the
// remainder is the body (empty when the fragment has no line break).
//
// Titles are unique in the result: when a title repeats, the later body
// replaces the earlier one but keeps the earlier position.
func SplitSectionList(doc string) []Section {
	var sections []Section
	index := make(map[string]int)

	for _, fragment := range strings.Split(doc, HeadingDelimiter) {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		title, body, _ := strings.Cut(fragment, "\n")
		title = strings.TrimSpace(title)
		title = strings.TrimSpace(strings.TrimSuffix(title, ":"))
		body = strings.TrimSpace(body)

		if i, seen := index[title]; seen {
			sections[i].Body = body
			continue
		}
		index[title] = len(sections)
		sections = append(sections, Section{Title: title, Body: body})
	}
	return sections
}

// SplitSections is SplitSectionList as a title -> body mapping. A document
// without any heading yields an empty, non-nil map.
func SplitSections(doc string) map[string]string {
	sections := SplitSectionList(doc)
	out := make(map[string]string, len(sections))
	for _, s := range sections {
		out[s.Title] = s.Body
	}
	return out
}

// FindSection returns the body of the first section whose title contains
// name, or "" when there is none.
func FindSection(doc, name string) string {
	for _, s := range SplitSectionList(doc) {
		if strings.Contains(s.Title, name) {
			return s.Body
		}
	}
	return ""
}
