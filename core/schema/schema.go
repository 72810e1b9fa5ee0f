// Package schema declares the fields expected in the documents the
// extractors are usually pointed at, and loads custom declarations from
// YAML or TOML files.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leofalp/outparse/core/extract"
)

// Schema is a named list of field declarations.
type Schema struct {
	Name   string
	Fields []extract.FieldSpec
}

func field(name string, kind extract.Kind) extract.FieldSpec {
	return extract.FieldSpec{Name: name, Kind: kind}
}

// PRD is the product requirement document.
func PRD() []extract.FieldSpec {
	return []extract.FieldSpec{
		field("Language", extract.KindString),
		field("Programming Language", extract.KindString),
		field("Original Requirements", extract.KindString),
		field("Project Name", extract.KindString),
		field("Product Goals", extract.KindStringList),
		field("User Stories", extract.KindStringList),
		field("Competitive Analysis", extract.KindStringList),
		field("Competitive Quadrant Chart", extract.KindString),
		field("Requirement Analysis", extract.KindString),
		field("Requirement Pool", extract.KindListOfList),
		field("UI Design draft", extract.KindString),
		field("Anything UNCLEAR", extract.KindString),
		field("CMake Configuration", extract.KindString),
	}
}

// ProjectManagement is the task breakdown document.
func ProjectManagement() []extract.FieldSpec {
	return []extract.FieldSpec{
		field("Required C++/header packages", extract.KindStringList),
		field("Required Python packages", extract.KindStringList),
		field("Required Other language third-party packages", extract.KindStringList),
		field("Logic Analysis", extract.KindListOfList),
		field("Task list", extract.KindStringList),
		field("Full API spec", extract.KindString),
		field("Shared Knowledge", extract.KindString),
		field("Anything UNCLEAR", extract.KindString),
	}
}

// CodeReview is the review of a single source file.
func CodeReview() []extract.FieldSpec {
	return []extract.FieldSpec{
		field("Review", extract.KindStringList),
		field("LGTM", extract.KindString),
		field("Actions", extract.KindString),
	}
}

// IssueType classifies a requirement as a bug fix or a new requirement.
func IssueType() []extract.FieldSpec {
	return []extract.FieldSpec{
		field("issue_type", extract.KindString),
		field("reason", extract.KindString),
	}
}

// IsRelative says whether a new requirement relates to an existing PRD.
func IsRelative() []extract.FieldSpec {
	return []extract.FieldSpec{
		field("is_relative", extract.KindString),
		field("reason", extract.KindString),
	}
}

var builtins = map[string]func() []extract.FieldSpec{
	"prd":                PRD,
	"pm":                 ProjectManagement,
	"project-management": ProjectManagement,
	"review":             CodeReview,
	"code-review":        CodeReview,
	"issue-type":         IssueType,
	"is-relative":        IsRelative,
}

// Names lists the names ByName accepts.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName returns a built-in schema. Names are matched case-insensitively and
// underscores count as dashes.
func ByName(name string) (Schema, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	build, ok := builtins[key]
	if !ok {
		return Schema{}, fmt.Errorf("unknown schema %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return Schema{Name: key, Fields: build()}, nil
}

// Resolve returns the built-in schema called ref, or loads ref as a file
// when no built-in has that name.
func Resolve(ref string) (Schema, error) {
	if s, err := ByName(ref); err == nil {
		return s, nil
	}
	return Load(ref)
}
