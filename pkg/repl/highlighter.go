/*
# Module: pkg/repl/highlighter.go
Syntax highlighting for the find/where query language.

Provides color highlighting for clause keywords, forms, keywords
(predicate-shaped tokens), strings, and variables.

## Linked Modules
- [repl](./repl.go) - REPL core

## Tags
repl, syntax, highlighting, color

## Exports
Highlighter, HighlightQuery

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#highlighter.go> a code:Module ;
    code:name "pkg/repl/highlighter.go" ;
    code:description "Syntax highlighting for the find/where query language" ;
    code:language "go" ;
    code:layer "repl" ;
    code:linksTo <./repl.go> ;
    code:exports <#Highlighter>, <#HighlightQuery> ;
    code:tags "repl", "syntax", "highlighting", "color" .
<!-- End LinkedDoc RDF -->
*/

package repl

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// Highlighter provides syntax highlighting for query text.
type Highlighter struct {
	noColor       bool
	clauseColor   *color.Color
	formColor     *color.Color
	keywordColor  *color.Color
	stringColor   *color.Color
	variableColor *color.Color
}

// NewHighlighter creates a new syntax highlighter.
func NewHighlighter(noColor bool) *Highlighter {
	return &Highlighter{
		noColor:       noColor,
		clauseColor:   color.New(color.FgCyan, color.Bold),
		formColor:     color.New(color.FgBlue),
		keywordColor:  color.New(color.FgGreen),
		stringColor:   color.New(color.FgYellow),
		variableColor: color.New(color.FgMagenta),
	}
}

var (
	clausePattern   = regexp.MustCompile(`:find|:where|:in|:with|:planner`)
	formPattern     = regexp.MustCompile(`\b(not|or|filter|bind|count|count-distinct|sum|avg|min|max)\b`)
	keywordPattern  = regexp.MustCompile(`:[a-zA-Z][a-zA-Z0-9/_-]*`)
	stringPattern   = regexp.MustCompile(`"[^"]*"`)
	variablePattern = regexp.MustCompile(`\?[a-zA-Z_][a-zA-Z0-9_]*`)
)

// HighlightQuery applies syntax highlighting to query text.
func (h *Highlighter) HighlightQuery(q string) string {
	if h.noColor {
		return q
	}
	result := q
	result = stringPattern.ReplaceAllStringFunc(result, h.stringColor.Sprint)
	result = variablePattern.ReplaceAllStringFunc(result, h.variableColor.Sprint)
	result = clausePattern.ReplaceAllStringFunc(result, h.clauseColor.Sprint)
	result = keywordPattern.ReplaceAllStringFunc(result, func(m string) string {
		if clausePattern.MatchString(m) {
			return m
		}
		return h.keywordColor.Sprint(m)
	})
	result = formPattern.ReplaceAllStringFunc(result, func(m string) string {
		return h.formColor.Sprint(strings.ToLower(m))
	})
	return result
}

// HighlightQuery is a convenience function for highlighting.
func HighlightQuery(q string, noColor bool) string {
	h := NewHighlighter(noColor)
	return h.HighlightQuery(q)
}
