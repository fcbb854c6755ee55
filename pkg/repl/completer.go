/*
# Module: pkg/repl/completer.go
Autocomplete functionality for REPL.

Provides context-aware autocomplete for query clause keywords,
predicates seen in the connected graph, and REPL commands.

## Linked Modules
- [repl](./repl.go) - REPL core
- [../conn](../conn/conn.go) - Versioned connection

## Tags
repl, autocomplete, completion

## Exports
Completer, NewCompleter

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#completer.go> a code:Module ;
    code:name "pkg/repl/completer.go" ;
    code:description "Autocomplete functionality for REPL" ;
    code:language "go" ;
    code:layer "repl" ;
    code:linksTo <./repl.go>, <../conn/conn.go> ;
    code:exports <#Completer>, <#NewCompleter> ;
    code:tags "repl", "autocomplete", "completion" .
<!-- End LinkedDoc RDF -->
*/

package repl

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/chzyer/readline"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/conn"
)

// Completer provides autocomplete functionality.
type Completer struct {
	conn       *conn.Conn
	commands   []readline.PrefixCompleterInterface
	keywords   []string
	predicates []string
}

// NewCompleter creates a new completer bound to c.
func NewCompleter(c *conn.Conn) *Completer {
	comp := &Completer{
		conn:     c,
		keywords: getQueryKeywords(),
	}
	comp.refreshPredicates()
	comp.buildCommandList()
	return comp
}

// refreshPredicates rescans the connection's current graph for distinct
// predicate values, so completion stays current as transactions land.
func (c *Completer) refreshPredicates() {
	c.predicates = nil
	db, err := c.conn.Db()
	if err != nil {
		return
	}
	seen := map[string]bool{}
	for row := range db.Graph.Resolve(store.Blank, store.Blank, store.Blank) {
		p := fmt.Sprint(row[1])
		if !seen[p] {
			seen[p] = true
			c.predicates = append(c.predicates, p)
		}
	}
}

func (c *Completer) buildCommandList() {
	c.commands = []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".format",
			readline.PcItem("table"),
			readline.PcItem("json"),
			readline.PcItem("csv"),
		),
		readline.PcItem(".load"),
		readline.PcItem(".save"),
		readline.PcItem(".history"),
		readline.PcItem(".clear"),
		readline.PcItem(".schema"),
		readline.PcItem(".stats"),
		readline.PcItem(".asof"),
		readline.PcItem(".now"),
		readline.PcItem(".exit"),
		readline.PcItem(".quit"),
	}
	for _, kw := range c.keywords {
		c.commands = append(c.commands, readline.PcItem(kw))
	}
	for _, pred := range c.predicates {
		c.commands = append(c.commands, readline.PcItem(pred))
	}
}

// GetCompleter returns a readline completer.
func (c *Completer) GetCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(c.commands...)
}

// GetAutoCompleteFunc returns a custom autocomplete function for
// context-aware completion.
func (c *Completer) GetAutoCompleteFunc() readline.AutoCompleter {
	return &contextCompleter{c}
}

type contextCompleter struct {
	completer *Completer
}

func (cc *contextCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])
	words := strings.Fields(lineStr)
	if len(words) == 0 {
		return nil, 0
	}

	lastWord := ""
	if pos > 0 && !unicode.IsSpace(rune(line[pos-1])) {
		lastWord = words[len(words)-1]
	}

	cc.completer.refreshPredicates()

	var suggestions []string
	switch {
	case strings.HasPrefix(lastWord, "."):
		suggestions = []string{
			".help", ".format", ".load", ".save", ".history",
			".clear", ".schema", ".stats", ".asof", ".now", ".exit", ".quit",
		}
	case strings.HasPrefix(lastWord, ":"):
		suggestions = append(suggestions, cc.completer.keywords...)
		suggestions = append(suggestions, cc.completer.predicates...)
	default:
		suggestions = append(suggestions, cc.completer.keywords...)
		suggestions = append(suggestions, "not", "or", "filter", "bind", "count", "sum", "avg", "min", "max")
	}

	var matches []string
	lowerLast := strings.ToLower(lastWord)
	for _, s := range suggestions {
		if strings.HasPrefix(strings.ToLower(s), lowerLast) {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return nil, 0
	}

	length = len(lastWord)
	newLine = make([][]rune, len(matches))
	for i, m := range matches {
		newLine[i] = []rune(m[len(lastWord):])
	}
	return newLine, length
}

func getQueryKeywords() []string {
	return []string{":find", ":where", ":in", ":with", ":planner"}
}

// GetPredicates returns the list of predicates last seen in the graph.
func (c *Completer) GetPredicates() []string { return c.predicates }

// GetKeywords returns the query clause keywords.
func (c *Completer) GetKeywords() []string { return c.keywords }

// FilterSuggestions filters suggestions based on prefix.
func FilterSuggestions(suggestions []string, prefix string) []string {
	if prefix == "" {
		return suggestions
	}
	prefix = strings.ToLower(prefix)
	var filtered []string
	for _, s := range suggestions {
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
