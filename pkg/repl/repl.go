/*
# Module: pkg/repl/repl.go
Interactive REPL for graph queries.

Provides an interactive Read-Eval-Print Loop for exploring a versioned
graph with the map-style find/where query language, syntax
highlighting, tab completion, and time-travel via .asof.

## Linked Modules
- [../query](../query/executor.go) - Query executor
- [../conn](../conn/conn.go) - Versioned connection

## Tags
repl, interactive, cli

## Exports
REPL, Config, New

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#repl.go> a code:Module ;
    code:name "pkg/repl/repl.go" ;
    code:description "Interactive REPL for graph queries" ;
    code:language "go" ;
    code:layer "repl" ;
    code:linksTo <../query/executor.go>, <../conn/conn.go> ;
    code:exports <#REPL>, <#Config>, <#New> ;
    code:tags "repl", "interactive", "cli" .
<!-- End LinkedDoc RDF -->
*/

package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/graphdb"
	"github.com/justin4957/graphfs/pkg/query"
)

// Config holds REPL configuration.
type Config struct {
	HistoryFile string
	Prompt      string
	NoColor     bool
	PageSize    int
	Paginate    bool
}

// REPL is the interactive Read-Eval-Print Loop over a versioned connection.
type REPL struct {
	config      *Config
	conn        *conn.Conn
	env         query.Env
	asOf        *time.Time
	rl          *readline.Instance
	format      string
	history     []string
	completer   *Completer
	highlighter *Highlighter
}

// New creates a new REPL instance bound to c.
func New(c *conn.Conn, config *Config) (*REPL, error) {
	if config == nil {
		config = &Config{
			HistoryFile: filepath.Join(os.TempDir(), ".graphfs_history"),
			Prompt:      "graphfs> ",
			PageSize:    20,
			Paginate:    true,
		}
	}
	if config.PageSize <= 0 {
		config.PageSize = 20
	}

	rlConfig := &readline.Config{
		Prompt:          config.Prompt,
		HistoryFile:     config.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}
	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}

	completer := NewCompleter(c)
	highlighter := NewHighlighter(config.NoColor)

	r := &REPL{
		config:      config,
		conn:        c,
		rl:          rl,
		format:      "table",
		completer:   completer,
		highlighter: highlighter,
	}
	r.setupAutocomplete()
	return r, nil
}

// currentGraph returns the graph to query against: the live tip unless
// .asof has pinned an earlier view.
func (r *REPL) currentGraph() (graphdb.Graph, error) {
	db, err := r.conn.Db()
	if err != nil {
		return graphdb.Graph{}, err
	}
	if r.asOf != nil {
		return conn.AsOf(db, *r.asOf).Graph, nil
	}
	return db.Graph, nil
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	defer r.rl.Close()

	r.printWelcome()

	var multiline strings.Builder
	depth := 0

	for {
		if depth > 0 {
			r.rl.SetPrompt("      -> ")
		} else {
			r.rl.SetPrompt(r.config.Prompt)
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if depth > 0 {
					multiline.Reset()
					depth = 0
					continue
				}
				if len(line) == 0 {
					break
				}
				continue
			}
			if err == io.EOF {
				break
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if depth == 0 && strings.HasPrefix(trimmed, ".") {
			if err := r.handleCommand(trimmed); err != nil {
				if err == io.EOF {
					break
				}
				r.printError(err.Error())
			}
			continue
		}

		multiline.WriteString(line)
		multiline.WriteString("\n")
		depth += braceDelta(line)

		if depth <= 0 {
			queryStr := multiline.String()
			multiline.Reset()
			depth = 0
			r.executeQuery(queryStr)
		}
	}

	r.printGoodbye()
	return nil
}

func braceDelta(line string) int {
	delta := 0
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inString = !inString
		case '{':
			if !inString {
				delta++
			}
		case '}':
			if !inString {
				delta--
			}
		}
	}
	return delta
}

// executeQuery parses and runs one query-language map against the
// current graph view, then displays the results.
func (r *REPL) executeQuery(queryStr string) {
	queryStr = strings.TrimSpace(queryStr)
	if queryStr == "" {
		return
	}
	r.history = append(r.history, queryStr)

	q, err := query.Parse(queryStr)
	if err != nil {
		r.printError(fmt.Sprintf("Parse error: %v", err))
		return
	}

	g, err := r.currentGraph()
	if err != nil {
		r.printError(fmt.Sprintf("Connection error: %v", err))
		return
	}

	start := time.Now()
	result, err := query.Execute(g, q, r.env, nil)
	duration := time.Since(start)
	if err != nil {
		r.printError(fmt.Sprintf("Query error: %v", err))
		return
	}

	if r.config.Paginate && len(result.Bindings) > r.config.PageSize {
		r.displayPaginatedResults(result, duration)
		return
	}
	if err := r.formatResult(result); err != nil {
		r.printError(fmt.Sprintf("Format error: %v", err))
		return
	}
	r.printInfo(fmt.Sprintf("Query executed in %v", duration))
	r.printInfo(fmt.Sprintf("Returned %d results", result.Count))
}

func (r *REPL) displayPaginatedResults(result *query.QueryResult, duration time.Duration) {
	if len(result.Bindings) == 0 {
		r.printInfo("No results")
		return
	}

	total := len(result.Bindings)
	pageSize := r.config.PageSize
	totalPages := (total + pageSize - 1) / pageSize
	page := 0

	for {
		start := page * pageSize
		end := start + pageSize
		if end > total {
			end = total
		}
		pageResult := &query.QueryResult{
			Variables: result.Variables,
			Bindings:  result.Bindings[start:end],
			Count:     end - start,
		}

		fmt.Print("\033[H\033[2J")
		if err := r.formatResult(pageResult); err != nil {
			r.printError(fmt.Sprintf("Format error: %v", err))
			return
		}
		fmt.Println()
		r.printInfo(fmt.Sprintf("Results %d-%d of %d (Page %d/%d)", start+1, end, total, page+1, totalPages))
		r.printInfo(fmt.Sprintf("Query executed in %v", duration))

		if totalPages == 1 {
			return
		}

		if r.config.NoColor {
			fmt.Print("\n[n]ext  [p]rev  [f]irst  [l]ast  [g]oto  [q]uit: ")
		} else {
			color.New(color.FgCyan).Print("\n[n]ext  [p]rev  [f]irst  [l]ast  [g]oto  [q]uit: ")
		}

		line, err := r.rl.Readline()
		if err != nil {
			return
		}
		input := strings.TrimSpace(strings.ToLower(line))
		switch {
		case input == "n" || input == "next" || input == "":
			if page < totalPages-1 {
				page++
			}
		case input == "p" || input == "prev" || input == "previous":
			if page > 0 {
				page--
			}
		case input == "f" || input == "first":
			page = 0
		case input == "l" || input == "last":
			page = totalPages - 1
		case input == "q" || input == "quit" || input == "exit":
			return
		case strings.HasPrefix(input, "g"):
			if n, err := parsePageNumber(strings.TrimSpace(strings.TrimPrefix(input, "g"))); err == nil && n >= 1 && n <= totalPages {
				page = n - 1
			}
		default:
			if n, err := parsePageNumber(input); err == nil && n >= 1 && n <= totalPages {
				page = n - 1
			}
		}
	}
}

func parsePageNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

func (r *REPL) setupAutocomplete() {
	r.rl.Config.AutoComplete = r.completer.GetAutoCompleteFunc()
}

func (r *REPL) printWelcome() {
	banner := func(msg string, c *color.Color) {
		if r.config.NoColor {
			fmt.Println(msg)
		} else {
			c.Println(msg)
		}
	}
	banner("GraphFS Interactive REPL", color.New(color.FgCyan, color.Bold))
	fmt.Println("Type .help for commands or enter a {:find ... :where ...} query")
	fmt.Println()
	banner("Features:", color.New(color.FgGreen))
	fmt.Println("  - Tab completion for commands, clause keywords, and predicates")
	fmt.Println("  - Multi-line query editing (braces track nesting)")
	fmt.Println("  - Query history with Up/Down arrows and Ctrl+R search")
	fmt.Println("  - Time travel with .asof")
	fmt.Println()
}

func (r *REPL) printGoodbye() { fmt.Println("\nGoodbye!") }

func (r *REPL) printError(msg string) {
	if r.config.NoColor {
		fmt.Fprintf(r.rl.Stderr(), "Error: %s\n", msg)
	} else {
		color.New(color.FgRed).Fprintf(r.rl.Stderr(), "Error: %s\n", msg)
	}
}

func (r *REPL) printInfo(msg string) {
	if r.config.NoColor {
		fmt.Println(msg)
	} else {
		color.New(color.FgCyan).Println(msg)
	}
}

func (r *REPL) printSuccess(msg string) {
	if r.config.NoColor {
		fmt.Println(msg)
	} else {
		color.New(color.FgGreen).Println(msg)
	}
}
