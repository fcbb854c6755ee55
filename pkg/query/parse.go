/*
# Module: pkg/query/parse.go
Textual syntax for the find/where query language.

A small EDN-flavored reader: `{:find [?x ?y] :where [[?x :a/knows ?y]]}`.
Maps carry `:find`/`:in`/`:with`/`:where`/`:planner` keys; vectors are
`[...]`; parenthesized forms are clause/expression applications such as
`(not ...)`, `(or ...)`, `(count ?x)`.

## Linked Modules
- [query](./query.go) - AST node types being constructed
- [expr](./expr.go) - Bind/Filter expression nodes
- [../dberr](../dberr/dberr.go) - MissingClause/UnknownClauses/IllegalAggregate

## Tags
query, parser, edn

## Exports
Parse

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#parse.go> a code:Module ;
    code:name "pkg/query/parse.go" ;
    code:description "Textual syntax for the find/where query language" ;
    code:tags "query", "parser", "edn" .
<!-- End LinkedDoc RDF -->
*/

package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/dberr"
)

type token struct {
	kind string // "{","}","[","]","(",")",".","...","sym","kw","var","str","num"
	text string
}

func tokenize(s string) ([]token, error) {
	var toks []token
	r := []rune(s)
	i := 0
	for i < len(r) {
		c := r[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			i++
		case c == '{' || c == '}' || c == '[' || c == ']' || c == '(' || c == ')':
			toks = append(toks, token{kind: string(c)})
			i++
		case c == '"':
			j := i + 1
			for j < len(r) && r[j] != '"' {
				j++
			}
			if j >= len(r) {
				return nil, fmt.Errorf("unterminated string literal")
			}
			toks = append(toks, token{kind: "str", text: string(r[i+1 : j])})
			i = j + 1
		case c == '.' && i+2 < len(r) && r[i+1] == '.' && r[i+2] == '.':
			toks = append(toks, token{kind: "..."})
			i += 3
		case c == '.':
			toks = append(toks, token{kind: "."})
			i++
		default:
			j := i
			for j < len(r) && !strings.ContainsRune(" \t\n\r,{}[]()\"", r[j]) {
				j++
			}
			text := string(r[i:j])
			i = j
			switch {
			case strings.HasPrefix(text, "?"):
				toks = append(toks, token{kind: "var", text: text})
			case strings.HasPrefix(text, ":"):
				toks = append(toks, token{kind: "kw", text: text})
			case isNumber(text):
				toks = append(toks, token{kind: "num", text: text})
			default:
				toks = append(toks, token{kind: "sym", text: text})
			}
		}
	}
	return toks, nil
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	if p.pos >= len(p.toks) {
		return token{kind: "eof"}
	}
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) expect(kind string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, fmt.Errorf("expected %q, got %q %q", kind, t.kind, t.text)
	}
	return t, nil
}

// Parse reads one query map from s.
func Parse(s string) (Query, error) {
	toks, err := tokenize(s)
	if err != nil {
		return Query{}, err
	}
	p := &parser{toks: toks}
	if _, err := p.expect("{"); err != nil {
		return Query{}, err
	}

	var q Query
	haveFind, haveWhere := false, false
	for p.peek().kind != "}" {
		key, err := p.expect("kw")
		if err != nil {
			return Query{}, err
		}
		switch key.text {
		case ":find":
			spec, err := p.parseFind()
			if err != nil {
				return Query{}, err
			}
			q.Find = spec
			haveFind = true
		case ":in":
			specs, err := p.parseIn()
			if err != nil {
				return Query{}, err
			}
			q.In = specs
		case ":with":
			vars, err := p.parseVarVector()
			if err != nil {
				return Query{}, err
			}
			q.With = vars
		case ":where":
			clauses, err := p.parseWhere()
			if err != nil {
				return Query{}, err
			}
			q.Where = clauses
			haveWhere = true
		case ":planner":
			p.next() // :user (the only supported value)
			q.UserPlanner = true
		default:
			return Query{}, dberr.UnknownClauses([]string{key.text})
		}
	}
	p.expect("}")

	if !haveFind {
		return Query{}, dberr.MissingClause("find")
	}
	if !haveWhere {
		return Query{}, dberr.MissingClause("where")
	}
	return q, nil
}

func (p *parser) parseVarVector() ([]Variable, error) {
	if _, err := p.expect("["); err != nil {
		return nil, err
	}
	var vars []Variable
	for p.peek().kind != "]" {
		t, err := p.expect("var")
		if err != nil {
			return nil, err
		}
		vars = append(vars, Variable(t.text))
	}
	p.expect("]")
	return vars, nil
}

func (p *parser) parseFind() (ProjectionSpec, error) {
	if _, err := p.expect("["); err != nil {
		return ProjectionSpec{}, err
	}

	var cols []Aggregate
	shape := ShapeRelation
	for p.peek().kind != "]" {
		switch p.peek().kind {
		case "var":
			v := p.next()
			cols = append(cols, Aggregate{Var: Variable(v.text)})
		case ".":
			p.next()
			shape = ShapeScalar
		case "[":
			p.next()
			inner, err := p.parseFindInner()
			if err != nil {
				return ProjectionSpec{}, err
			}
			cols = append(cols, inner...)
			if _, err := p.expect("]"); err != nil {
				return ProjectionSpec{}, err
			}
			if p.peek().kind == "..." {
				p.next()
				shape = ShapeCollection
			} else {
				shape = ShapeTupleOnce
			}
		case "(":
			agg, err := p.parseAggregate()
			if err != nil {
				return ProjectionSpec{}, err
			}
			cols = append(cols, agg)
		default:
			return ProjectionSpec{}, fmt.Errorf("unexpected token in :find: %q", p.peek().text)
		}
	}
	p.expect("]")
	return ProjectionSpec{Shape: shape, Columns: cols}, nil
}

func (p *parser) parseFindInner() ([]Aggregate, error) {
	var cols []Aggregate
	for p.peek().kind == "var" {
		v := p.next()
		cols = append(cols, Aggregate{Var: Variable(v.text)})
	}
	return cols, nil
}

var aggNames = map[string]AggKind{
	"count":          AggCount,
	"count-distinct": AggCountDistinct,
	"sum":            AggSum,
	"min":            AggMin,
	"max":            AggMax,
	"avg":            AggAvg,
}

func (p *parser) parseAggregate() (Aggregate, error) {
	if _, err := p.expect("("); err != nil {
		return Aggregate{}, err
	}
	name, err := p.expect("sym")
	if err != nil {
		return Aggregate{}, err
	}
	kind, ok := aggNames[name.text]
	if !ok {
		return Aggregate{}, dberr.IllegalAggregate("unknown aggregate " + name.text)
	}
	var v Variable
	switch p.peek().kind {
	case "var":
		v = Variable(p.next().text)
	case "sym":
		star := p.next()
		if star.text != "*" {
			return Aggregate{}, dberr.IllegalAggregate("expected ?var or * after " + name.text)
		}
		if kind == AggSum || kind == AggMin || kind == AggMax || kind == AggAvg {
			return Aggregate{}, dberr.IllegalAggregate(name.text + " does not accept *")
		}
		v = "*"
	default:
		return Aggregate{}, dberr.IllegalAggregate("expected ?var or * after " + name.text)
	}
	if _, err := p.expect(")"); err != nil {
		return Aggregate{}, err
	}
	return Aggregate{Kind: kind, Var: v}, nil
}

func (p *parser) parseIn() ([]InputSpec, error) {
	if _, err := p.expect("["); err != nil {
		return nil, err
	}
	var specs []InputSpec
	for p.peek().kind != "]" {
		switch p.peek().kind {
		case "sym":
			// positional source placeholder, e.g. "$"
			p.next()
		case "var":
			v := p.next()
			specs = append(specs, InputSpec{Kind: InputScalar, Names: []Variable{Variable(v.text)}})
		case "[":
			p.next()
			var names []Variable
			for p.peek().kind == "var" {
				names = append(names, Variable(p.next().text))
			}
			collection := false
			if p.peek().kind == "..." {
				p.next()
				collection = true
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			kind := InputTuple
			if collection {
				kind = InputCollection
			}
			specs = append(specs, InputSpec{Kind: kind, Names: names})
		default:
			return nil, fmt.Errorf("unexpected token in :in: %q", p.peek().text)
		}
	}
	p.expect("]")
	return specs, nil
}

func (p *parser) parseWhere() ([]Clause, error) {
	if _, err := p.expect("["); err != nil {
		return nil, err
	}
	var clauses []Clause
	for p.peek().kind != "]" {
		c, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	p.expect("]")
	return clauses, nil
}

func (p *parser) parseClause() (Clause, error) {
	switch p.peek().kind {
	case "[":
		return p.parsePattern()
	case "(":
		return p.parseFormClause()
	default:
		return nil, fmt.Errorf("unexpected token in :where: %q", p.peek().text)
	}
}

func (p *parser) parsePattern() (Clause, error) {
	p.next() // "["
	s, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	pr, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	o, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("]"); err != nil {
		return nil, err
	}
	return Pattern{S: s, P: pr, O: o}, nil
}

func (p *parser) parseTerm() (Term, error) {
	t := p.next()
	switch t.kind {
	case "var":
		if t.text == "?_" || t.text == "?" {
			return store.Blank, nil
		}
		return Variable(t.text), nil
	case "kw":
		return store.Keyword(t.text), nil
	case "str":
		return t.text, nil
	case "num":
		return parseNumber(t.text), nil
	case "sym":
		if t.text == "_" {
			return store.Blank, nil
		}
		return t.text, nil
	default:
		return nil, fmt.Errorf("unexpected term token %q", t.text)
	}
}

// parseNumber favors int64 for digit-only literals so they compare
// equal to int64 values already stored in the graph; anything with a
// decimal point or exponent becomes float64.
func parseNumber(text string) store.Value {
	if !strings.ContainsAny(text, ".eE") {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
	}
	f, _ := strconv.ParseFloat(text, 64)
	return f
}

func (p *parser) parseFormClause() (Clause, error) {
	p.next() // "("
	head, err := p.expect("sym")
	if err != nil {
		return nil, err
	}
	switch head.text {
	case "not":
		var clauses []Clause
		for p.peek().kind != ")" {
			c, err := p.parseClause()
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, c)
		}
		p.expect(")")
		return Not{Clauses: clauses}, nil
	case "or":
		var branches [][]Clause
		for p.peek().kind != ")" {
			if p.peek().kind == "(" {
				p.next()
				var clauses []Clause
				for p.peek().kind != ")" {
					c, err := p.parseClause()
					if err != nil {
						return nil, err
					}
					clauses = append(clauses, c)
				}
				p.expect(")")
				branches = append(branches, clauses)
			} else {
				c, err := p.parseClause()
				if err != nil {
					return nil, err
				}
				branches = append(branches, []Clause{c})
			}
		}
		p.expect(")")
		return Or{Branches: branches}, nil
	case "filter":
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.expect(")")
		return Filter{Expr: e}, nil
	case "bind":
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		var target []Variable
		if p.peek().kind == "[" {
			p.next()
			for p.peek().kind == "var" {
				target = append(target, Variable(p.next().text))
			}
			p.expect("]")
		} else {
			v, err := p.expect("var")
			if err != nil {
				return nil, err
			}
			target = []Variable{Variable(v.text)}
		}
		p.expect(")")
		return Bind{Expr: e, Target: target}, nil
	default:
		return nil, fmt.Errorf("unknown clause form %q", head.text)
	}
}

// parseExpr reads one Bind/Filter expression: a literal, a variable,
// or a parenthesized operator application.
func (p *parser) parseExpr() (Expr, error) {
	t := p.peek()
	switch t.kind {
	case "var":
		p.next()
		return VarRef{Name: Variable(t.text)}, nil
	case "str":
		p.next()
		return Lit{Value: t.text}, nil
	case "num":
		p.next()
		return Lit{Value: parseNumber(t.text)}, nil
	case "kw":
		p.next()
		return Lit{Value: store.Keyword(t.text)}, nil
	case "(":
		p.next()
		op, err := p.expect("sym")
		if err != nil {
			return nil, err
		}
		var args []Expr
		for p.peek().kind != ")" {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		p.expect(")")
		return App{Op: op.text, Args: args}, nil
	default:
		return nil, fmt.Errorf("unexpected token in expression: %q", t.text)
	}
}
