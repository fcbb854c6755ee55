/*
# Module: pkg/query/query.go
Query abstract syntax: the Datalog-flavored find/where map language.

A map-shaped query language: `{find, in, with, where}` instead of
`SELECT ... WHERE ...`, variables written `?x`, and clause kinds
(Pattern/Not/Or/Filter/Bind) in place of SPARQL graph patterns.

## Linked Modules
- [parse](./parse.go) - Textual query syntax
- [executor](./executor.go) - Clause evaluation
- [planner](./planner.go) - Selectivity-based clause reordering
- [../graphdb](../graphdb/graph.go) - Graph being queried
- [../dberr](../dberr/dberr.go) - MissingClause/UnknownClauses/IllegalAggregate

## Tags
query, ast, datalog

## Exports
Variable, Term, Pattern, Not, Or, Filter, Bind, Clause, ProjectionSpec,
AggKind, Aggregate, InputSpec, Query, QueryResult

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#query.go> a code:Module ;
    code:name "pkg/query/query.go" ;
    code:description "Query abstract syntax: the Datalog-flavored find/where map language" ;
    code:tags "query", "ast", "datalog" .
<!-- End LinkedDoc RDF -->
*/

package query

import (
	"strings"

	"github.com/justin4957/graphfs/internal/store"
)

// Variable is an identifier prefixed with '?', e.g. "?x".
type Variable string

// IsVariable reports whether s has the variable prefix.
func IsVariable(s string) bool { return strings.HasPrefix(s, "?") }

// Term occupies a pattern slot: a Variable, a literal store.Value, or
// the wildcard store.Blank for "don't care, don't bind".
type Term interface{}

// Pattern is a [e a v] triple clause. Predicate may carry a Transitive
// tag ('+' or '*' suffix on the predicate keyword).
type Pattern struct {
	S, P, O Term
}

// Clause is one element of a Query's where list.
type Clause interface{ clause() }

func (Pattern) clause() {}

// Not is an anti-join: drop rows for which every sub-clause matches.
type Not struct{ Clauses []Clause }

func (Not) clause() {}

// Or unions the bindings produced by evaluating each branch against
// the same incoming row; branches may bind different variables.
type Or struct{ Branches [][]Clause }

func (Or) clause() {}

// Filter keeps rows where Expr evaluates truthy.
type Filter struct{ Expr Expr }

func (Filter) clause() {}

// Bind computes Expr and destructures it into Target (a bare variable
// or a vector of variables for tuple destructuring).
type Bind struct {
	Expr   Expr
	Target []Variable
}

func (Bind) clause() {}

// AggKind names one of the fixed aggregate functions.
type AggKind int

const (
	AggNone AggKind = iota
	AggCount
	AggCountDistinct
	AggSum
	AggMin
	AggMax
	AggAvg
)

// Aggregate is one entry of a find spec: either a bare variable or an
// aggregate application over one (Var == "*" meaning "the whole row")
// or distinct-tagged variable.
type Aggregate struct {
	Kind AggKind
	Var  Variable // "*" for (count *) / (count-distinct *)
}

// IsAggregate reports whether this entry actually aggregates, as
// opposed to a plain projected variable.
func (a Aggregate) IsAggregate() bool { return a.Kind != AggNone }

// ProjectionShape names the find-spec wrapper shape, which controls
// how the bindings are packaged into a QueryResult.
type ProjectionShape int

const (
	ShapeRelation   ProjectionShape = iota // [?x ?y]      -> rows of tuples
	ShapeScalar                            // [?x .]       -> single value
	ShapeTupleOnce                         // [[?x ?y]]    -> first tuple only
	ShapeCollection                        // [[?x ...]]   -> flat list of one column
)

// ProjectionSpec is the parsed `find` clause.
type ProjectionSpec struct {
	Shape   ProjectionShape
	Columns []Aggregate
}

// InputSpec names one positional `:in` binding. Scalar binds a single
// variable to one input value; Collection expands a slice input into
// one row per element (`[?x ...]`); Tuple destructures a fixed-arity
// slice into several variables (`[?x ?y]`).
type InputSpec struct {
	Kind   InputKind
	Names  []Variable
}

type InputKind int

const (
	InputScalar InputKind = iota
	InputCollection
	InputTuple
)

// Query is the parsed form of the find/where query language.
type Query struct {
	Find   ProjectionSpec
	In     []InputSpec
	With   []Variable
	Where  []Clause
	UserPlanner bool // true when `planner: :user` suppresses reordering
}

// QueryResult is the shaped output of Execute, ready for CLI/REST/
// GraphQL rendering. Bindings map variable name (without leading '?'
// stripped -- callers format as stored) to value; Variables holds the
// output column order.
type QueryResult struct {
	Variables []string
	Bindings  []map[string]store.Value
	Count     int
}
