/*
# Module: pkg/query/expr.go
Sandboxed expression language for Bind/Filter clauses.

Literals, variables, and applications over a safelist of built-in
operators plus an ambient name->function environment. Free-standing
identifiers that resolve to neither fail with dberr.UnsupportedOperation.
Plain prefix application in place of a FILTER grammar keeps the parser
small while still sandboxing what a query clause can call.

## Linked Modules
- [query](./query.go) - Bind/Filter clause shapes
- [executor](./executor.go) - Evaluation call sites
- [../dberr](../dberr/dberr.go) - UnsupportedOperation

## Tags
query, expression, sandbox

## Exports
Expr, Lit, VarRef, App, Env, Eval, Truthy

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#expr.go> a code:Module ;
    code:name "pkg/query/expr.go" ;
    code:description "Sandboxed expression language for Bind/Filter clauses" ;
    code:tags "query", "expression", "sandbox" .
<!-- End LinkedDoc RDF -->
*/

package query

import (
	"fmt"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/dberr"
)

// Expr is a Bind/Filter expression node.
type Expr interface{ expr() }

// Lit is a literal value.
type Lit struct{ Value store.Value }

func (Lit) expr() {}

// VarRef references a bound variable.
type VarRef struct{ Name Variable }

func (VarRef) expr() {}

// App applies a named operator to argument expressions.
type App struct {
	Op   string
	Args []Expr
}

func (App) expr() {}

// Env is the ambient name->function environment consulted when an
// App's operator is not a built-in. Functions take already-evaluated
// arguments and return a value or an error.
type Env map[string]func(args []store.Value) (store.Value, error)

// builtins is the fixed safelist of the expression sublanguage:
// arithmetic, comparison, and the `str` coercion. Callers may extend
// this with their own functions via env; Eval itself never escapes
// this list plus env.
var builtins = map[string]func(args []store.Value) (store.Value, error){
	"+":    arith(func(a, b float64) float64 { return a + b }),
	"-":    arith(func(a, b float64) float64 { return a - b }),
	"*":    arith(func(a, b float64) float64 { return a * b }),
	"/":    arith(func(a, b float64) float64 { return a / b }),
	"<":    cmp(func(a, b float64) bool { return a < b }),
	"<=":   cmp(func(a, b float64) bool { return a <= b }),
	">":    cmp(func(a, b float64) bool { return a > b }),
	">=":   cmp(func(a, b float64) bool { return a >= b }),
	"=":    eqOp(true),
	"not=": eqOp(false),
	"str": func(args []store.Value) (store.Value, error) {
		s := ""
		for _, a := range args {
			s += fmt.Sprintf("%v", a)
		}
		return s, nil
	},
}

func toFloat(v store.Value) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return float64(n), true
	default:
		return 0, false
	}
}

func arith(f func(a, b float64) float64) func([]store.Value) (store.Value, error) {
	return func(args []store.Value) (store.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("arithmetic op wants 2 args, got %d", len(args))
		}
		a, ok1 := toFloat(args[0])
		b, ok2 := toFloat(args[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("arithmetic op on non-numeric operands")
		}
		return f(a, b), nil
	}
}

func cmp(f func(a, b float64) bool) func([]store.Value) (store.Value, error) {
	return func(args []store.Value) (store.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("comparison op wants 2 args, got %d", len(args))
		}
		a, ok1 := toFloat(args[0])
		b, ok2 := toFloat(args[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("comparison op on non-numeric operands")
		}
		return f(a, b), nil
	}
}

func eqOp(want bool) func([]store.Value) (store.Value, error) {
	return func(args []store.Value) (store.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("equality op wants 2 args, got %d", len(args))
		}
		return (args[0] == args[1]) == want, nil
	}
}

// Eval evaluates expr under row's bindings, consulting env only for
// operators not found in the built-in safelist. An App whose operator
// resolves nowhere fails with dberr.UnsupportedOperation, per spec's
// sandbox requirement.
func Eval(expr Expr, row map[Variable]store.Value, env Env) (store.Value, error) {
	switch e := expr.(type) {
	case Lit:
		return e.Value, nil
	case VarRef:
		v, ok := row[e.Name]
		if !ok {
			return nil, fmt.Errorf("unbound variable %s in expression", e.Name)
		}
		return v, nil
	case App:
		args := make([]store.Value, len(e.Args))
		for i, a := range e.Args {
			v, err := Eval(a, row, env)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		if fn, ok := builtins[e.Op]; ok {
			return fn(args)
		}
		if env != nil {
			if fn, ok := env[e.Op]; ok {
				return fn(args)
			}
		}
		return nil, dberr.UnsupportedOperation(e.Op)
	default:
		return nil, fmt.Errorf("unknown expression node %T", expr)
	}
}

// Truthy mirrors the language's notion of falsy: nil and boolean false
// are falsy, everything else (including zero and empty string) is
// truthy, matching Datalog-family query languages rather than C's
// zero-is-false convention.
func Truthy(v store.Value) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}
