package dirindex

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knetic/govaluate"
)

// Filter is a boolean expression over an entry, for example
// `ext == '.pdf' && size > 1048576` or `dir || age_days < 7`.
//
// Variables: name, ext (lower case, with the dot), size (bytes, 0 for
// directories), dir (bool) and age_days (days since modification).
type Filter struct {
	source string
	expr   *govaluate.EvaluableExpression
}

var filterFunctions = map[string]govaluate.ExpressionFunction{
	"lower": func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("lower() takes one argument")
		}
		return strings.ToLower(fmt.Sprint(args[0])), nil
	},
	"contains": func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("contains() takes two arguments")
		}
		return strings.Contains(fmt.Sprint(args[0]), fmt.Sprint(args[1])), nil
	},
}

// ParseFilter compiles expr. An empty expression yields a nil filter.
func ParseFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, filterFunctions)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}
	return &Filter{source: expr, expr: e}, nil
}

func (f *Filter) String() string { return f.source }

// Match evaluates the filter for e, with ages measured against now.
func (f *Filter) Match(e Entry, now time.Time) (bool, error) {
	age := 0.0
	if !e.ModTime.IsZero() {
		age = now.Sub(e.ModTime).Hours() / 24
	}
	params := map[string]any{
		"name":     e.Name,
		"ext":      strings.ToLower(filepath.Ext(e.Name)),
		"size":     float64(e.Size),
		"dir":      e.IsDir,
		"age_days": age,
	}

	res, err := f.expr.Evaluate(params)
	if err != nil {
		return false, fmt.Errorf("filter %q on %s: %w", f.source, e.Name, err)
	}
	ok, isBool := res.(bool)
	if !isBool {
		return false, fmt.Errorf("filter %q does not yield a boolean (got %v)", f.source, res)
	}
	return ok, nil
}
