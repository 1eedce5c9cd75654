package predicates

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

// Predicate is a pure boolean function of an element snapshot.
// Predicates are immutable once built, use the constructors of this package.
type Predicate interface {
	// String describes the predicate for logs and reports
	String() string
	// evaluate applies the predicate using given resolvers
	evaluate(resolvers []ParameterResolver, e nodes.Element) bool
	// parameters appends names of the parameters the predicate reads
	parameters(names []string) []string
}

// Evaluator evaluates predicates with an explicit list of resolvers
type Evaluator struct {
	resolvers []ParameterResolver
}

// NewEvaluator uses resolvers in order, or DefaultResolvers if none
func NewEvaluator(resolvers ...ParameterResolver) Evaluator {
	if len(resolvers) == 0 {
		return Evaluator{resolvers: DefaultResolvers()}
	}

	return Evaluator{resolvers: slices.Clone(resolvers)}
}

// Evaluate returns the value of p for e. Nil predicate matches nothing
func (ev Evaluator) Evaluate(p Predicate, e nodes.Element) bool {
	if p == nil {
		return false
	}

	resolvers := ev.resolvers
	if len(resolvers) == 0 {
		resolvers = DefaultResolvers()
	}

	return p.evaluate(resolvers, e)
}

// Evaluate returns the value of p for e with the default resolvers
func Evaluate(p Predicate, e nodes.Element) bool {
	return NewEvaluator().Evaluate(p, e)
}

// ReferencedParameters returns the sorted distinct names of parameters p reads
func ReferencedParameters(p Predicate) []string {
	if p == nil {
		return nil
	}

	names := p.parameters(nil)
	slices.Sort(names)
	return slices.Compact(names)
}

///////////////////////////////////////////////
// LEAVES
///////////////////////////////////////////////

type categoryIs struct {
	category nodes.CategoryId
}

// CategoryIs matches elements of that category
func CategoryIs(category nodes.CategoryId) Predicate {
	return categoryIs{category: category}
}

func (c categoryIs) String() string {
	return fmt.Sprintf("category = %d", c.category)
}

func (c categoryIs) evaluate(_ []ParameterResolver, e nodes.Element) bool {
	return e.Category == c.category
}

func (c categoryIs) parameters(names []string) []string {
	return names
}

type parameterEquals struct {
	name          string
	value         nodes.Value
	caseSensitive bool
}

// ParameterEquals matches elements whose parameter has that value.
// Parameter and value must share the same storage kind.
func ParameterEquals(name string, value nodes.Value, caseSensitive bool) Predicate {
	return parameterEquals{name: name, value: value, caseSensitive: caseSensitive}
}

func (p parameterEquals) String() string {
	return fmt.Sprintf("%s = %q", p.name, p.value.String())
}

func (p parameterEquals) evaluate(resolvers []ParameterResolver, e nodes.Element) bool {
	parameter, found := Resolve(resolvers, e, p.name)
	if !found || !parameter.HasValue || parameter.Kind != p.value.Kind() {
		return false
	}

	if text, isText := parameter.Value.AsString(); isText && !p.caseSensitive {
		expected, _ := p.value.AsString()
		return strings.ToLower(text) == strings.ToLower(expected)
	}

	return parameter.Value.Equals(p.value)
}

func (p parameterEquals) parameters(names []string) []string {
	return append(names, p.name)
}

// textLeaf is a string test on a string parameter
type textLeaf struct {
	name          string
	operand       string
	caseSensitive bool
	label         string
	test          func(value, operand string) bool
}

func (t textLeaf) String() string {
	return fmt.Sprintf("%s %s %q", t.name, t.label, t.operand)
}

func (t textLeaf) evaluate(resolvers []ParameterResolver, e nodes.Element) bool {
	parameter, found := Resolve(resolvers, e, t.name)
	if !found || !parameter.HasValue {
		return false
	}

	text, isText := parameter.Value.AsString()
	if !isText {
		return false
	}

	operand := t.operand
	if !t.caseSensitive {
		text = strings.ToLower(text)
		operand = strings.ToLower(operand)
	}

	return t.test(text, operand)
}

func (t textLeaf) parameters(names []string) []string {
	return append(names, t.name)
}

// ParameterContains matches string parameters containing substring
func ParameterContains(name, substring string, caseSensitive bool) Predicate {
	return textLeaf{name: name, operand: substring, caseSensitive: caseSensitive, label: "contains", test: strings.Contains}
}

// ParameterBeginsWith matches string parameters starting with prefix
func ParameterBeginsWith(name, prefix string, caseSensitive bool) Predicate {
	return textLeaf{name: name, operand: prefix, caseSensitive: caseSensitive, label: "begins with", test: strings.HasPrefix}
}

type numericCompare struct {
	name     string
	operator Operator
	value    float64
	epsilon  float64
}

// NumericCompare matches double or integer parameters, == uses DefaultEpsilon
func NumericCompare(name string, operator Operator, value float64) Predicate {
	return NumericCompareWithin(name, operator, value, nodes.DefaultEpsilon)
}

// NumericCompareWithin is NumericCompare with an explicit epsilon
func NumericCompareWithin(name string, operator Operator, value, epsilon float64) Predicate {
	if epsilon < 0 {
		epsilon = -epsilon
	}

	return numericCompare{name: name, operator: operator, value: value, epsilon: epsilon}
}

func (n numericCompare) String() string {
	return fmt.Sprintf("%s %s %g", n.name, n.operator, n.value)
}

func (n numericCompare) evaluate(resolvers []ParameterResolver, e nodes.Element) bool {
	parameter, found := Resolve(resolvers, e, n.name)
	if !found || !parameter.HasValue {
		return false
	}

	number, isNumber := parameter.Value.AsDouble()
	if !isNumber {
		return false
	} else if math.IsNaN(number) || math.IsNaN(n.value) {
		// NaN is not ordered
		return false
	}

	return n.operator.accepts(FloatComparator(n.epsilon)(number, n.value))
}

func (n numericCompare) parameters(names []string) []string {
	return append(names, n.name)
}

type parameterPresence struct {
	name      string
	wantEmpty bool
}

// ParameterExists matches elements having that parameter with a value
func ParameterExists(name string) Predicate {
	return parameterPresence{name: name}
}

// ParameterIsEmpty matches elements having that parameter with no value or a blank string
func ParameterIsEmpty(name string) Predicate {
	return parameterPresence{name: name, wantEmpty: true}
}

func (p parameterPresence) String() string {
	if p.wantEmpty {
		return p.name + " is empty"
	}

	return p.name + " has a value"
}

func (p parameterPresence) evaluate(resolvers []ParameterResolver, e nodes.Element) bool {
	parameter, found := Resolve(resolvers, e, p.name)
	if !found {
		return false
	} else if p.wantEmpty {
		return parameter.IsEmpty()
	}

	return !parameter.IsEmpty()
}

func (p parameterPresence) parameters(names []string) []string {
	return append(names, p.name)
}

///////////////////////////////////////////////
// COMBINATORS
///////////////////////////////////////////////

type and struct {
	operands []Predicate
}

// And is true if all operands are. And() is true
func And(operands ...Predicate) Predicate {
	return and{operands: slices.Clone(operands)}
}

func (a and) String() string {
	return joinOperands("AND", a.operands)
}

func (a and) evaluate(resolvers []ParameterResolver, e nodes.Element) bool {
	for _, operand := range a.operands {
		if operand == nil || !operand.evaluate(resolvers, e) {
			return false
		}
	}

	return true
}

func (a and) parameters(names []string) []string {
	for _, operand := range a.operands {
		if operand != nil {
			names = operand.parameters(names)
		}
	}

	return names
}

type or struct {
	operands []Predicate
}

// Or is true if at least one operand is. Or() is false
func Or(operands ...Predicate) Predicate {
	return or{operands: slices.Clone(operands)}
}

func (o or) String() string {
	return joinOperands("OR", o.operands)
}

func (o or) evaluate(resolvers []ParameterResolver, e nodes.Element) bool {
	for _, operand := range o.operands {
		if operand != nil && operand.evaluate(resolvers, e) {
			return true
		}
	}

	return false
}

func (o or) parameters(names []string) []string {
	for _, operand := range o.operands {
		if operand != nil {
			names = operand.parameters(names)
		}
	}

	return names
}

type not struct {
	operand Predicate
}

// Not inverts operand. Not(nil) is true, since nil matches nothing
func Not(operand Predicate) Predicate {
	return not{operand: operand}
}

func (n not) String() string {
	if n.operand == nil {
		return "NOT ()"
	}

	return "NOT (" + n.operand.String() + ")"
}

func (n not) evaluate(resolvers []ParameterResolver, e nodes.Element) bool {
	return n.operand == nil || !n.operand.evaluate(resolvers, e)
}

func (n not) parameters(names []string) []string {
	if n.operand == nil {
		return names
	}

	return n.operand.parameters(names)
}

func joinOperands(operator string, operands []Predicate) string {
	values := make([]string, 0, len(operands))
	for _, operand := range operands {
		if operand != nil {
			values = append(values, "("+operand.String()+")")
		}
	}

	if len(values) == 0 {
		return operator + " ()"
	}

	return strings.Join(values, " "+operator+" ")
}
