package predicates

import "github.com/zefrenchwan/docfilters.git/nodes"

// ParameterResolver finds a parameter on an element.
// Resolvers are tried in sequence, the first one finding the parameter wins.
type ParameterResolver interface {
	Resolve(e nodes.Element, name string) (nodes.Parameter, bool)
}

// ResolverFunc adapts a function to a resolver
type ResolverFunc func(e nodes.Element, name string) (nodes.Parameter, bool)

// Resolve calls the function
func (f ResolverFunc) Resolve(e nodes.Element, name string) (nodes.Parameter, bool) {
	return f(e, name)
}

// BuiltInResolver finds built-in parameters (phases, name, mark, comments)
var BuiltInResolver = ResolverFunc(func(e nodes.Element, name string) (nodes.Parameter, bool) {
	return e.BuiltInParameter(name)
})

// InstanceResolver finds user parameters by name
var InstanceResolver = ResolverFunc(func(e nodes.Element, name string) (nodes.Parameter, bool) {
	return e.Parameter(name)
})

// TypeResolver finds parameters of the element type by name
var TypeResolver = ResolverFunc(func(e nodes.Element, name string) (nodes.Parameter, bool) {
	return e.TypeParameter(name)
})

// DefaultResolvers returns built-in, then instance, then type resolvers
func DefaultResolvers() []ParameterResolver {
	return []ParameterResolver{BuiltInResolver, InstanceResolver, TypeResolver}
}

// Resolve returns the first parameter found by resolvers, in order
func Resolve(resolvers []ParameterResolver, e nodes.Element, name string) (nodes.Parameter, bool) {
	for _, resolver := range resolvers {
		if resolver == nil {
			continue
		} else if p, found := resolver.Resolve(e, name); found {
			return p, true
		}
	}

	return nodes.Parameter{}, false
}
