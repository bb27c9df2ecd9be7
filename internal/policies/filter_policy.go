// Package policies holds catalog-wide decision tables that must stay
// in lockstep with upstream API capabilities.
package policies

import "calunga-catalog/internal/types"

// FilterPolicy decides which request filters the upstream API can
// evaluate and which must be applied client-side on the accumulated
// working set. The table mirrors the field lookups the Pulp python
// content endpoint actually supports; callers must not assume the
// serializer covers every filter.
type FilterPolicy struct {
	serverSide map[string]map[types.FilterOp]struct{}
}

// NewPulpFilterPolicy returns the policy for the Pulp backend.
// Name substring, license, and classifier matching are not supported
// upstream and stay client-side.
func NewPulpFilterPolicy() FilterPolicy {
	return FilterPolicy{
		serverSide: map[string]map[types.FilterOp]struct{}{
			"name": {
				types.FilterOpEqual:    {},
				types.FilterOpNotEqual: {},
				types.FilterOpIn:       {},
			},
			"version": {
				types.FilterOpEqual:    {},
				types.FilterOpNotEqual: {},
				types.FilterOpGt:       {},
				types.FilterOpGte:      {},
				types.FilterOpLt:       {},
				types.FilterOpLte:      {},
			},
			"filename": {
				types.FilterOpEqual: {},
			},
		},
	}
}

// ServerSide reports whether the upstream can evaluate the filter.
func (p FilterPolicy) ServerSide(filter types.Filter) bool {
	ops, ok := p.serverSide[filter.Field]
	if !ok {
		return false
	}
	_, ok = ops[filter.Op]
	return ok
}

// Split partitions filters into the upstream-evaluable set and the
// residual set for client-side application. Order is preserved.
func (p FilterPolicy) Split(filters []types.Filter) (server []types.Filter, residual []types.Filter) {
	for _, filter := range filters {
		if p.ServerSide(filter) {
			server = append(server, filter)
		} else {
			residual = append(residual, filter)
		}
	}
	return server, residual
}
