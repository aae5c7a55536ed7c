package hooks

import (
	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
)

// Map associates methods (or domain.MethodAll) with ordered hooks.
type Map map[domain.Method][]ports.Hook

// Registration is the declarative hook configuration of one service.
type Registration struct {
	Before Map
	After  Map
	Error  Map
}

// Table holds the hooks registered for one service. It is built at startup;
// lookups never modify it.
type Table struct {
	phases map[domain.Phase]Map
}

// New creates a table from a registration. The hook slices are copied, so
// later changes to reg do not leak into the table.
func New(reg Registration) *Table {
	t := &Table{
		phases: map[domain.Phase]Map{
			domain.PhaseBefore: {},
			domain.PhaseAfter:  {},
			domain.PhaseError:  {},
		},
	}
	for phase, m := range map[domain.Phase]Map{
		domain.PhaseBefore: reg.Before,
		domain.PhaseAfter:  reg.After,
		domain.PhaseError:  reg.Error,
	} {
		for method, hooks := range m {
			t.Register(phase, method, hooks...)
		}
	}
	return t
}

// Register appends hooks to the (phase, method) entry. Nil hooks are skipped.
// It must not be called concurrently with Lookup.
func (t *Table) Register(phase domain.Phase, method domain.Method, hooks ...ports.Hook) {
	m, ok := t.phases[phase]
	if !ok {
		m = Map{}
		t.phases[phase] = m
	}
	entry := m[method]
	for _, h := range hooks {
		if h != nil {
			entry = append(entry, h)
		}
	}
	m[method] = entry
}

// Lookup returns the hooks to run for (phase, method): the "all" hooks
// followed by the method-specific ones. The returned slice is a fresh copy.
func (t *Table) Lookup(phase domain.Phase, method domain.Method) []ports.Hook {
	m := t.phases[phase]
	all := m[domain.MethodAll]
	if method == domain.MethodAll {
		return append([]ports.Hook(nil), all...)
	}
	specific := m[method]

	hooks := make([]ports.Hook, 0, len(all)+len(specific))
	hooks = append(hooks, all...)
	hooks = append(hooks, specific...)
	return hooks
}

// Len returns the number of hooks Lookup would return for (phase, method).
func (t *Table) Len(phase domain.Phase, method domain.Method) int {
	m := t.phases[phase]
	if method == domain.MethodAll {
		return len(m[domain.MethodAll])
	}
	return len(m[domain.MethodAll]) + len(m[method])
}
