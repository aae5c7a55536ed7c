package domain

import "fmt"

// Method is a service method name.
type Method string

const (
	MethodFind   Method = "find"
	MethodGet    Method = "get"
	MethodCreate Method = "create"
	MethodUpdate Method = "update"
	MethodPatch  Method = "patch"
	MethodRemove Method = "remove"

	// MethodAll registers hooks that run for every method.
	MethodAll Method = "all"
)

// Methods lists the dispatchable service methods in declaration order.
var Methods = []Method{MethodFind, MethodGet, MethodCreate, MethodUpdate, MethodPatch, MethodRemove}

// ParseMethod validates a method name. "all" is not a dispatchable method and
// is rejected.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown service method %q", s)
}

// Phase is a lifecycle phase relative to the core service call.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
	PhaseError  Phase = "error"
)

// Params carries query parameters for a service call.
type Params map[string]string

// HookContext is the mutable per-request object threaded through a hook chain.
// The runtime owns the pointer; hooks mutate it in place.
type HookContext struct {
	// Path identifies the service, e.g. "vaccine-proof".
	Path string
	// Method is the service method being called.
	Method Method
	// Phase is the lifecycle phase currently executing.
	Phase Phase
	// ID is the target record id for get, update, patch and remove.
	ID string
	// Data is the request payload for create, update and patch.
	Data map[string]any
	// Params holds query parameters.
	Params Params
	// Result holds the core call result. A before hook that sets it skips the
	// core call.
	Result any
	// Error is only set while the error phase runs.
	Error error
}

// String renders the context for log lines.
func (hc *HookContext) String() string {
	if hc.ID != "" {
		return fmt.Sprintf("%s %s %s/%s", hc.Phase, hc.Method, hc.Path, hc.ID)
	}
	return fmt.Sprintf("%s %s %s", hc.Phase, hc.Method, hc.Path)
}
