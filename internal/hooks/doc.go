// Package hooks provides the hook registration table and the executor that
// runs hook chains around a service method.
//
// # Registration
//
// Hooks are declared per lifecycle phase and per method as plain data:
//
//	hooks.Registration{
//	    Before: hooks.Map{
//	        domain.MethodAll:    {},
//	        domain.MethodUpdate: {checkRevocation},
//	        domain.MethodPatch:  {checkRevocation},
//	    },
//	    Error: hooks.Map{
//	        domain.MethodAll: {hooks.ErrorLogger(logger)},
//	    },
//	}
//
// A lookup for (phase, method) yields the "all" hooks followed by the
// method-specific hooks. Methods without an entry only get the "all" hooks.
//
// # Execution
//
// For each call the executor runs:
//   - before hooks, in order; a hook that sets Result skips the core call
//   - the core method
//   - after hooks, in order
//
// The first failure stops the chain. The failure is stored on the context
// unmodified and the error hooks for the method run. An error hook that
// returns an error replaces the context error; one that clears it recovers
// the call.
package hooks
