// Package vaccineproof is the vaccine-proof service: its hook bindings and the
// core resource over the proof store.
package vaccineproof

import (
	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
	"github.com/tjfontaine/vaccine-proof-api/internal/hooks"
	"github.com/tjfontaine/vaccine-proof-api/internal/revocation"
)

// Path is the mount path of the service.
const Path = "vaccine-proof"

// Hooks returns the hook registration of the vaccine-proof service. Updates
// and patches are checked for revocation first; every failure is logged once
// by errorLogger.
func Hooks(checker ports.RevocationChecker, errorLogger ports.Hook, opts ...revocation.HookOption) hooks.Registration {
	checkRevocation := revocation.HandleRevocation(checker, opts...)

	return hooks.Registration{
		Before: hooks.Map{
			domain.MethodAll:    {},
			domain.MethodCreate: {},
			domain.MethodUpdate: {checkRevocation},
			domain.MethodPatch:  {checkRevocation},
		},
		After: hooks.Map{
			domain.MethodAll:    {},
			domain.MethodCreate: {},
		},
		Error: hooks.Map{
			domain.MethodAll:    {errorLogger},
			domain.MethodCreate: {},
		},
	}
}
