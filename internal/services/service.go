// Package services binds resources to hook tables and dispatches method
// calls through the hook executor.
package services

import (
	"context"
	"fmt"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
	"github.com/tjfontaine/vaccine-proof-api/internal/hooks"
)

// Service is a resource mounted at a path with its hooks.
type Service struct {
	path     string
	resource ports.Resource
	executor *hooks.Executor
}

// New creates a service. Hooks are copied out of reg.
func New(path string, resource ports.Resource, reg hooks.Registration, opts ...hooks.ExecutorOption) *Service {
	return &Service{
		path:     path,
		resource: resource,
		executor: hooks.NewExecutor(hooks.New(reg), opts...),
	}
}

// Path returns the mount path.
func (s *Service) Path() string {
	return s.path
}

// Hooks returns the service's hook table.
func (s *Service) Hooks() *hooks.Table {
	return s.executor.Table()
}

func (s *Service) newContext(method domain.Method, id string, data map[string]any, params domain.Params) *domain.HookContext {
	if params == nil {
		params = domain.Params{}
	}
	return &domain.HookContext{
		Path:   s.path,
		Method: method,
		ID:     id,
		Data:   data,
		Params: params,
	}
}

func (s *Service) run(ctx context.Context, hc *domain.HookContext) (any, error) {
	hc, err := s.executor.Run(ctx, hc, s.core)
	if err != nil {
		return nil, err
	}
	return hc.Result, nil
}

// core dispatches to the resource. Hooks may have rewritten ID, Data and
// Params, so they are read from hc.
func (s *Service) core(ctx context.Context, hc *domain.HookContext) (any, error) {
	switch hc.Method {
	case domain.MethodFind:
		return s.resource.Find(ctx, hc.Params)
	case domain.MethodGet:
		return s.resource.Get(ctx, hc.ID, hc.Params)
	case domain.MethodCreate:
		return s.resource.Create(ctx, hc.Data, hc.Params)
	case domain.MethodUpdate:
		return s.resource.Update(ctx, hc.ID, hc.Data, hc.Params)
	case domain.MethodPatch:
		return s.resource.Patch(ctx, hc.ID, hc.Data, hc.Params)
	case domain.MethodRemove:
		return s.resource.Remove(ctx, hc.ID, hc.Params)
	default:
		return nil, domain.ErrMethodNotAllowed(fmt.Sprintf("method %q is not supported", hc.Method))
	}
}

// Call dispatches method by name. It is used by transports that route on
// method strings.
func (s *Service) Call(ctx context.Context, method domain.Method, id string, data map[string]any, params domain.Params) (any, error) {
	if _, err := domain.ParseMethod(string(method)); err != nil {
		return nil, domain.ErrMethodNotAllowed(err.Error())
	}
	return s.run(ctx, s.newContext(method, id, data, params))
}

func (s *Service) Find(ctx context.Context, params domain.Params) (any, error) {
	return s.run(ctx, s.newContext(domain.MethodFind, "", nil, params))
}

func (s *Service) Get(ctx context.Context, id string, params domain.Params) (any, error) {
	return s.run(ctx, s.newContext(domain.MethodGet, id, nil, params))
}

func (s *Service) Create(ctx context.Context, data map[string]any, params domain.Params) (any, error) {
	return s.run(ctx, s.newContext(domain.MethodCreate, "", data, params))
}

func (s *Service) Update(ctx context.Context, id string, data map[string]any, params domain.Params) (any, error) {
	return s.run(ctx, s.newContext(domain.MethodUpdate, id, data, params))
}

func (s *Service) Patch(ctx context.Context, id string, data map[string]any, params domain.Params) (any, error) {
	return s.run(ctx, s.newContext(domain.MethodPatch, id, data, params))
}

func (s *Service) Remove(ctx context.Context, id string, params domain.Params) (any, error) {
	return s.run(ctx, s.newContext(domain.MethodRemove, id, nil, params))
}

var _ ports.Resource = (*Service)(nil)
