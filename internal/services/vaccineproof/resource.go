package vaccineproof

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
	"github.com/tjfontaine/vaccine-proof-api/internal/revocation"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Resource implements the core vaccine-proof methods over a proof store.
type Resource struct {
	store ports.ProofStore
	now   func() time.Time
	newID func() string
}

// ResourceOption configures a Resource.
type ResourceOption func(*Resource)

// WithClock sets the clock used for revocation timestamps.
func WithClock(now func() time.Time) ResourceOption {
	return func(r *Resource) { r.now = now }
}

// WithIDGenerator sets the id generator for new proofs.
func WithIDGenerator(newID func() string) ResourceOption {
	return func(r *Resource) { r.newID = newID }
}

// NewResource creates a resource backed by store.
func NewResource(store ports.ProofStore, opts ...ResourceOption) *Resource {
	r := &Resource{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Find lists proofs filtered by the status, holder_name and issuer params,
// paged by limit and offset.
func (r *Resource) Find(ctx context.Context, params domain.Params) (any, error) {
	opts := domain.ProofListOptions{
		Status:     domain.ProofStatus(params["status"]),
		HolderName: params["holder_name"],
		Issuer:     params["issuer"],
	}
	if opts.Status != "" && !validStatus(opts.Status) {
		return nil, invalidField("status", fmt.Sprintf("unknown status %q", opts.Status))
	}

	var err error
	if opts.Limit, err = intParam(params, "limit", defaultListLimit); err != nil {
		return nil, err
	}
	if opts.Limit > maxListLimit {
		opts.Limit = maxListLimit
	}
	if opts.Offset, err = intParam(params, "offset", 0); err != nil {
		return nil, err
	}

	proofs, err := r.store.ListProofs(ctx, opts)
	if err != nil {
		return nil, err
	}
	if proofs == nil {
		proofs = []*domain.VaccineProof{}
	}
	return proofs, nil
}

func (r *Resource) Get(ctx context.Context, id string, params domain.Params) (any, error) {
	return r.store.GetProof(ctx, id)
}

// Create stores a new active proof with a fresh id.
func (r *Resource) Create(ctx context.Context, data map[string]any, params domain.Params) (any, error) {
	var proof domain.VaccineProof
	if err := decode(data, &proof); err != nil {
		return nil, err
	}
	if proof.Status != "" && proof.Status != domain.ProofActive {
		return nil, invalidField("status", "new vaccine proofs must be active")
	}

	proof.ID = r.newID()
	proof.Status = domain.ProofActive
	proof.RevokedAt = nil
	proof.RevocationReason = ""
	proof.CreatedAt = time.Time{}

	if err := validate(&proof); err != nil {
		return nil, err
	}
	if err := r.store.CreateProof(ctx, &proof); err != nil {
		return nil, err
	}
	return &proof, nil
}

// Update replaces the mutable fields of a proof. An omitted status keeps the
// current one.
func (r *Resource) Update(ctx context.Context, id string, data map[string]any, params domain.Params) (any, error) {
	current, err := r.store.GetProof(ctx, id)
	if err != nil {
		return nil, err
	}

	var next domain.VaccineProof
	if err := decode(data, &next); err != nil {
		return nil, err
	}
	if next.Status == "" {
		next.Status = current.Status
	}

	return r.save(ctx, current, &next)
}

// Patch merges the provided keys into a proof.
func (r *Resource) Patch(ctx context.Context, id string, data map[string]any, params domain.Params) (any, error) {
	current, err := r.store.GetProof(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	if err := decode(data, &next); err != nil {
		return nil, err
	}

	return r.save(ctx, current, &next)
}

// Remove deletes a proof and returns it.
func (r *Resource) Remove(ctx context.Context, id string, params domain.Params) (any, error) {
	proof, err := r.store.GetProof(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.store.DeleteProof(ctx, id); err != nil {
		return nil, err
	}
	return proof, nil
}

// save checks the status transition from current to next and persists next.
// Identity and creation time always come from current.
func (r *Resource) save(ctx context.Context, current, next *domain.VaccineProof) (*domain.VaccineProof, error) {
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt

	if err := transition(current, next, r.now); err != nil {
		return nil, err
	}
	if err := validate(next); err != nil {
		return nil, err
	}
	if err := r.store.SaveProof(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// transition allows active→revoked and rejects revoked→active. A revoked
// result always carries revoked_at and a reason.
func transition(current, next *domain.VaccineProof, now func() time.Time) error {
	if !validStatus(next.Status) {
		return invalidField("status", fmt.Sprintf("unknown status %q", next.Status))
	}

	switch {
	case current.IsRevoked() && !next.IsRevoked():
		return domain.ErrConflict(fmt.Sprintf("vaccine proof %s is revoked and cannot be reactivated", current.ID)).
			WithCode(domain.ErrorCodeInvalidTransition)
	case current.IsRevoked():
		next.RevokedAt = current.RevokedAt
		next.RevocationReason = current.RevocationReason
	case next.IsRevoked():
		if next.RevokedAt == nil {
			t := now().UTC()
			next.RevokedAt = &t
		}
		if next.RevocationReason == "" {
			next.RevocationReason = revocation.DefaultReason
		}
	default:
		next.RevokedAt = nil
		next.RevocationReason = ""
	}
	return nil
}

func validStatus(s domain.ProofStatus) bool {
	return s == domain.ProofActive || s == domain.ProofRevoked
}

func validate(p *domain.VaccineProof) error {
	switch {
	case p.HolderName == "":
		return invalidField("holder_name", "holder_name is required")
	case p.VaccineCode == "":
		return invalidField("vaccine_code", "vaccine_code is required")
	case p.Issuer == "":
		return invalidField("issuer", "issuer is required")
	case p.DoseNumber < 1:
		return invalidField("dose_number", "dose_number must be at least 1")
	}
	return nil
}

func invalidField(field, message string) error {
	return domain.ErrInvalidRequest(message).
		WithCode(domain.ErrorCodeValidation).
		WithParam(field)
}

// decode copies the keys of data into out. Keys absent from data leave out
// untouched. Timestamps may be RFC 3339 strings or time values.
func decode(data map[string]any, out *domain.VaccineProof) error {
	var fractional bool
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			wholeNumberHook(&fractional),
		),
		Result: out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(data); err != nil {
		// dose_number is the only integer field of a proof.
		if fractional {
			return invalidField("dose_number", "dose_number must be a whole number")
		}
		return domain.ErrInvalidRequest(fmt.Sprintf("invalid vaccine proof payload: %v", err)).
			WithCode(domain.ErrorCodeUnsupportedPayload)
	}
	return nil
}

// wholeNumberHook refuses to truncate JSON numbers with a fractional part
// into integer fields.
func wholeNumberHook(fractional *bool) mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		default:
			return data, nil
		}
		var f float64
		switch v := data.(type) {
		case float64:
			f = v
		case float32:
			f = float64(v)
		default:
			return data, nil
		}
		if f != math.Trunc(f) {
			*fractional = true
			return nil, fmt.Errorf("%v is not a whole number", f)
		}
		return data, nil
	}
}

func intParam(params domain.Params, name string, def int) (int, error) {
	raw, ok := params[name]
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, invalidField(name, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return n, nil
}

var _ ports.Resource = (*Resource)(nil)
