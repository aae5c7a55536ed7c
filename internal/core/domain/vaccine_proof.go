package domain

import "time"

// ProofStatus is the lifecycle status of a vaccine proof.
type ProofStatus string

const (
	ProofActive  ProofStatus = "active"
	ProofRevoked ProofStatus = "revoked"
)

// VaccineProof is a stored proof of vaccination.
type VaccineProof struct {
	ID               string      `json:"id" mapstructure:"id"`
	HolderName       string      `json:"holder_name" mapstructure:"holder_name"`
	HolderBirthDate  string      `json:"holder_birth_date,omitempty" mapstructure:"holder_birth_date"`
	VaccineCode      string      `json:"vaccine_code" mapstructure:"vaccine_code"`
	DoseNumber       int         `json:"dose_number" mapstructure:"dose_number"`
	AdministeredAt   time.Time   `json:"administered_at" mapstructure:"administered_at"`
	Issuer           string      `json:"issuer" mapstructure:"issuer"`
	Status           ProofStatus `json:"status" mapstructure:"status"`
	RevokedAt        *time.Time  `json:"revoked_at,omitempty" mapstructure:"revoked_at"`
	RevocationReason string      `json:"revocation_reason,omitempty" mapstructure:"revocation_reason"`
	CreatedAt        time.Time   `json:"created_at" mapstructure:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" mapstructure:"updated_at"`
}

// IsRevoked reports whether the proof has been revoked.
func (p *VaccineProof) IsRevoked() bool {
	return p.Status == ProofRevoked
}

// RevocationStatus is the answer of a revocation source for one proof.
type RevocationStatus struct {
	ID        string     `json:"id"`
	Revoked   bool       `json:"revoked"`
	Reason    string     `json:"reason,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// ProofListOptions filters a proof listing.
type ProofListOptions struct {
	Status     ProofStatus
	HolderName string
	Issuer     string
	Limit      int
	Offset     int
}
