package domain

// Role represents user role in the system
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAgent    Role = "AGENT"
	RoleAdmin    Role = "ADMIN"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAgent || r == RoleAdmin
}

// OfferStatus represents the review state of a coverage offer
type OfferStatus string

const (
	OfferPending  OfferStatus = "PENDING"
	OfferApproved OfferStatus = "APPROVED"
	OfferRejected OfferStatus = "REJECTED"
	OfferExpired  OfferStatus = "EXPIRED"
)

// offerTransitions is the closed transition table for offer review states.
// PENDING is the only non-terminal state; the customerApproved flag is
// orthogonal and one-way (see OfferService).
var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferPending:  {OfferApproved, OfferRejected, OfferExpired},
	OfferApproved: {},
	OfferRejected: {},
	OfferExpired:  {},
}

// IsValid reports whether s is a known offer status.
func (s OfferStatus) IsValid() bool {
	_, ok := offerTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	for _, t := range offerTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// ClaimStatus represents the resolution state of a claim
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "PENDING"
	ClaimApproved ClaimStatus = "APPROVED"
	ClaimRejected ClaimStatus = "REJECTED"
)

// IsValid reports whether s is a known claim status.
func (s ClaimStatus) IsValid() bool {
	return s == ClaimPending || s == ClaimApproved || s == ClaimRejected
}

// IsTerminal reports whether a claim in this state is closed to the holder.
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimApproved || s == ClaimRejected
}

// CoverageTier is the percentage uplift applied to the base price.
// Only three tiers are sold: basic (0%), extended (25%) and premium (40%).
type CoverageTier int

const (
	TierBasic    CoverageTier = 0
	TierExtended CoverageTier = 25
	TierPremium  CoverageTier = 40
)

// IsValid reports whether t is one of the sold tiers.
func (t CoverageTier) IsValid() bool {
	return t == TierBasic || t == TierExtended || t == TierPremium
}

// CoverageType identifies one of the six coverage products.
type CoverageType string

const (
	CoverageProperty  CoverageType = "PROPERTY"
	CoverageVehicle   CoverageType = "VEHICLE"
	CoverageTravel    CoverageType = "TRAVEL"
	CoverageHealth    CoverageType = "HEALTH"
	CoverageLife      CoverageType = "LIFE"
	CoverageLiability CoverageType = "LIABILITY"
)

// coverageInfo carries the static per-type attributes: the department that
// underwrites it and the default policy term applied at issuance.
type coverageInfo struct {
	Department string
	TermMonths int
}

var coverageTypes = map[CoverageType]coverageInfo{
	CoverageProperty:  {Department: "Property & Casualty", TermMonths: 12},
	CoverageVehicle:   {Department: "Motor", TermMonths: 12},
	CoverageTravel:    {Department: "Travel", TermMonths: 1},
	CoverageHealth:    {Department: "Health", TermMonths: 12},
	CoverageLife:      {Department: "Life", TermMonths: 120},
	CoverageLiability: {Department: "Commercial Lines", TermMonths: 12},
}

// AllCoverageTypes returns the closed set of coverage types in a fixed order.
func AllCoverageTypes() []CoverageType {
	return []CoverageType{
		CoverageProperty,
		CoverageVehicle,
		CoverageTravel,
		CoverageHealth,
		CoverageLife,
		CoverageLiability,
	}
}

// IsValid reports whether t is a defined coverage type.
func (t CoverageType) IsValid() bool {
	_, ok := coverageTypes[t]
	return ok
}

// Department returns the underwriting department label for the type.
func (t CoverageType) Department() string {
	return coverageTypes[t].Department
}

// TermMonths returns the default policy term for the type.
func (t CoverageType) TermMonths() int {
	return coverageTypes[t].TermMonths
}

// DocumentOwner identifies which aggregate an uploaded document belongs to.
type DocumentOwner string

const (
	OwnerCustomer DocumentOwner = "CUSTOMER"
	OwnerOffer    DocumentOwner = "OFFER"
	OwnerClaim    DocumentOwner = "CLAIM"
	OwnerPolicy   DocumentOwner = "POLICY"
)

// IsValid reports whether o is a known document owner kind.
func (o DocumentOwner) IsValid() bool {
	switch o {
	case OwnerCustomer, OwnerOffer, OwnerClaim, OwnerPolicy:
		return true
	}
	return false
}
