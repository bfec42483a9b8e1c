package profile

import "github.com/ebph-project/ebphd/internal/domain"

// Local aliases keep the rest of this package's signatures readable —
// spec.md's data model (Call Number, Profile Key, Profile Status) is
// defined once in domain and reused here and by every other package that
// talks about profiles.
type (
	CallNumber    = domain.CallNumber
	ProfileKey    = domain.ProfileKey
	ProfileStatus = domain.ProfileStatus
	Decision      = domain.Decision
)

const (
	EmptyCall = domain.EmptyCall

	StatusTraining = domain.StatusTraining
	StatusFrozen   = domain.StatusFrozen
	StatusNormal   = domain.StatusNormal

	Permit = domain.Permit
	Deny   = domain.Deny
)

// Canonical constants from spec.md §3/§8.
const (
	// DefaultWindow is W, the sliding history length (spec.md GLOSSARY).
	DefaultWindow = 9
	// DefaultLocalityFrame is L, the recent-call ring length for LFC.
	DefaultLocalityFrame = 128
)
