package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors with
// caller-facing messages.
//
// These represent factual states about stored resources, not validation
// failures; validation belongs to pkg/domainerrors.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrDuplicatePhone = errors.New("duplicate phone number")
	ErrExpired        = errors.New("expired")
)
