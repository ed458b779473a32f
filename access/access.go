// Package access implements two-step ownership transfer: a proposed owner
// must explicitly accept before the swap happens, so a typoed address can
// never brick the owner-gated surface.
package access

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUnauthorized is returned when a caller is not the owner.
	ErrUnauthorized = errors.New("access: caller is not the owner")
	// ErrNotPendingOwner is returned when a caller tries to accept an ownership
	// transfer that was not proposed to them.
	ErrNotPendingOwner = errors.New("access: caller is not the pending owner")
	// ErrZeroAddress is returned when a zero address is proposed as owner.
	ErrZeroAddress = errors.New("access: zero address")
)

// Authority tracks the current and pending owner. Safe for concurrent use.
type Authority struct {
	mu      sync.Mutex
	owner   common.Address
	pending common.Address
}

// NewAuthority creates an Authority owned by the given address.
func NewAuthority(owner common.Address) (*Authority, error) {
	if owner == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	return &Authority{owner: owner}, nil
}

// Owner returns the current owner.
func (a *Authority) Owner() common.Address {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.owner
}

// PendingOwner returns the proposed owner, if any.
func (a *Authority) PendingOwner() common.Address {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// RequireOwner fails unless caller is the current owner.
func (a *Authority) RequireOwner(caller common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if caller != a.owner {
		return ErrUnauthorized
	}
	return nil
}

// ProposeOwner stages candidate as the pending owner. Owner only.
func (a *Authority) ProposeOwner(caller, candidate common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if caller != a.owner {
		return ErrUnauthorized
	}
	if candidate == (common.Address{}) {
		return ErrZeroAddress
	}
	a.pending = candidate
	return nil
}

// AcceptOwnership atomically promotes the pending owner. Pending owner only.
func (a *Authority) AcceptOwnership(caller common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == (common.Address{}) || caller != a.pending {
		return ErrNotPendingOwner
	}
	a.owner = a.pending
	a.pending = common.Address{}
	return nil
}
