// Package participation defines the contract for verifying that a
// review author belongs to an event. The platform's identity service
// owns the records; this engine only asks.
package participation

import (
	"context"
	"sync"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
)

// Verifier checks whether an account is a confirmed participant, judge
// or organizer for an event.
type Verifier interface {
	// Verify reports the account's role and whether it is confirmed for
	// the event. Lookup failures are errors; "not a member" is not.
	Verify(ctx context.Context, eventID, accountID string) (model.Role, bool, error)
}

// StaticVerifier is an in-memory Verifier fed through Register. It
// stands in for the external participation-records collaborator.
type StaticVerifier struct {
	mu      sync.RWMutex
	members map[string]map[string]model.Role // eventID -> accountID
}

var _ Verifier = (*StaticVerifier)(nil)

// NewStaticVerifier constructs an empty StaticVerifier.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{members: make(map[string]map[string]model.Role)}
}

// Register confirms an account for an event with the given role.
func (v *StaticVerifier) Register(ctx context.Context, eventID, accountID string, role model.Role) {
	v.mu.Lock()
	defer v.mu.Unlock()

	byAccount, ok := v.members[eventID]
	if !ok {
		byAccount = make(map[string]model.Role)
		v.members[eventID] = byAccount
	}
	byAccount[accountID] = role
}

// Verify implements Verifier.
func (v *StaticVerifier) Verify(ctx context.Context, eventID, accountID string) (model.Role, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	role, ok := v.members[eventID][accountID]
	return role, ok, nil
}
