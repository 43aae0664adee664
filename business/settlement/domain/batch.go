// Package domain contains the core domain types for the settlement context.
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// BatchPayload is an atomic multi-call execution request.
//
// The settlement layer that accepts a payload must execute every call in
// Targets/CallData within a single atomic unit: if any call reverts, or
// Condition evaluates false after all calls complete, the whole unit rolls
// back with no partial state change. The router never re-checks this after
// submission; the settlement layer is trusted to honor exactly this one
// guarantee.
//
// A payload is built fresh per user action, never mutated afterwards, and
// discarded after submission whether it succeeded or not.
type BatchPayload struct {
	targets   []common.Address
	callData  [][]byte
	condition string
	deadline  time.Time
}

// NewBatchPayload constructs an immutable payload. Slices are copied.
func NewBatchPayload(targets []common.Address, callData [][]byte, condition string, deadline time.Time) BatchPayload {
	t := make([]common.Address, len(targets))
	copy(t, targets)

	cd := make([][]byte, len(callData))
	for i, d := range callData {
		cd[i] = append([]byte(nil), d...)
	}

	return BatchPayload{
		targets:   t,
		callData:  cd,
		condition: condition,
		deadline:  deadline,
	}
}

// Targets returns a copy of the venue router addresses, one per encoded leg.
func (p BatchPayload) Targets() []common.Address {
	t := make([]common.Address, len(p.targets))
	copy(t, p.targets)
	return t
}

// CallData returns a copy of the encoded calls, index-aligned with Targets.
func (p BatchPayload) CallData() [][]byte {
	cd := make([][]byte, len(p.callData))
	for i, d := range p.callData {
		cd[i] = append([]byte(nil), d...)
	}
	return cd
}

// Condition returns the aggregate post-condition, of the form
// "outputs_sum >= <minimumAggregateOutput>".
func (p BatchPayload) Condition() string {
	return p.condition
}

// Deadline returns the absolute expiry of the batch.
func (p BatchPayload) Deadline() time.Time {
	return p.deadline
}

// Len returns the number of encoded calls.
func (p BatchPayload) Len() int {
	return len(p.targets)
}

// SubmitReceipt is the settlement layer's acknowledgement of a payload.
type SubmitReceipt struct {
	BatchID  string
	Accepted bool
}
