// Package revocation implements InstantRevocator (spec §4.16): the
// revoke_key pipeline (audit entry, optional cascade, optional
// replacement generation, per-service notifications) and bulk_revoke.
package revocation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Reason enumerates why a key was revoked.
type Reason string

const (
	ReasonLeaked      Reason = "leaked"
	ReasonCompromised Reason = "compromised"
	ReasonRotation    Reason = "rotation"
	ReasonOffboarding Reason = "offboarding"
	ReasonManual      Reason = "manual"
)

// Revocation is one revoke_key invocation's record.
type Revocation struct {
	ID               string
	KeyID            string
	Reason           Reason
	ReplacementKeyID string
	CreatedAt        string
}

// AuditEntry logs a revocation for InstantRevocator's own trail.
type AuditEntry struct {
	ID           string
	RevocationID string
	CreatedAt    string
}

// Cascade is a symbolic record of downstream access removal triggered by
// a revocation.
type Cascade struct {
	ID           string
	RevocationID string
	CreatedAt    string
}

// Notification records that a service was told about a revocation.
type Notification struct {
	ID           string
	RevocationID string
	Service      string
	CreatedAt    string
}

// Revocator is InstantRevocator's record store.
type Revocator struct {
	mu            sync.Mutex
	revocations   map[string]*Revocation
	audit         []*AuditEntry
	cascades      []*Cascade
	notifications []*Notification
	clock         clock.Clock
	log           *logger.Logger
}

// New creates an empty Revocator.
func New(c clock.Clock, log *logger.Logger) *Revocator {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Revocator{revocations: make(map[string]*Revocation), clock: c, log: log}
}

// RevokeResult is revoke_key's return shape.
type RevokeResult struct {
	Revoked          bool
	RevocationID     string
	ReplacementKeyID string
	Error            string
}

// RevokeKey runs the revocation pipeline: create the Revocation record,
// log an audit entry, optionally cascade downstream access removal,
// optionally generate a replacement key id, and notify each affected
// service.
func (r *Revocator) RevokeKey(keyID string, reason Reason, cascade bool, generateReplacement bool, notifyServices []string) RevokeResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if keyID == "" {
		return RevokeResult{Error: goverrors.Invalid("key_id").Error()}
	}

	id := ids.New("rvk")
	rec := &Revocation{ID: id, KeyID: keyID, Reason: reason, CreatedAt: clock.ISO8601(r.clock.Now())}

	if generateReplacement {
		rec.ReplacementKeyID = generateReplacementValue(keyID)
	}
	r.revocations[id] = rec

	r.audit = append(r.audit, &AuditEntry{ID: ids.New("rva"), RevocationID: id, CreatedAt: rec.CreatedAt})

	if cascade {
		r.cascades = append(r.cascades, &Cascade{ID: ids.New("rvc"), RevocationID: id, CreatedAt: rec.CreatedAt})
	}

	for _, svc := range notifyServices {
		r.notifications = append(r.notifications, &Notification{ID: ids.New("rvn"), RevocationID: id, Service: svc, CreatedAt: rec.CreatedAt})
	}

	return RevokeResult{Revoked: true, RevocationID: id, ReplacementKeyID: rec.ReplacementKeyID}
}

func generateReplacementValue(keyID string) string {
	sum := sha256.Sum256([]byte(keyID + uuid.New().String()))
	return hex.EncodeToString(sum[:])[:32]
}

// BulkRevokeResult is bulk_revoke's return shape. ErrorDetail joins
// every per-key failure into one message via multierror, so a caller
// that only wants a log line doesn't have to re-zip Failed against its
// own error list.
type BulkRevokeResult struct {
	Attempted   int
	Succeeded   int
	Failed      []string
	ErrorDetail string
}

// BulkRevoke revokes every key in keyIDs independently; failures are
// counted but never abort the remaining keys.
func (r *Revocator) BulkRevoke(keyIDs []string, reason Reason) BulkRevokeResult {
	var failed []string
	var errs *multierror.Error
	succeeded := 0
	for _, keyID := range keyIDs {
		res := r.RevokeKey(keyID, reason, false, false, nil)
		if res.Revoked {
			succeeded++
		} else {
			failed = append(failed, keyID)
			errs = multierror.Append(errs, fmt.Errorf("%s: %s", keyID, res.Error))
		}
	}
	detail := ""
	if errs != nil {
		detail = errs.Error()
	}
	return BulkRevokeResult{Attempted: len(keyIDs), Succeeded: succeeded, Failed: failed, ErrorDetail: detail}
}

// GetRevocationResult is get_revocation's return shape.
type GetRevocationResult struct {
	Retrieved  bool
	Revocation *Revocation
	Error      string
}

// GetRevocation retrieves a revocation record by id.
func (r *Revocator) GetRevocation(revocationID string) GetRevocationResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.revocations[revocationID]
	if !ok {
		return GetRevocationResult{Error: goverrors.NotFound("revocation").Error()}
	}
	return GetRevocationResult{Retrieved: true, Revocation: rec}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (r *Revocator) GetSummary() SummaryResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"revocations":   len(r.revocations),
		"cascades":      len(r.cascades),
		"notifications": len(r.notifications),
	}}
}
