// Package inventory implements KeyInventory (spec §3): the registry of
// credentials themselves, independent of the usage/permission analysis
// SPEC_FULL.md §2b splits out into usageanalyzer and overpermission.
package inventory

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// KeyType enumerates the credential types KeyInventory tracks (spec §3).
type KeyType string

const (
	KeyAPIKey         KeyType = "api_key"
	KeyOAuthToken     KeyType = "oauth_token"
	KeySSHKey         KeyType = "ssh_key"
	KeyTLSCert        KeyType = "tls_cert"
	KeyJWTSecret      KeyType = "jwt_secret"
	KeyServiceAccount KeyType = "service_account"
	KeyEncryptionKey  KeyType = "encryption_key"
)

// Status is a Key's lifecycle state (spec §3).
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
	StatusRotating Status = "rotating"
)

// Key is one registered credential.
type Key struct {
	ID          string
	Name        string
	Type        KeyType
	Owner       string
	Service     string
	Scopes      []string
	Status      Status
	UsageCount  int
	ExpiresDays int
	CreatedAt   string
}

// Inventory is KeyInventory's record store.
type Inventory struct {
	mu    sync.Mutex
	keys  map[string]*Key
	clock clock.Clock
	log   *logger.Logger
}

// New creates an empty Inventory.
func New(c clock.Clock, log *logger.Logger) *Inventory {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Inventory{keys: make(map[string]*Key), clock: c, log: log}
}

// RegisterResult is register_key's return shape.
type RegisterResult struct {
	Registered bool
	KeyID      string
	Error      string
}

// RegisterKey adds a new active key.
func (inv *Inventory) RegisterKey(name string, keyType KeyType, owner, service string, scopes []string, expiresDays int) RegisterResult {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if name == "" || owner == "" {
		return RegisterResult{Error: goverrors.Invalid("name/owner").Error()}
	}
	id := ids.New("ki")
	inv.keys[id] = &Key{
		ID: id, Name: name, Type: keyType, Owner: owner, Service: service,
		Scopes: append([]string{}, scopes...), Status: StatusActive, ExpiresDays: expiresDays,
		CreatedAt: clock.ISO8601(inv.clock.Now()),
	}
	return RegisterResult{Registered: true, KeyID: id}
}

// RevokeResult is revoke's return shape. KeyInventory's own revoke is a
// status flip only; InstantRevocator owns the full revocation pipeline.
type RevokeResult struct {
	Revoked bool
	Error   string
}

// Revoke marks a key revoked. Revoked keys never transition back to
// active (spec §3 invariant); a replacement is always a new Key.
func (inv *Inventory) Revoke(keyID string) RevokeResult {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	k, ok := inv.keys[keyID]
	if !ok {
		return RevokeResult{Error: goverrors.NotFound("key").Error()}
	}
	if k.Status == StatusRevoked {
		return RevokeResult{Error: goverrors.Precondition("key already revoked").Error()}
	}
	k.Status = StatusRevoked
	return RevokeResult{Revoked: true}
}

// GetKeyResult is get_key's return shape.
type GetKeyResult struct {
	Retrieved bool
	Key       *Key
	Error     string
}

// GetKey retrieves a key by id. A revoked key's id continues to resolve
// (spec §3 invariant 8).
func (inv *Inventory) GetKey(keyID string) GetKeyResult {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	k, ok := inv.keys[keyID]
	if !ok {
		return GetKeyResult{Error: goverrors.NotFound("key").Error()}
	}
	return GetKeyResult{Retrieved: true, Key: k}
}

// RecordUsageResult is record_usage's return shape.
type RecordUsageResult struct {
	Recorded bool
	Error    string
}

// RecordUsage increments a key's own usage counter. Usage logs
// themselves (per-call IP/endpoint/response detail) belong to
// usageanalyzer (SPEC_FULL.md §2b), which KeyInventory does not own.
func (inv *Inventory) RecordUsage(keyID string) RecordUsageResult {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	k, ok := inv.keys[keyID]
	if !ok {
		return RecordUsageResult{Error: goverrors.NotFound("key").Error()}
	}
	k.UsageCount++
	return RecordUsageResult{Recorded: true}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (inv *Inventory) GetSummary() SummaryResult {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	active := 0
	for _, k := range inv.keys {
		if k.Status == StatusActive {
			active++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"keys":        len(inv.keys),
		"active_keys": active,
	}}
}
