package shared

import (
	"encoding/json"

	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// OwnedAggregateRoot extends BaseAggregateRoot with per-user ownership.
// An aggregate with a nil owner is visible to every authenticated user;
// otherwise it is visible to its owner, to users it has been shared with,
// and to superusers.
type OwnedAggregateRoot struct {
	BaseAggregateRoot
	OwnerID *uuid.UUID `gorm:"type:uuid;index"`
	// SharedWith holds a JSON-encoded list of user IDs the object has been
	// shared with. Stored as text so the same LIKE-based visibility filter
	// works on both postgres and sqlite.
	SharedWith string `gorm:"type:text;not null;default:'[]'"`
}

// NewOwnedAggregateRoot creates a new aggregate without an owner
func NewOwnedAggregateRoot() OwnedAggregateRoot {
	return OwnedAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		SharedWith:        "[]",
	}
}

// NewOwnedAggregateRootWithOwner creates a new aggregate owned by the given user
func NewOwnedAggregateRootWithOwner(ownerID uuid.UUID) OwnedAggregateRoot {
	root := NewOwnedAggregateRoot()
	root.OwnerID = &ownerID
	return root
}

// SetOwner sets the owning user
func (o *OwnedAggregateRoot) SetOwner(userID uuid.UUID) {
	o.OwnerID = &userID
}

// SharedUserIDs decodes the shared-with list
func (o *OwnedAggregateRoot) SharedUserIDs() []uuid.UUID {
	var ids []uuid.UUID
	if o.SharedWith == "" {
		return ids
	}
	_ = json.Unmarshal([]byte(o.SharedWith), &ids)
	return ids
}

// ShareWith grants a user access to the aggregate
func (o *OwnedAggregateRoot) ShareWith(userID uuid.UUID) {
	ids := o.SharedUserIDs()
	for _, id := range ids {
		if id == userID {
			return
		}
	}
	ids = append(ids, userID)
	raw, _ := json.Marshal(ids)
	o.SharedWith = string(raw)
}

// AccessibleBy reports whether the given user may view the aggregate
func (o *OwnedAggregateRoot) AccessibleBy(userID uuid.UUID, superuser bool) bool {
	if superuser || o.OwnerID == nil || *o.OwnerID == userID {
		return true
	}
	for _, id := range o.SharedUserIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// EditableBy reports whether the given user may modify the aggregate.
// Shared users get read access only.
func (o *OwnedAggregateRoot) EditableBy(userID uuid.UUID, superuser bool) bool {
	return superuser || o.OwnerID == nil || *o.OwnerID == userID
}
