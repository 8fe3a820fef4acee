package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything with identity and lifecycle timestamps.
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetModifiedAt() time.Time
}

// BaseEntity carries the identity fields every entity embeds. IDs are
// generated application-side so entities are addressable before their
// first save.
type BaseEntity struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// NewBaseEntity generates a fresh identity with both timestamps set to now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, ModifiedAt: now}
}

func (e *BaseEntity) GetID() uuid.UUID         { return e.ID }
func (e *BaseEntity) GetCreatedAt() time.Time  { return e.CreatedAt }
func (e *BaseEntity) GetModifiedAt() time.Time { return e.ModifiedAt }
