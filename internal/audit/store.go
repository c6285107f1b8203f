package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// Store persists events as audit_logs rows.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Write(ctx context.Context, ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	row := models.AuditLog{
		BarbershopID: ev.BarbershopID,
		UserID:       ev.UserID,
		Action:       ev.Action,
		Entity:       ev.Entity,
		EntityID:     ev.EntityID,
		Metadata:     metaJSON,
		CreatedAt:    ev.OccurredAt,
	}

	return s.db.WithContext(ctx).Create(&row).Error
}
