package handlers

import (
	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
)

// writeAudit queues an audit event for the actor. A nil dispatcher is a
// no-op so handlers can be built without one in tests.
func writeAudit(
	d *audit.Dispatcher,
	actor policy.Actor,
	barbershopID uint,
	action string,
	entity string,
	entityID *uint,
	meta any,
) {

	if d == nil {
		return
	}

	var userID *uint
	if actor.UserID != 0 {
		id := actor.UserID
		userID = &id
	}

	d.Dispatch(audit.Event{
		BarbershopID: barbershopID,
		UserID:       userID,
		Action:       action,
		Entity:       entity,
		EntityID:     entityID,
		Metadata:     meta,
	})
}
