package service

import (
	"fmt"

	"github.com/noah-isme/aula-admin-api/internal/models"
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
)

// CheckCapacity decides whether a commission can take requested more
// seats given the occupancy snapshot. Pure function: the caller must
// derive occupied inside the same transaction that performs the insert,
// otherwise the answer can be stale by the time the rows land.
func CheckCapacity(commission *models.Commission, occupied, requested int) error {
	if !commission.Active {
		return appErrors.WithDetails(appErrors.ErrCommissionInactive,
			fmt.Sprintf("commission %s is inactive", commission.Name),
			map[string]interface{}{"commission_id": commission.ID})
	}
	if commission.MaxSeats == nil {
		return nil
	}
	available := *commission.MaxSeats - occupied
	if requested > available {
		return appErrors.WithDetails(appErrors.ErrInsufficientCapacity,
			fmt.Sprintf("commission %s has %d seat(s) available, %d requested", commission.Name, available, requested),
			map[string]interface{}{
				"commission_id": commission.ID,
				"available":     available,
				"requested":     requested,
			})
	}
	return nil
}
