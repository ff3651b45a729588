package repo

import (
	"time"

	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

type MovementFilter struct {
	Since  *time.Time
	Until  *time.Time
	Type   models.MovementType
	Offset *int
	Limit  *int
}

func (mf MovementFilter) matches(m models.MovementRecord) bool {
	if mf.Since != nil && m.Date.Before(*mf.Since) {
		return false
	}
	if mf.Until != nil && m.Date.After(*mf.Until) {
		return false
	}
	if mf.Type != "" && m.Type != mf.Type {
		return false
	}
	return true
}
