package interfaces

import (
	"context"

	"github.com/ternarybob/folio/internal/models"
)

// SettingsService exposes runtime-mutable settings with an in-memory
// snapshot for cheap reads.
type SettingsService interface {
	Snapshot() models.Settings
	ReportingCurrency() string
	Update(ctx context.Context, update models.SettingsUpdate) (models.Settings, error)
}
