package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/models"
)

// ErrNotInitialized is returned by Load when no store exists at the path yet.
var ErrNotInitialized = errors.New("storage not initialized, run 'habitual init' first")

// Resources tracked in the sync log.
const (
	ResourceHabits  = "habits"
	ResourcePlanner = "planner"
)

// SyncRecord is the last successful fetch of a remote resource.
type SyncRecord struct {
	Resource  string
	FetchedAt time.Time
	ItemCount int
}

// Provider is the local client-side store. Habits and tasks live on the
// remote service; only settings and fetch bookkeeping are kept here.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Sync bookkeeping
	RecordSync(resource string, itemCount int, at time.Time) error
	LastSync(resource string) (SyncRecord, bool, error)

	// Utils
	SchemaStatus() (migration.Status, error)
	GetConfigPath() string
}
