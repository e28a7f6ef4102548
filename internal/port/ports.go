// Package port defines the interfaces (ports) for external dependencies.
// The service layer depends on these, never on the Supabase adapter
// directly, so stores can be swapped for mocks in tests.
package port

import (
	"context"

	"github.com/brickgo/crm-bfa-go/internal/domain"
)

// ProspectFilter narrows a prospect list read.
type ProspectFilter struct {
	// Status filters on the raw stored status value; empty means all.
	Status string
	// AssignedTo restricts to one rep's prospects; empty means all.
	AssignedTo string
	// Limit caps the number of rows; zero means no cap.
	Limit int
}

// ProspectStore is the prospects table.
type ProspectStore interface {
	ListProspects(ctx context.Context, filter ProspectFilter) ([]domain.Prospect, error)
	CreateProspect(ctx context.Context, req *domain.CreateProspectRequest, status string) (*domain.Prospect, error)
	UpdateProspect(ctx context.Context, id string, updates map[string]any) (*domain.Prospect, error)
	DeleteProspect(ctx context.Context, id string) error
}

// ProfileStore is the profiles table.
type ProfileStore interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, profile *domain.Profile) error
	SetRole(ctx context.Context, id, role string) error
	CountActiveReps(ctx context.Context) (int, error)
}

// CatalogStore covers the services and contents tables.
type CatalogStore interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	CreateService(ctx context.Context, input *domain.ServiceInput) (*domain.Service, error)
	UpdateService(ctx context.Context, id string, input *domain.ServiceInput) (*domain.Service, error)
	DeleteService(ctx context.Context, id string) error

	ListContents(ctx context.Context) ([]domain.Content, error)
	CreateContent(ctx context.Context, input *domain.ContentInput) (*domain.Content, error)
	UpdateContent(ctx context.Context, id string, input *domain.ContentInput) (*domain.Content, error)
	DeleteContent(ctx context.Context, id string) error
}

// SettingsStore is the app_settings singleton row.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*domain.AppSettings, error)
	SaveSettings(ctx context.Context, settings domain.AppSettings) error
}

// AuthStore wraps the hosted auth service (GoTrue) plus the DEV_AUTH
// fallback table.
type AuthStore interface {
	// CreateAuthUser provisions an auth user with confirmation pre-set and
	// returns the new auth subject id.
	CreateAuthUser(ctx context.Context, req *domain.CreateUserRequest) (string, error)
	// PasswordGrant exchanges email/password for a session.
	PasswordGrant(ctx context.Context, email, password string) (*domain.Session, error)
	// GetDevLogin reads the dev_logins row for the DEV_AUTH bcrypt fallback.
	GetDevLogin(ctx context.Context, email string) (*domain.DevLogin, error)
}

// ObjectStore is the hosted object storage (thumbnail bucket).
type ObjectStore interface {
	// UploadThumbnail stores the bytes under path and returns the public URL.
	UploadThumbnail(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// ChangeFeed delivers per-table "something changed, refetch" notifications.
// Subscribe returns the notification channel and a cancel func; the channel
// is closed after cancel.
type ChangeFeed interface {
	Subscribe(table string) (<-chan struct{}, func())
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
