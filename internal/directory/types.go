package directory

import "context"

// Recipient is a request-scoped, read-only snapshot of a user as the
// user directory knows them. The dispatch pipeline never writes back.
type Recipient struct {
	UserID            string      `json:"user_id"`
	Email             string      `json:"email,omitempty"`
	Phone             string      `json:"phone,omitempty"`
	PushTokens        []string    `json:"push_tokens,omitempty"`
	PreferredLanguage string      `json:"preferred_language"`
	Timezone          string      `json:"timezone"`
	Preferences       Preferences `json:"preferences"`
}

// Preferences holds the per-channel opt-in flags a user controls.
type Preferences struct {
	Email    bool `json:"email"`
	SMS      bool `json:"sms"`
	Push     bool `json:"push"`
	InApp    bool `json:"in_app"`
	WhatsApp bool `json:"whatsapp"`
}

// ResourceInfo is a read-only snapshot used only to build template
// variables.
type ResourceInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location string `json:"location,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

// BatchResult carries the outcome of a batch lookup. A miss is data,
// not an error: callers must consult NotFound.
type BatchResult struct {
	Found    []Recipient `json:"found"`
	NotFound []string    `json:"not_found"`
}

// UserDirectory is the read surface of the sibling user service.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*Recipient, error)
	GetUsersBatch(ctx context.Context, ids []string) (BatchResult, error)
}

// PreferenceWriter is the admin pass-through for preference updates.
type PreferenceWriter interface {
	UpdatePreferences(ctx context.Context, userID string, prefs Preferences) error
}

// ResourceDirectory is the read surface of the sibling resource
// service. FindEquivalents is consumed only by the reassignment path.
type ResourceDirectory interface {
	GetResource(ctx context.Context, id string) (*ResourceInfo, error)
	GetResourcesBatch(ctx context.Context, ids []string) ([]ResourceInfo, []string, error)
	FindEquivalents(ctx context.Context, resourceID string, criteria map[string]string) ([]ResourceInfo, error)
}
