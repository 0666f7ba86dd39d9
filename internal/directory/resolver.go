package directory

import (
	"context"

	"github.com/rs/zerolog"
)

// Resolver hydrates event-embedded user IDs into full Recipient
// records. Directory failures degrade to not-found so one bad lookup
// never aborts a dispatch.
type Resolver struct {
	users  UserDirectory
	logger zerolog.Logger
}

func NewResolver(users UserDirectory, logger zerolog.Logger) *Resolver {
	return &Resolver{users: users, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, userID string) (*Recipient, bool) {
	if userID == "" {
		return nil, false
	}
	rcpt, err := r.users.GetUser(ctx, userID)
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID).Msg("user directory lookup failed, skipping recipient")
		return nil, false
	}
	if rcpt == nil {
		r.logger.Warn().Str("user_id", userID).Msg("recipient not found")
		return nil, false
	}
	return rcpt, true
}

// ResolveBatch never fails wholesale. IDs the directory cannot serve,
// whether missing or erroring, land in notFound.
func (r *Resolver) ResolveBatch(ctx context.Context, userIDs []string) (found []Recipient, notFound []string) {
	ids := dedupe(userIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	res, err := r.users.GetUsersBatch(ctx, ids)
	if err != nil {
		r.logger.Warn().Err(err).Int("count", len(ids)).Msg("batch directory lookup failed, skipping all recipients")
		return nil, ids
	}
	return res.Found, res.NotFound
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
