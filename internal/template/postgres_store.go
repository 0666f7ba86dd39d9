package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/booking-notifier/internal/event"
)

// Store persists templates so the registry survives restarts. The
// registry remains the read path; the store is written through on
// admin mutations and replayed at boot.
type Store interface {
	Save(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id string) error
	LoadAll(ctx context.Context) ([]Template, error)
}

const upsertTemplate = `
INSERT INTO notification_templates (
id,
event_type,
channel,
language,
program_id,
subject,
title,
body,
html_body,
variables_json
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (event_type, channel, language, program_id) DO UPDATE SET
id = EXCLUDED.id,
subject = EXCLUDED.subject,
title = EXCLUDED.title,
body = EXCLUDED.body,
html_body = EXCLUDED.html_body,
variables_json = EXCLUDED.variables_json
`

const deleteTemplate = `DELETE FROM notification_templates WHERE id = $1`

const selectTemplates = `
SELECT id, event_type, channel, language, program_id, subject, title, body, html_body, variables_json
FROM notification_templates
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

var ErrNotConfigured = errors.New("postgres store requires a non-nil pool")

func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, ErrNotConfigured
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, t *Template) error {
	vars, err := json.Marshal(t.Variables)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, upsertTemplate,
		t.ID,
		t.EventType,
		string(t.Channel),
		t.Language,
		t.ProgramID,
		t.Subject,
		t.Title,
		t.Body,
		t.HTMLBody,
		vars,
	)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, deleteTemplate, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadAll(ctx context.Context) ([]Template, error) {
	rows, err := s.pool.Query(ctx, selectTemplates)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var (
			t        Template
			channel  string
			varsJSON []byte
		)
		if err := rows.Scan(&t.ID, &t.EventType, &channel, &t.Language, &t.ProgramID,
			&t.Subject, &t.Title, &t.Body, &t.HTMLBody, &varsJSON); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.Channel = event.Channel(channel)
		if err := json.Unmarshal(varsJSON, &t.Variables); err != nil {
			return nil, fmt.Errorf("decode template variables: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
