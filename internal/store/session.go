// Package store persists the client session and workflow pointers in the
// local sqlite database so a restart resumes at the same step.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jask/siteassess/internal/api"
	"github.com/jask/siteassess/internal/database"
	"github.com/jask/siteassess/internal/secrets"
)

// Storage keys. All are removed together by Clear.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeySurveyID     = "surveyId"
	KeyBuildingID   = "buildingId"
)

var allKeys = []string{KeyToken, KeyRefreshToken, KeyUser, KeySurveyID, KeyBuildingID}

// Session is the authenticated identity.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *api.User
}

// Valid reports whether both halves of the session are present.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.User != nil
}

// WorkflowPointer identifies the survey/building chain being worked on.
type WorkflowPointer struct {
	SurveyID   string
	BuildingID string
}

// Store is a key/value view over the session_kv table.
type Store struct {
	db     *sql.DB
	sealer *secrets.Sealer
}

// New wraps an already migrated database.
func New(db *sql.DB, sealer *secrets.Sealer) *Store {
	if sealer == nil {
		sealer = secrets.UserSealer()
	}
	return &Store{db: db, sealer: sealer}
}

// Load returns the persisted session. Missing or malformed values yield an
// empty session rather than an error; only storage failures are returned.
func (s *Store) Load(ctx context.Context) (Session, error) {
	vals, err := s.getAll(ctx)
	if err != nil {
		return Session{}, err
	}
	var out Session
	out.AccessToken = s.open(vals[KeyToken])
	out.RefreshToken = s.open(vals[KeyRefreshToken])
	if raw := vals[KeyUser]; raw != "" && raw != "null" {
		var u api.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			out.User = &u
		}
	}
	if !out.Valid() {
		return Session{}, nil
	}
	return out, nil
}

// Save writes every session key in one transaction.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if !sess.Valid() {
		return errors.New("store: refusing to save a half session")
	}
	tok, err := s.sealer.Seal(sess.AccessToken)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	refresh, err := s.sealer.Seal(sess.RefreshToken)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for k, v := range map[string]string{KeyToken: tok, KeyRefreshToken: refresh, KeyUser: string(user)} {
			if err := put(ctx, tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear removes the session and the workflow pointers atomically.
func (s *Store) Clear(ctx context.Context) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, k := range allKeys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM session_kv WHERE key = ?`, k); err != nil {
				return fmt.Errorf("clear %s: %w", k, err)
			}
		}
		return nil
	})
}

// Pointer returns the persisted survey and building ids.
func (s *Store) Pointer(ctx context.Context) (WorkflowPointer, error) {
	vals, err := s.getAll(ctx)
	if err != nil {
		return WorkflowPointer{}, err
	}
	return WorkflowPointer{SurveyID: vals[KeySurveyID], BuildingID: vals[KeyBuildingID]}, nil
}

// SurveyID returns the last selected survey id, empty when unset.
func (s *Store) SurveyID(ctx context.Context) (string, error) {
	return s.get(ctx, KeySurveyID)
}

// SetSurveyID persists the selected survey id. Empty deletes it.
func (s *Store) SetSurveyID(ctx context.Context, id string) error {
	return s.set(ctx, KeySurveyID, id)
}

// BuildingID returns the last created building id, empty when unset.
func (s *Store) BuildingID(ctx context.Context) (string, error) {
	return s.get(ctx, KeyBuildingID)
}

// SetBuildingID persists the active building id. Empty deletes it.
func (s *Store) SetBuildingID(ctx context.Context, id string) error {
	return s.set(ctx, KeyBuildingID, id)
}

// SetPointer persists both workflow pointers in one transaction. Empty ids are deleted.
func (s *Store) SetPointer(ctx context.Context, p WorkflowPointer) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for k, v := range map[string]string{KeySurveyID: p.SurveyID, KeyBuildingID: p.BuildingID} {
			if err := setTx(ctx, tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) open(sealed string) string {
	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return ""
	}
	return plain
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) getAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM session_kv`)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string, len(allKeys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *Store) set(ctx context.Context, key, value string) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return setTx(ctx, tx, key, value)
	})
}

func setTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	if value == "" {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	}
	return put(ctx, tx, key, value)
}

func put(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
	INSERT INTO session_kv(key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
	`, key, value, database.Now())
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
