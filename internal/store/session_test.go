package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/siteassess/internal/api"
	"github.com/jask/siteassess/internal/database"
	"github.com/jask/siteassess/internal/secrets"
)

func openTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	db, err := database.OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func sampleSession() Session {
	return Session{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		User:         &api.User{ID: "u1", Name: "A", Email: "a@x.com", Role: "owner"},
	}
}

func TestSessionRoundTripAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, path := openTestDB(t)
	sealer := secrets.NewSealer("test")

	in := sampleSession()
	require.NoError(t, New(db, sealer).Save(ctx, in))
	require.NoError(t, db.Close())

	// simulate a restart
	db2, err := database.OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db2.Close() })

	out, err := New(db2, sealer).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestTokensAreSealedAtRest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, _ := openTestDB(t)
	require.NoError(t, New(db, secrets.NewSealer("k")).Save(ctx, sampleSession()))

	var raw string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM session_kv WHERE key = ?`, KeyToken).Scan(&raw))
	require.NotEqual(t, "access-123", raw)
}

func TestLoadEmpty(t *testing.T) {
	t.Parallel()

	db, _ := openTestDB(t)
	out, err := New(db, secrets.NewSealer("k")).Load(context.Background())
	require.NoError(t, err)
	require.False(t, out.Valid())
	require.Equal(t, Session{}, out)
}

func TestLoadMalformedFallsBackToEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cases := map[string]map[string]string{
		"bad user json":   {KeyToken: "", KeyUser: "{not json"},
		"unsealed token":  {KeyToken: "plain-token", KeyUser: `{"id":"u1","name":"A"}`},
		"user null":       {KeyUser: "null"},
		"token only":      {KeyToken: "sealed-later"},
		"user only valid": {KeyUser: `{"id":"u1","name":"A"}`},
	}
	for name, vals := range cases {
		t.Run(name, func(t *testing.T) {
			db, _ := openTestDB(t)
			sealer := secrets.NewSealer("k")
			st := New(db, sealer)
			for k, v := range vals {
				if k == KeyToken && v == "sealed-later" {
					sealed, err := sealer.Seal("tok")
					require.NoError(t, err)
					v = sealed
				}
				require.NoError(t, st.set(ctx, k, v))
			}
			out, err := st.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, Session{}, out)
		})
	}
}

func TestSaveRejectsHalfSession(t *testing.T) {
	t.Parallel()

	db, _ := openTestDB(t)
	st := New(db, secrets.NewSealer("k"))
	require.Error(t, st.Save(context.Background(), Session{AccessToken: "x"}))
	require.Error(t, st.Save(context.Background(), Session{User: &api.User{ID: "u"}}))
}

func TestPointersAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, _ := openTestDB(t)
	st := New(db, secrets.NewSealer("k"))

	require.NoError(t, st.Save(ctx, sampleSession()))
	require.NoError(t, st.SetSurveyID(ctx, "s1"))
	require.NoError(t, st.SetBuildingID(ctx, "b1"))

	p, err := st.Pointer(ctx)
	require.NoError(t, err)
	require.Equal(t, WorkflowPointer{SurveyID: "s1", BuildingID: "b1"}, p)

	id, err := st.SurveyID(ctx)
	require.NoError(t, err)
	require.Equal(t, "s1", id)

	require.NoError(t, st.SetBuildingID(ctx, ""))
	id, err = st.BuildingID(ctx)
	require.NoError(t, err)
	require.Empty(t, id)

	require.NoError(t, st.Clear(ctx))
	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_kv`).Scan(&n))
	require.Zero(t, n)

	sess, err := st.Load(ctx)
	require.NoError(t, err)
	require.False(t, sess.Valid())
	p, err = st.Pointer(ctx)
	require.NoError(t, err)
	require.Equal(t, WorkflowPointer{}, p)
}

func TestSetPointer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, _ := openTestDB(t)
	st := New(db, secrets.NewSealer("k"))

	require.NoError(t, st.SetPointer(ctx, WorkflowPointer{SurveyID: "s2", BuildingID: "b2"}))
	p, err := st.Pointer(ctx)
	require.NoError(t, err)
	require.Equal(t, WorkflowPointer{SurveyID: "s2", BuildingID: "b2"}, p)

	require.NoError(t, st.SetPointer(ctx, WorkflowPointer{SurveyID: "s3"}))
	p, err = st.Pointer(ctx)
	require.NoError(t, err)
	require.Equal(t, WorkflowPointer{SurveyID: "s3"}, p)
}
