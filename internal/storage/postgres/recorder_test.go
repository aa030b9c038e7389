package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderpeak/ironwatch/internal/storage"
	"github.com/cinderpeak/ironwatch/internal/storage/postgres"
	"github.com/cinderpeak/ironwatch/internal/testutil"
)

func newRecorder(t *testing.T) (*postgres.Recorder, *testutil.PostgresContainer) {
	t.Helper()
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.Recorder, pc
}

func TestRecorder_EncounterLifecycle(t *testing.T) {
	rec, pc := newRecorder(t)
	ctx := context.Background()

	require.NoError(t, rec.Health(ctx, 5*time.Second))

	enc, err := rec.BeginEncounter(ctx, "content/levels/arena.yaml", 42)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, enc)

	require.NoError(t, rec.RecordHit(ctx, enc, storage.Hit{
		Tick: 10, Attacker: "player", Target: "soldier", GuardID: "g-1",
		Outcome: "landed", Damage: 10, Lethal: false, X: 4.5, Y: 3.0,
	}))
	require.NoError(t, rec.RecordHit(ctx, enc, storage.Hit{
		Tick: 30, Attacker: "soldier", Target: "player", GuardID: "g-1",
		Outcome: "blocked", Damage: 0, Lethal: false, X: 4.2, Y: 3.0,
	}))
	require.NoError(t, rec.RecordDeath(ctx, enc, storage.Death{
		Tick: 90, Cause: "trap", Subtype: "spikes", X: 8.5, Y: 9.1,
	}))

	require.NoError(t, rec.EndEncounter(ctx, enc, storage.Summary{
		Cleared:      true,
		Ticks:        120,
		PlayerDeaths: 1,
		Score:        150,
	}))

	var (
		cleared      bool
		ticks        int64
		playerDeaths int
		score        int
		endedAt      *time.Time
	)
	err = pc.Pool.QueryRow(ctx,
		`SELECT cleared, ticks, player_deaths, score, ended_at FROM encounters WHERE id = $1`,
		enc,
	).Scan(&cleared, &ticks, &playerDeaths, &score, &endedAt)
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Equal(t, int64(120), ticks)
	assert.Equal(t, 1, playerDeaths)
	assert.Equal(t, 150, score)
	assert.NotNil(t, endedAt)

	var hits, deaths int
	require.NoError(t, pc.Pool.QueryRow(ctx,
		`SELECT count(*) FROM hits WHERE encounter_id = $1`, enc).Scan(&hits))
	require.NoError(t, pc.Pool.QueryRow(ctx,
		`SELECT count(*) FROM deaths WHERE encounter_id = $1`, enc).Scan(&deaths))
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, deaths)
}

func TestRecorder_FieldFidelityAndUnknownEncounters(t *testing.T) {
	rec, pc := newRecorder(t)
	ctx := context.Background()

	enc, err := rec.BeginEncounter(ctx, "content/levels/arena.yaml", -7)
	require.NoError(t, err)

	t.Run("hit columns", func(t *testing.T) {
		in := storage.Hit{
			Tick: 77, Attacker: "captain", Target: "player", GuardID: "g-9",
			Outcome: "landed", Damage: 12.5, Lethal: true, X: 16.25, Y: 5.0,
		}
		require.NoError(t, rec.RecordHit(ctx, enc, in))

		var out storage.Hit
		var tick int64
		err := pc.Pool.QueryRow(ctx,
			`SELECT tick, attacker, target, guard_id, outcome, damage, lethal, x, y
			 FROM hits WHERE encounter_id = $1 AND tick = 77`,
			enc,
		).Scan(&tick, &out.Attacker, &out.Target, &out.GuardID,
			&out.Outcome, &out.Damage, &out.Lethal, &out.X, &out.Y)
		require.NoError(t, err)
		out.Tick = uint64(tick)
		assert.Equal(t, in, out)
	})

	t.Run("death columns", func(t *testing.T) {
		in := storage.Death{Tick: 91, Cause: "time", Subtype: "expired", X: 2.5, Y: 3.0}
		require.NoError(t, rec.RecordDeath(ctx, enc, in))

		var out storage.Death
		var tick int64
		err := pc.Pool.QueryRow(ctx,
			`SELECT tick, cause, subtype, x, y FROM deaths WHERE encounter_id = $1 AND tick = 91`,
			enc,
		).Scan(&tick, &out.Cause, &out.Subtype, &out.X, &out.Y)
		require.NoError(t, err)
		out.Tick = uint64(tick)
		assert.Equal(t, in, out)
	})

	t.Run("ending an unknown encounter", func(t *testing.T) {
		err := rec.EndEncounter(ctx, uuid.New(), storage.Summary{})
		assert.ErrorIs(t, err, storage.ErrEncounterNotFound)
	})

	t.Run("hit against an unknown encounter", func(t *testing.T) {
		err := rec.RecordHit(ctx, uuid.New(), storage.Hit{Tick: 1})
		assert.Error(t, err, "foreign key should reject orphan hits")
	})
}
