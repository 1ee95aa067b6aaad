package livequery_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livequery"
)

type player struct {
	ID    int64
	Name  string
	Score int64
}

func (player) DatabaseTableName() string { return "players" }

func (p player) DatabaseValues() map[string]any {
	return map[string]any{"id": p.ID, "name": p.Name, "score": p.Score}
}

func decodePlayer(row livequery.Row) (player, error) {
	id, _ := row.Value("id")
	name, _ := row.Value("name")
	score, _ := row.Value("score")
	return player{ID: id.(int64), Name: name.(string), Score: score.(int64)}, nil
}

type collectingDelegate struct {
	mu     sync.Mutex
	events []livequery.Event
}

func (d *collectingDelegate) WillChangeRecords() {}

func (d *collectingDelegate) DidChangeRecord(rec player, event livequery.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *collectingDelegate) DidChangeRecords() {}

func (d *collectingDelegate) snapshot() []livequery.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]livequery.Event(nil), d.events...)
}

// TestPublicSurface drives the exported API end to end: open, watch,
// mutate, observe.
func TestPublicSurface(t *testing.T) {
	ctx := context.Background()

	st, err := livequery.Open(t.TempDir() + "/public.db")
	require.NoError(t, err)
	defer st.Close()

	err = st.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`CREATE TABLE players (id INTEGER PRIMARY KEY, name TEXT NOT NULL, score INTEGER NOT NULL)`)
		return err
	})
	require.NoError(t, err)

	consumer := livequery.NewSerialQueue()
	defer consumer.Close()

	src := livequery.NewSQL(`SELECT id, name, score FROM players ORDER BY score DESC, id`)
	ctrl := livequery.NewController(st, src, decodePlayer, consumer,
		livequery.WithPrimaryKeyIdentity[player]())
	defer ctrl.Close()

	delegate := &collectingDelegate{}
	fetchDone := make(chan error, 1)
	consumer.Submit(func() {
		ctrl.SetDelegate(delegate)
		fetchDone <- ctrl.PerformFetch(ctx)
	})
	require.NoError(t, <-fetchDone)

	err = st.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO players (id, name, score) VALUES (1, 'arthur', 100)`)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, ctrl.Flush(ctx))

	events := delegate.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, livequery.EventInsertion, events[0].Kind)
	assert.Equal(t, livequery.IndexPath{Section: 0, Row: 0}, events[0].NewIndexPath)

	recordsDone := make(chan []player, 1)
	consumer.Submit(func() {
		records, err := ctrl.FetchedRecords()
		assert.NoError(t, err)
		recordsDone <- records
	})
	records := <-recordsDone
	require.Len(t, records, 1)
	assert.Equal(t, player{ID: 1, Name: "arthur", Score: 100}, records[0])
}

// TestRequestBuilder drives the builder variant of the query source.
func TestRequestBuilder(t *testing.T) {
	ctx := context.Background()

	st, err := livequery.Open(t.TempDir() + "/request.db")
	require.NoError(t, err)
	defer st.Close()

	err = st.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`CREATE TABLE players (id INTEGER PRIMARY KEY, name TEXT NOT NULL, score INTEGER NOT NULL)`)
		return err
	})
	require.NoError(t, err)

	consumer := livequery.NewSerialQueue()
	defer consumer.Close()

	req := livequery.Select("players").
		Columns("id", "name", "score").
		WhereEq("name", "barbara").
		OrderBy("score DESC", "id")
	ctrl := livequery.NewController(st, livequery.NewRequest(req), decodePlayer, consumer,
		livequery.WithIdentity(func(a, b player) bool { return a.ID == b.ID }))
	defer ctrl.Close()

	fetchDone := make(chan error, 1)
	consumer.Submit(func() { fetchDone <- ctrl.PerformFetch(ctx) })
	require.NoError(t, <-fetchDone)

	err = st.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO players (id, name, score) VALUES (2, 'barbara', 250)`)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, ctrl.Flush(ctx))

	countDone := make(chan int, 1)
	consumer.Submit(func() { countDone <- ctrl.Count() })
	assert.Equal(t, 1, <-countDone)
}
