package record

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID      int64
	Awakens int
}

func decodeTest(row Row) (*testRecord, error) {
	id, ok := row.Value("id")
	if !ok {
		return nil, errors.New("no id column")
	}
	return &testRecord{ID: id.(int64)}, nil
}

func TestItem_RecordMaterializesOnce(t *testing.T) {
	var decodes atomic.Int64
	decode := func(row Row) (*testRecord, error) {
		decodes.Add(1)
		return decodeTest(row)
	}

	it := NewItem(NewRow([]string{"id"}, []any{int64(7)}), decode, nil)

	first, err := it.Record()
	require.NoError(t, err)
	second, err := it.Record()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), decodes.Load())
}

func TestItem_HookRunsOnceUnderConcurrency(t *testing.T) {
	var hooks atomic.Int64
	hook := func(r *testRecord) {
		hooks.Add(1)
		r.Awakens++
	}

	it := NewItem(NewRow([]string{"id"}, []any{int64(7)}), decodeTest, hook)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := it.Record()
			assert.NoError(t, err)
			assert.Equal(t, int64(7), rec.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), hooks.Load())
	rec, _ := it.Record()
	assert.Equal(t, 1, rec.Awakens)
}

func TestItem_DecodeErrorIsSticky(t *testing.T) {
	it := NewItem(NewRow([]string{"name"}, []any{"x"}), decodeTest, nil)

	_, err1 := it.Record()
	require.Error(t, err1)
	_, err2 := it.Record()
	assert.Equal(t, err1, err2)
}

func TestItem_EqualRow(t *testing.T) {
	a := NewItem(NewRow([]string{"id"}, []any{int64(1)}), decodeTest, nil)
	b := NewItem(NewRow([]string{"id"}, []any{int64(1)}), decodeTest, nil)
	c := NewItem(NewRow([]string{"id"}, []any{int64(2)}), decodeTest, nil)

	assert.True(t, a.EqualRow(b))
	assert.False(t, a.EqualRow(c))
}
