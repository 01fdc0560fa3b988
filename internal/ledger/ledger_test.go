package ledger_test

import (
	"sync"
	"testing"

	"github.com/aretw0/sticky/internal/ledger"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_RollbackRunsInReverseOrder(t *testing.T) {
	l := ledger.New()
	var order []string

	l.Record("first", func() { order = append(order, "first") })
	l.Record("second", func() { order = append(order, "second") })
	l.Record("third", func() { order = append(order, "third") })
	require.Equal(t, 3, l.Len())

	assert.True(t, l.Rollback())
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Equal(t, 0, l.Len())
}

func TestLedger_RollbackIsIdempotent(t *testing.T) {
	l := ledger.New()
	count := 0
	l.Record("count", func() { count++ })

	assert.True(t, l.Rollback())
	assert.False(t, l.Rollback())
	assert.False(t, l.Rollback())

	assert.Equal(t, 1, count)
	assert.True(t, l.RolledBack())
}

func TestLedger_ConcurrentRollbackRunsOnce(t *testing.T) {
	l := ledger.New()
	var mu sync.Mutex
	count := 0
	l.Record("count", func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Rollback()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, count)
}

func TestLedger_RecordAfterRollbackUndoesImmediately(t *testing.T) {
	l := ledger.New()
	l.Rollback()

	undone := false
	l.Record("late", func() { undone = true })

	assert.True(t, undone)
	assert.Equal(t, 0, l.Len())
}

func TestLedger_SavesOriginalPaths(t *testing.T) {
	root := domain.NewRoot()
	a := &domain.State{Name: "a", Parent: root}
	a.ComputePath()

	l := ledger.New()
	l.SaveOriginals(root.CanonicalPath(), a.CanonicalPath())

	from, to := l.Originals()
	assert.Equal(t, []string{""}, from.Names())
	assert.Equal(t, []string{"", "a"}, to.Names())
}
