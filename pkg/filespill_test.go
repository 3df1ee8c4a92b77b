package pkg

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSpill(t *testing.T) {
	t.Run("NewFileSpill", func(t *testing.T) {
		spill, err := NewFileSpill[int]()
		require.NoError(t, err)

		defer func() {
			_ = spill.Close()
			_ = spill.Remove()
		}()

		assert.NotEmpty(t, spill.Path())
		assert.Equal(t, uint64(0), spill.Len())
	})

	t.Run("Append and Get", func(t *testing.T) {
		spill, err := NewFileSpill[string]()
		require.NoError(t, err)

		defer func() {
			_ = spill.Close()
			_ = spill.Remove()
		}()

		require.NoError(t, spill.Append("first"))
		require.NoError(t, spill.Append("second"))
		assert.Equal(t, uint64(2), spill.Len())

		item, err := spill.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "second", item)
	})

	t.Run("Get out of bounds", func(t *testing.T) {
		spill, err := NewFileSpill[int]()
		require.NoError(t, err)

		defer func() {
			_ = spill.Close()
			_ = spill.Remove()
		}()

		_, err = spill.Get(0)
		assert.Error(t, err)
	})

	t.Run("Range preserves append order", func(t *testing.T) {
		spill, err := NewFileSpill[int]()
		require.NoError(t, err)

		defer func() {
			_ = spill.Close()
			_ = spill.Remove()
		}()

		for i := 0; i < 5; i++ {
			require.NoError(t, spill.Append(i*10))
		}

		var seen []int

		err = spill.Range(func(index uint64, item int) error {
			assert.Equal(t, int(index)*10, item)
			seen = append(seen, item)

			return nil
		})
		require.NoError(t, err)
		assert.Len(t, seen, 5)
	})

	t.Run("Range stops on error", func(t *testing.T) {
		spill, err := NewFileSpill[int]()
		require.NoError(t, err)

		defer func() {
			_ = spill.Close()
			_ = spill.Remove()
		}()

		require.NoError(t, spill.Append(1))
		require.NoError(t, spill.Append(2))

		calls := 0
		err = spill.Range(func(uint64, int) error {
			calls++
			return assert.AnError
		})

		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("struct items survive the round trip", func(t *testing.T) {
		type verdictLike struct {
			ID   string
			Kind string
			Tags []string
		}

		spill, err := NewFileSpill[verdictLike]()
		require.NoError(t, err)

		defer func() {
			_ = spill.Close()
			_ = spill.Remove()
		}()

		want := verdictLike{ID: "t1", Kind: "conflict", Tags: []string{"left", "lost"}}
		require.NoError(t, spill.Append(want))

		got, err := spill.Get(0)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestFileSpill_ConcurrentAppend(t *testing.T) {
	spill, err := NewFileSpill[int]()
	require.NoError(t, err)

	defer func() {
		_ = spill.Close()
		_ = spill.Remove()
	}()

	var wg sync.WaitGroup

	const writers = 8

	for i := 0; i < writers; i++ {
		wg.Add(1)

		go func(v int) {
			defer wg.Done()

			for j := 0; j < 25; j++ {
				assert.NoError(t, spill.Append(v))
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, uint64(writers*25), spill.Len())
}

func TestFileSpill_Remove(t *testing.T) {
	spill, err := NewFileSpill[int]()
	require.NoError(t, err)

	path := spill.Path()
	require.NoError(t, spill.Close())
	require.NoError(t, spill.Remove())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
