package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New()
	require.NotNil(t, r)
	assert.Zero(t, r.Len())
	assert.Empty(t, r.Names())
}

func TestRegister(t *testing.T) {
	t.Run("first registration wins", func(t *testing.T) {
		r := New()
		first := &struct{ id int }{1}
		second := &struct{ id int }{2}

		require.NoError(t, r.Register("sensor", first))
		err := r.Register("sensor", second)
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.ErrorContains(t, err, `"sensor"`)

		got, ok := r.Lookup("sensor")
		require.True(t, ok)
		assert.Same(t, first, got)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		r := New()
		assert.Error(t, r.Register("", 1))
		assert.Zero(t, r.Len())
	})

	t.Run("services reserve their name", func(t *testing.T) {
		r := New()
		require.NoError(t, r.Register("banner", nil))

		v, ok := r.Lookup("banner")
		assert.True(t, ok)
		assert.Nil(t, v)
		assert.ErrorIs(t, r.Register("banner", 1), ErrDuplicate)
	})
}

func TestLookup_Idempotent(t *testing.T) {
	r := New()
	inst := &struct{ name string }{"thermo"}
	require.NoError(t, r.Register("thermo", inst))

	a, ok := r.Lookup("thermo")
	require.True(t, ok)
	b, ok := r.Lookup("thermo")
	require.True(t, ok)
	assert.Same(t, a, b)

	_, ok = r.Lookup("absent")
	assert.False(t, ok)
	assert.False(t, r.Has("absent"))
}

func TestNames_RegistrationOrder(t *testing.T) {
	r := New()
	for _, n := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(n, n))
	}
	names := r.Names()
	assert.Equal(t, []string{"c", "a", "b"}, names)

	names[0] = "mutated"
	assert.Equal(t, "c", r.Names()[0], "Names returns a copy")
}

func TestRegistry_ConcurrentReaders(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("a", 1))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v, ok := r.Lookup("a")
				assert.True(t, ok)
				assert.Equal(t, 1, v)
			}
		}()
	}
	wg.Wait()
}
