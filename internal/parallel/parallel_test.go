package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_VisitsEachIndexOnce(t *testing.T) {
	cfg := WithWorkers(4)
	seen := make([]int32, 257)

	For(len(seen), func(i int) {
		atomic.AddInt32(&seen[i], 1)
	}, cfg)

	for i, v := range seen {
		assert.Equalf(t, int32(1), v, "index %d", i)
	}
}

func TestFor_Sequential(t *testing.T) {
	var order []int
	For(10, func(i int) {
		order = append(order, i)
	}, Sequential())

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestForChunk(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 2}
	seen := make([]int32, 50)

	ForChunk(len(seen), func(s, e int) {
		for i := s; i < e; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	}, cfg)

	for i, v := range seen {
		assert.Equalf(t, int32(1), v, "index %d", i)
	}
}

func TestForChunk_Empty(t *testing.T) {
	called := false
	ForChunk(0, func(_, _ int) { called = true }, DefaultConfig())
	assert.False(t, called)
}

func TestWithWorkers(t *testing.T) {
	assert.False(t, WithWorkers(1).Enabled)
	assert.Equal(t, 6, WithWorkers(6).NumWorkers)
	assert.Equal(t, DefaultConfig().NumWorkers, WithWorkers(0).NumWorkers)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential())
		}
	})
}
