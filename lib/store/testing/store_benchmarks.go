package testing

import (
	"fmt"
	"sync/atomic"
	"testing"
)

// RunStoreBenchmarks runs all benchmarks for a IStore implementation
func RunStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			s := factory()
			value := []byte("benchmark-value")
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = s.Set(fmt.Sprintf("key-%d", i), value)
			}
		})

		b.Run("Get", func(b *testing.B) {
			s := factory()
			for i := 0; i < 1000; i++ {
				_ = s.Set(fmt.Sprintf("key-%d", i), []byte("benchmark-value"))
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _, _ = s.Get(fmt.Sprintf("key-%d", i%1000))
			}
		})

		b.Run("ParallelMixed", func(b *testing.B) {
			s := factory()
			var counter atomic.Uint64
			value := []byte("benchmark-value")
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					i := counter.Add(1)
					key := fmt.Sprintf("key-%d", i%1000)
					// 1 write per 4 reads
					if i%5 == 0 {
						_ = s.Set(key, value)
					} else {
						_, _, _ = s.Get(key)
					}
				}
			})
		})
	})
}
