package metricstest

import (
	"testing"
	"testing/synctest"
	"time"
)

func TestMockMetrics(t *testing.T) {
	m := &MockMetrics{Prefix: "test."}

	t.Run("test-measure-lookup", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			start := time.Now()
			time.Sleep(2 * time.Second)
			m.MeasureLookup("literal", start)

			a, ok := m.measures["test.routing.lookup.literal"]
			if !ok {
				t.Fatal("Failed to find measure")
			}

			if len(a) != 1 || a[0] != 2*time.Second {
				t.Fatalf("Failed to have one measurement of two seconds, got: %v", a)
			}
		})
	})

	t.Run("test-inc-rebuilds", func(t *testing.T) {
		m.IncRebuilds("rebuilt")
		m.IncRebuilds("rebuilt")
		if i := m.Counter("routing.rebuilds.rebuilt"); i != 2 {
			t.Fatalf("Failed to get the right value after inc: %d", i)
		}
	})

	t.Run("test-set-registrations", func(t *testing.T) {
		m.SetRegistrations("wildcard", 3)
		m.SetRegistrations("wildcard", 2)
		if v := m.Gauge("routing.registrations.wildcard"); v != 2 {
			t.Fatalf("Failed to get the right gauge value: %v", v)
		}
	})

	t.Run("test-content-cache", func(t *testing.T) {
		m.IncContentCache("local", "hit")
		if i := m.Counter("content.cache.local.hit"); i != 1 {
			t.Fatalf("Failed to count the cache hit: %d", i)
		}
	})

	t.Run("test-content-fetch", func(t *testing.T) {
		m.MeasureContentFetch("ok", time.Now())
		if n := m.Measures("content.fetch.ok"); n != 1 {
			t.Fatalf("Failed to measure the fetch: %d", n)
		}
	})
}
