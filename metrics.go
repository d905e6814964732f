package mongo

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
)

// poolMetrics exposes pool and cursor counters in VictoriaMetrics/Prometheus
// exposition format. WriteMetrics renders them; wiring the result behind
// an HTTP handler is left to the caller, consistent with this library
// not owning any server.
type poolMetrics struct {
	set *metrics.Set

	slotsInUseVal atomic.Int64
	slotsTotalVal atomic.Int64
}

func newPoolMetrics() *poolMetrics {
	m := &poolMetrics{set: metrics.NewSet()}
	m.set.GetOrCreateGauge("mongo_pool_slots_in_use", func() float64 {
		return float64(m.slotsInUseVal.Load())
	})
	m.set.GetOrCreateGauge("mongo_pool_slots_total", func() float64 {
		return float64(m.slotsTotalVal.Load())
	})
	return m
}

func (m *poolMetrics) slotsInUse(slots int) {
	m.slotsInUseVal.Store(int64(slots))
}

func (m *poolMetrics) slotsTotal(slots int) {
	m.slotsTotalVal.Store(int64(slots))
}

func (m *poolMetrics) acquireWaitSeconds(seconds float64) {
	m.set.GetOrCreateHistogram("mongo_pool_acquire_wait_seconds").Update(seconds)
}

func (m *poolMetrics) commandIssued(opCode int32) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`mongo_commands_total{opcode="%d"}`, opCode)).Inc()
}

func (m *poolMetrics) cursorBatchFetched(docs int) {
	m.set.GetOrCreateCounter("mongo_cursor_batches_total").Inc()
	m.set.GetOrCreateCounter("mongo_cursor_documents_total").Add(docs)
}

// WriteMetrics renders the client's metrics in Prometheus exposition
// format to w.
func (c *Client) WriteMetrics(w io.Writer) {
	c.metrics.set.WritePrometheus(w)
}
