package diagnostics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOnceSinkDedupesByKey(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewOnce(zap.New(core))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.WarnOnce("missing_schema:invites", "signal unavailable")
		}()
	}
	wg.Wait()
	sink.WarnOnce("missing_schema:bids", "signal unavailable")

	warns := logs.FilterMessage("signal unavailable").All()
	assert.Len(t, warns, 2)
	assert.Equal(t, "missing_schema:invites", logs.FilterField(zap.String("cause", "missing_schema:invites")).All()[0].ContextMap()["cause"])
}

func TestOnceSinkErrorsAreNotDeduped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewOnce(zap.New(core))

	sink.Error("load failed", zap.Int("thread_count", 3))
	sink.Error("load failed", zap.Int("thread_count", 3))

	assert.Equal(t, 2, logs.FilterMessage("load failed").Len())
}

func TestNop(t *testing.T) {
	s := Nop()
	s.WarnOnce("k", "m")
	s.Error("m")
}
