package subbuf_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/subbuf"
	"github.com/vkngwrapper/arsenal/subbuf/hostmem"
	"go.uber.org/goleak"
	"golang.org/x/exp/slog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard))
}

type hostRegion struct {
	*subbuf.Region
	buffer  *hostmem.Buffer
	context *hostmem.Context
}

func newHostRegion(t *testing.T, capacity, stride int, mode subbuf.AccessMode, flags subbuf.RegionCreateFlags) *hostRegion {
	logger := testLogger()
	buffer := hostmem.NewBuffer(capacity)
	context := hostmem.NewContext(logger, true)

	region, err := subbuf.New(logger, subbuf.CreateOptions{
		Capacity: capacity,
		Stride:   stride,
		Mode:     mode,
		Flags:    flags,
		Backing:  buffer,
		Context:  context,
		Name:     mode.String(),
	})
	require.NoError(t, err)

	return &hostRegion{
		Region:  region,
		buffer:  buffer,
		context: context,
	}
}

func sequence(start byte, count int) []byte {
	data := make([]byte, count)
	for i := range data {
		data[i] = start + byte(i)
	}
	return data
}

type completionLog struct {
	results []subbuf.OperationResult
}

func (l *completionLog) record(result subbuf.OperationResult) {
	l.results = append(l.results, result)
}

func (l *completionLog) offsets() []int {
	var offsets []int
	for _, result := range l.results {
		offsets = append(offsets, result.Offset)
	}
	return offsets
}

func (l *completionLog) strategies() []subbuf.WriteStrategy {
	var strategies []subbuf.WriteStrategy
	for _, result := range l.results {
		strategies = append(strategies, result.Strategy)
	}
	return strategies
}
