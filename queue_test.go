package subbuf_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/subbuf"
)

func TestOperationQueueFIFO(t *testing.T) {
	queue := subbuf.NewOperationQueue(true)

	_, ok := queue.Peek()
	require.False(t, ok)
	_, ok = queue.Pop()
	require.False(t, ok)

	for i := 0; i < 200; i++ {
		queue.Enqueue(subbuf.PendingOperation{Kind: subbuf.OperationSetData, TargetOffset: i})
	}
	require.Equal(t, 200, queue.Len())

	for i := 0; i < 150; i++ {
		peeked, ok := queue.Peek()
		require.True(t, ok)
		require.Equal(t, i, peeked.TargetOffset)

		popped, ok := queue.Pop()
		require.True(t, ok)
		require.Equal(t, i, popped.TargetOffset)
	}
	require.Equal(t, 50, queue.Len())

	queue.Enqueue(subbuf.PendingOperation{Kind: subbuf.OperationGetData, TargetOffset: 1000})
	require.Equal(t, 51, queue.Len())

	for i := 150; i < 200; i++ {
		popped, ok := queue.Pop()
		require.True(t, ok)
		require.Equal(t, i, popped.TargetOffset)
	}

	popped, ok := queue.Pop()
	require.True(t, ok)
	require.Equal(t, subbuf.OperationGetData, popped.Kind)
	require.Equal(t, 0, queue.Len())
}

func TestOperationQueueClear(t *testing.T) {
	queue := subbuf.NewOperationQueue(false)

	for i := 0; i < 10; i++ {
		queue.Enqueue(subbuf.PendingOperation{Kind: subbuf.OperationStreamWrite})
	}
	_, _ = queue.Pop()

	require.Equal(t, 9, queue.Clear())
	require.Equal(t, 0, queue.Len())
	require.Equal(t, 0, queue.Clear())
}

func TestOperationQueueConcurrentProducers(t *testing.T) {
	queue := subbuf.NewOperationQueue(true)

	var waitGroup sync.WaitGroup
	for producer := 0; producer < 4; producer++ {
		waitGroup.Add(1)
		go func(producer int) {
			defer waitGroup.Done()
			for i := 0; i < 500; i++ {
				queue.Enqueue(subbuf.PendingOperation{TargetOffset: producer*1000 + i})
			}
		}(producer)
	}
	waitGroup.Wait()

	// Each producer's operations come out in the order it enqueued them
	lastSeen := map[int]int{0: -1, 1: -1, 2: -1, 3: -1}
	for queue.Len() > 0 {
		op, ok := queue.Pop()
		require.True(t, ok)

		producer := op.TargetOffset / 1000
		index := op.TargetOffset % 1000
		require.Greater(t, index, lastSeen[producer])
		lastSeen[producer] = index
	}

	for producer := 0; producer < 4; producer++ {
		require.Equal(t, 499, lastSeen[producer])
	}
}

func TestKindAndStrategyStrings(t *testing.T) {
	require.Equal(t, "SetData", subbuf.OperationSetData.String())
	require.Equal(t, "OperationKind(42)", subbuf.OperationKind(42).String())
	require.Equal(t, "NoOverwrite", subbuf.WriteStrategyNoOverwrite.String())
	require.Equal(t, "DynamicRing", subbuf.AccessModeDynamicRing.String())
	require.Equal(t, "MapRead", subbuf.MapRead.String())
	require.Equal(t, "Immediate", subbuf.PriorityImmediate.String())
	require.False(t, subbuf.MapRead.IsWrite())
	require.True(t, subbuf.MapWriteNoOverwrite.IsWrite())
	require.True(t, subbuf.MapReadWrite.IsWrite())
	require.True(t, subbuf.MapReadWrite.IsRead())
	require.False(t, subbuf.MapWrite.IsRead())
	require.Equal(t, "MapReadWrite", subbuf.MapReadWrite.String())
	require.True(t, subbuf.AccessModeStaging.CPUReadable())
	require.False(t, subbuf.AccessModeDefault.CPUWritable())
}
