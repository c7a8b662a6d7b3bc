package subbuf

import "github.com/vkngwrapper/arsenal/subbuf/internal/utils"

// OperationQueue is the FIFO of pending operations for a single region. Any number of goroutines may
// enqueue concurrently, but only one may peek and pop.
type OperationQueue struct {
	mutex utils.OptionalMutex

	operations []PendingOperation
	head       int
}

// NewOperationQueue creates an empty queue. If synchronized is false, the queue has no internal locking
// and the consumer must ensure it is only used from one thread.
func NewOperationQueue(synchronized bool) *OperationQueue {
	return &OperationQueue{
		mutex: utils.OptionalMutex{UseMutex: synchronized},
	}
}

// Enqueue appends an operation to the back of the queue
func (q *OperationQueue) Enqueue(operation PendingOperation) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.operations = append(q.operations, operation)
}

// Peek returns the operation at the front of the queue without removing it
func (q *OperationQueue) Peek() (PendingOperation, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.head >= len(q.operations) {
		return PendingOperation{}, false
	}

	return q.operations[q.head], true
}

// Pop removes and returns the operation at the front of the queue
func (q *OperationQueue) Pop() (PendingOperation, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.head >= len(q.operations) {
		return PendingOperation{}, false
	}

	operation := q.operations[q.head]
	q.operations[q.head] = PendingOperation{}
	q.head++

	if q.head == len(q.operations) {
		q.operations = q.operations[:0]
		q.head = 0
	} else if q.head >= 64 && q.head*2 >= len(q.operations) {
		remaining := copy(q.operations, q.operations[q.head:])
		for i := remaining; i < len(q.operations); i++ {
			q.operations[i] = PendingOperation{}
		}
		q.operations = q.operations[:remaining]
		q.head = 0
	}

	return operation, true
}

// Len returns the number of operations waiting in the queue
func (q *OperationQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return len(q.operations) - q.head
}

// Clear discards every waiting operation and returns how many were discarded
func (q *OperationQueue) Clear() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	count := len(q.operations) - q.head
	for i := range q.operations {
		q.operations[i] = PendingOperation{}
	}
	q.operations = q.operations[:0]
	q.head = 0

	return count
}
