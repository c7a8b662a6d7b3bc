package subbuf

//go:generate mockgen -source callbacks.go -destination ./mocks/callbacks.go -package mocks

// MemoryAccounting receives informational notifications about device memory claimed by regions. It is
// called when a Region is created and when it is destroyed.
type MemoryAccounting interface {
	NotifyAllocated(bytes int)
	NotifyDeallocated(bytes int)
}

type AllocateRegionCallback func(
	region *Region,
	size int,
	userData interface{},
)

type FreeRegionCallback func(
	region *Region,
	size int,
	userData interface{},
)

// MemoryCallbackOptions is a callback-based alternative to MemoryAccounting, for consumers that need
// region-level info about claimed memory
type MemoryCallbackOptions struct {
	Allocate AllocateRegionCallback
	Free     FreeRegionCallback
	UserData interface{}
}

type memoryCallbacks struct {
	Accounting MemoryAccounting
	Callbacks  *MemoryCallbackOptions
	Region     *Region
}

func (c *memoryCallbacks) Allocate(size int) {
	if c.Accounting != nil {
		c.Accounting.NotifyAllocated(size)
	}

	if c.Callbacks != nil && c.Callbacks.Allocate != nil {
		c.Callbacks.Allocate(c.Region, size, c.Callbacks.UserData)
	}
}

func (c *memoryCallbacks) Free(size int) {
	if c.Accounting != nil {
		c.Accounting.NotifyDeallocated(size)
	}

	if c.Callbacks != nil && c.Callbacks.Free != nil {
		c.Callbacks.Free(c.Region, size, c.Callbacks.UserData)
	}
}
