package machine

// Profile is the snapshot of monotonic counters returned by a successful
// Run. Counters never decrease during execution.
type Profile struct {
	ExecutedInstructions uint64
	MemoryReads          uint64
	MemoryWrites         uint64
	Pushes               uint64
	Pops                 uint64
}
