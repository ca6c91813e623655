// Package prof provides profiling utilities for the input stack.
//
// It wraps [runtime/pprof] with a small on-demand API and is compiled
// conditionally with the "profile" build tag:
//
//	go build -tags profile
//
// Without the tag every exported function is a no-op, so profiling call
// sites can stay in place with zero overhead.
//
// CPU profiling streams samples and needs explicit start/stop:
//
//	prof.StartCPU("cpu.prof")
//	defer prof.StopCPU()
//
// Other profiles are point-in-time snapshots:
//
//	prof.Write(prof.ProfileHeap, "heap.prof")
package prof
