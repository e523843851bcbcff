// Package connectivity reports online/offline transitions of the device or
// process to interested consumers.
//
// The core of the package is the Monitor interface: consumers subscribe and
// receive Event values on a channel rather than polling. Transitions are
// delivered at least once; consumers must tolerate duplicates.
//
// MemoryMonitor is the in-process implementation. It fans events out to every
// subscriber over buffered channels and never blocks the producer: a
// subscriber that cannot keep up has events dropped and is detached, which is
// acceptable because consumers only care about the latest state and can read
// Status() at any time.
//
// # Usage
//
//	mon := connectivity.NewMemoryMonitor(connectivity.Offline)
//	sub := mon.Subscribe(ctx)
//	defer sub.Close()
//
//	go func() {
//	    for ev := range sub.Events() {
//	        if ev.Status == connectivity.Online {
//	            // drain the offline queue
//	        }
//	    }
//	}()
//
//	mon.SetOnline() // platform reported connectivity restored
package connectivity
