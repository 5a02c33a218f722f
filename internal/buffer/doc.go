// Package buffer provides the in-memory half of the asynchronous log engine.
//
// Producers append formatted lines; a single writer goroutine periodically
// takes everything that has accumulated and writes it to disk outside the
// lock.
//
// # FixedBuffer
//
// FixedBuffer is a byte region of fixed capacity. Append copies as much as
// fits and reports how much that was:
//
//	b := buffer.NewFixed(4096)
//	n := b.Append([]byte("hello\n"))
//	fmt.Println(n, b.Avail())
//
// # DoubleBuffer
//
// DoubleBuffer is the state shared by producers and the writer:
//
//   - current receives appends
//   - spare is swapped in when current is full, so producers do not allocate
//     under the lock
//   - pending is the FIFO of sealed buffers awaiting the writer
//
// Producer side:
//
//	db := buffer.NewDoubleBuffer(buffer.DefaultSize, nil)
//	db.Append("2026/01/02-15:04:05.000000 [INFO] ... \n")
//
// Writer side, once per loop iteration:
//
//	reserve := buffer.NewReserve(db.BufferSize())
//	var drain []*buffer.FixedBuffer
//	for {
//	    drained := db.Swap(interval, reserve, drain)
//	    for _, b := range drained {
//	        sink.Append(b.Bytes())
//	    }
//	    reserve.Refill(drained)
//	    clear(drained)
//	    drain = drained[:0]
//	}
//
// # Ownership
//
// A buffer belongs to exactly one holder at a time: the shared state, the
// writer's drain list or the writer's Reserve. Swap moves buffers between
// them under the lock; Reserve clears a slot when it hands its buffer out.
//
// # Thread Safety
//
// Append, AppendBytes, Signal and Pending are safe for concurrent use.
// Swap and Reserve belong to the single writer goroutine.
package buffer
