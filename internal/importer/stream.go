package importer

import "context"

// Stream runs im on its own goroutine and delivers every Result of the run,
// terminal value last, on the returned channel, which is then closed.
// Results are queued without bound so the pipeline never waits for the
// consumer.
//
// Once ctx is done the channel is closed, possibly before the terminal
// value, and results still queued are dropped. A consumer that stops reading
// must cancel ctx.
func Stream(ctx context.Context, im *Importer, src Source, sink TransactionSink) <-chan Result {
	in := make(chan Result)
	out := make(chan Result)

	go queue(ctx, in, out)
	go func() {
		defer close(in)
		res := im.Run(ctx, src, sink, ProgressFunc(func(p Progress) {
			in <- p
		}))
		in <- res
	}()
	return out
}

// queue forwards in to out through an unbounded buffer. After ctx is done it
// closes out and discards in until the producer closes it.
func queue(ctx context.Context, in <-chan Result, out chan<- Result) {
	var pending []Result
	for in != nil || len(pending) > 0 {
		var (
			send chan<- Result
			next Result
		)
		if len(pending) > 0 {
			send = out
			next = pending[0]
		}
		select {
		case r, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			pending = append(pending, r)
		case send <- next:
			pending = pending[1:]
		case <-ctx.Done():
			close(out)
			if in != nil {
				for range in {
				}
			}
			return
		}
	}
	close(out)
}

// Collect drains ch and returns its values in order.
func Collect(ch <-chan Result) []Result {
	var all []Result
	for r := range ch {
		all = append(all, r)
	}
	return all
}
