package dispatcher

import "github.com/Checker-Finance/adapters/vertex-adapter/pkg/model"

// queue is an unbounded FIFO of inbound requests. Transport read pumps
// enqueue without ever blocking; the dispatcher loop drains one request at a
// time. A burst of requests is fully buffered rather than rejected.
type queue struct {
	in  chan model.Request
	out chan model.Request
}

func newQueue() *queue {
	q := &queue{
		in:  make(chan model.Request),
		out: make(chan model.Request),
	}
	go q.pump()
	return q
}

func (q *queue) pump() {
	var pending []model.Request
	for {
		if len(pending) == 0 {
			req, ok := <-q.in
			if !ok {
				close(q.out)
				return
			}
			pending = append(pending, req)
			continue
		}
		select {
		case req, ok := <-q.in:
			if !ok {
				for _, r := range pending {
					q.out <- r
				}
				close(q.out)
				return
			}
			pending = append(pending, req)
		case q.out <- pending[0]:
			pending = pending[1:]
		}
	}
}

// Push enqueues a request. Safe for concurrent use by multiple connections.
func (q *queue) Push(req model.Request) {
	q.in <- req
}
