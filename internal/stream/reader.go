// Package stream implements the pipeline's file-backed endpoints: a Reader
// that feeds the input queue from a JSON Lines file and a Writer that drains
// the output queue into one. Their completion is what signals pipeline
// shutdown to the orchestrator.
package stream

import (
	"bufio"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/beltline/beltline/internal/item"
	"github.com/beltline/beltline/internal/logging"
	"github.com/beltline/beltline/internal/queue"
)

// Reader feeds the input queue with n work items decoded from a JSON Lines
// file, one item per line.
type Reader struct {
	n    int
	path string
	out  *queue.Queue[*item.Item]
	log  *logging.Logger

	err  error
	done chan struct{}
}

// NewReader constructs a reader for n items from path into out.
func NewReader(n int, path string, out *queue.Queue[*item.Item], log *logging.Logger) *Reader {
	return &Reader{
		n:    n,
		path: path,
		out:  out,
		log:  log.Named("reader").With(zap.String("path", path)),
		done: make(chan struct{}),
	}
}

// Start launches the reader's goroutine.
func (r *Reader) Start() {
	go r.run()
}

// Wait blocks until the reader has enqueued all n items or failed, and
// returns the failure if any. This is the join the orchestrator uses to
// decide pipeline shutdown.
func (r *Reader) Wait() error {
	<-r.done
	return r.err
}

func (r *Reader) run() {
	defer close(r.done)

	f, err := os.Open(r.path)
	if err != nil {
		r.err = fmt.Errorf("open input: %w", err)
		return
	}
	defer f.Close()

	read := 0
	scanner := bufio.NewScanner(f)
	for read < r.n && scanner.Scan() {
		var it item.Item
		if err := sonic.Unmarshal(scanner.Bytes(), &it); err != nil {
			r.err = fmt.Errorf("decode item on line %d: %w", read+1, err)
			return
		}
		r.out.Enqueue(&it)
		read++
	}
	if err := scanner.Err(); err != nil {
		r.err = fmt.Errorf("read input: %w", err)
		return
	}
	if read < r.n {
		r.err = fmt.Errorf("input ended after %d of %d items", read, r.n)
		return
	}

	r.log.Info("reader finished", zap.Int("items", read))
}
