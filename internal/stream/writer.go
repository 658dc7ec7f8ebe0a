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

// Writer drains n work items from the output queue and appends them to a
// JSON Lines file, one item per line, in the order they are dequeued.
type Writer struct {
	n    int
	path string
	in   *queue.Queue[*item.Item]
	log  *logging.Logger

	err  error
	done chan struct{}
}

// NewWriter constructs a writer for n items from in into path.
func NewWriter(n int, path string, in *queue.Queue[*item.Item], log *logging.Logger) *Writer {
	return &Writer{
		n:    n,
		path: path,
		in:   in,
		log:  log.Named("writer").With(zap.String("path", path)),
		done: make(chan struct{}),
	}
}

// Start launches the writer's goroutine.
func (w *Writer) Start() {
	go w.run()
}

// Wait blocks until the writer has drained all n items or failed, and
// returns the failure if any.
func (w *Writer) Wait() error {
	<-w.done
	return w.err
}

func (w *Writer) run() {
	defer close(w.done)

	f, err := os.Create(w.path)
	if err != nil {
		w.err = fmt.Errorf("create output: %w", err)
		return
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	for written := 0; written < w.n; written++ {
		it := w.in.Dequeue()
		line, err := sonic.Marshal(it)
		if err != nil {
			w.err = fmt.Errorf("encode item key=%d: %w", it.Key, err)
			return
		}
		line = append(line, '\n')
		if _, err := buf.Write(line); err != nil {
			w.err = fmt.Errorf("write output: %w", err)
			return
		}
	}
	if err := buf.Flush(); err != nil {
		w.err = fmt.Errorf("flush output: %w", err)
		return
	}

	w.log.Info("writer finished", zap.Int("items", w.n))
}
