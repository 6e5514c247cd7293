// Package uploads drives a document from upload through asynchronous
// analysis: trigger processing, then poll its status until it settles,
// times out, errors or is torn down.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/scanpilot/internal/client/client"
	"github.com/dmitrijs2005/scanpilot/internal/client/models"
	"github.com/dmitrijs2005/scanpilot/internal/common"
	"github.com/dmitrijs2005/scanpilot/internal/logging"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 2 * time.Minute
)

// API is the part of client.Client the controller drives.
type API interface {
	UploadFile(ctx context.Context, filename string, content io.Reader) (*models.Upload, error)
	GetUpload(ctx context.Context, id string) (*models.Upload, error)
	ProcessUpload(ctx context.Context, req models.ProcessFileRequest) (*models.FileProcessingResponse, error)
	DeleteUpload(ctx context.Context, id string) error
}

type Controller struct {
	api      API
	interval time.Duration
	timeout  time.Duration
	log      logging.Logger
	observer Observer

	base   context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	tasks  map[string]*Task
	closed bool
}

type Option func(*Controller)

func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithPollTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

func NewController(api API, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		interval: DefaultPollInterval,
		timeout:  DefaultPollTimeout,
		log:      logging.Discard(),
		tasks:    map[string]*Task{},
	}
	for _, o := range opts {
		o(c)
	}
	c.base, c.stop = context.WithCancel(context.Background())
	return c
}

// Upload validates the file type and submits the file. It is never retried.
func (c *Controller) Upload(ctx context.Context, name string, content io.Reader) (*models.Upload, error) {
	if !common.IsAcceptedDocument(name) {
		err := fmt.Errorf("%w: unsupported file type %q (accepted: %v)", client.ErrValidation, name, common.AcceptedExtensions)
		c.emit(Event{State: StateErrored, Err: err})
		return nil, err
	}

	c.emit(Event{State: StateUploading})

	u, err := c.api.UploadFile(ctx, name, content)
	if err != nil {
		c.log.Warn(ctx, "upload failed", "file", name, "error", err)
		c.emit(Event{State: StateErrored, Err: err})
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	c.log.Info(ctx, "uploaded", "upload_id", u.ID, "file", name, "size", u.FileSize)
	c.emit(Event{UploadID: u.ID, State: StateUploaded, Upload: u})
	return u, nil
}

// Process triggers analysis of uploadID and starts polling it. A task
// already polling the same id is cancelled first. If the trigger fails no
// polling starts and the error is returned.
func (c *Controller) Process(ctx context.Context, uploadID, model string) (*Task, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	c.Cancel(uploadID)

	c.emit(Event{UploadID: uploadID, State: StateTriggering})

	_, err := c.api.ProcessUpload(ctx, models.ProcessFileRequest{UploadID: uploadID, ModelName: model})
	if err != nil {
		c.log.Warn(ctx, "trigger failed", "upload_id", uploadID, "error", err)
		c.emit(Event{UploadID: uploadID, State: StateErrored, Err: err})
		return nil, fmt.Errorf("trigger processing of %s: %w", uploadID, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	pollCtx, cancel := context.WithTimeout(c.base, c.timeout)
	t := newTask(uploadID, cancel)
	prev := c.tasks[uploadID]
	c.tasks[uploadID] = t
	c.wg.Add(1)
	c.mu.Unlock()

	// a concurrent Process for the same id may have slipped in
	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	c.emit(Event{UploadID: uploadID, State: StatePolling})
	go c.poll(pollCtx, t)
	return t, nil
}

// Delete stops any polling for id, then deletes the upload remotely. On
// failure the upload stays and the error is returned.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.Cancel(id)
	if err := c.api.DeleteUpload(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	c.log.Info(ctx, "upload deleted", "upload_id", id)
	return nil
}

// Cancel stops polling id and waits for its goroutine to exit. It reports
// whether a task was running. It must not be called from an Observer.
func (c *Controller) Cancel(id string) bool {
	c.mu.Lock()
	t, ok := c.tasks[id]
	c.mu.Unlock()
	if !ok {
		return false
	}
	t.cancel()
	<-t.done
	return true
}

// Active returns the ids currently being polled, sorted.
func (c *Controller) Active() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.tasks))
	for id := range c.tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close cancels every task and waits for all of them to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// poll owns the task until it settles. Fetches are serialized: the next
// tick is only taken after the previous fetch returned, and ticks that
// piled up meanwhile are dropped.
func (c *Controller) poll(ctx context.Context, t *Task) {
	defer c.wg.Done()
	defer t.cancel()

	log := c.log.With("upload_id", t.id)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.settle(ctx, t, ctxOutcome(ctx))
			return
		case <-ticker.C:
		}

		u, err := c.api.GetUpload(ctx, t.id)
		t.observe(u)

		if err != nil {
			if ctx.Err() != nil {
				c.settle(ctx, t, ctxOutcome(ctx))
				return
			}
			log.Warn(ctx, "status fetch failed", "error", err)
			c.settle(ctx, t, Outcome{State: StateErrored, Err: err})
			return
		}

		last := t.Outcome().Upload
		if last == nil {
			continue
		}
		c.emit(Event{UploadID: t.id, State: StatePolling, Upload: last})

		switch last.Status {
		case models.UploadStatusCompleted:
			c.settle(ctx, t, Outcome{State: StateCompleted})
			return
		case models.UploadStatusFailed:
			c.settle(ctx, t, Outcome{
				State: StateFailed,
				Err:   fmt.Errorf("%w: %s", ErrProcessingFailed, last.ErrorMessage),
			})
			return
		}

		select {
		case <-ticker.C:
		default:
		}
	}
}

func (c *Controller) settle(ctx context.Context, t *Task, o Outcome) {
	final := t.settle(o)

	c.mu.Lock()
	if c.tasks[t.id] == t {
		delete(c.tasks, t.id)
	}
	c.mu.Unlock()

	c.log.Info(ctx, "upload settled", "upload_id", t.id, "state", final.State, "ticks", final.Ticks)
	c.emit(Event{UploadID: t.id, State: final.State, Upload: final.Upload, Err: final.Err})
	close(t.done)
}

func ctxOutcome(ctx context.Context) Outcome {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Outcome{State: StateTimedOut, Err: client.ErrTimeout}
	}
	return Outcome{State: StateCancelled, Err: ErrCancelled}
}

func (c *Controller) emit(e Event) {
	if c.observer != nil {
		c.observer(e)
	}
}
