package client

import (
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/platform"
)

// Client is the OS-facing event loop (L8): it owns the window, the timer
// manager, and the deq that carries ASYNC callback payloads to whichever
// goroutine calls Process. Generalizes engine/core/events.go's
// EventRegister/EventFire global table into instance state, so more than
// one Client can exist in a process (e.g. in tests).
type Client struct {
	mu        sync.Mutex
	platform  *platform.Platform
	callbacks map[EventCode][]registration
	nextReg   uint32
	timers    map[uint32]*Timer
	nextTimer uint32
	deq       *Deq
	proc      *Proc
	stop      chan struct{}
	startTime time.Time
}

// now reports seconds elapsed since the Client was constructed. Uses Go's
// monotonic clock rather than glfw.GetTime() so timers work before the
// window (and glfw) have been started, and in tests that never open one.
func (c *Client) now() float64 {
	return time.Since(c.startTime).Seconds()
}

func New() (*Client, error) {
	p, err := platform.New()
	if err != nil {
		return nil, err
	}
	deq := NewDeq()
	c := &Client{
		platform:  p,
		callbacks: make(map[EventCode][]registration),
		timers:    make(map[uint32]*Timer),
		deq:       deq,
		stop:      make(chan struct{}),
		startTime: time.Now(),
	}
	c.proc = deq.Proc(0, []uint32{asyncQueue}, DepthFirst)
	deq.Callback(asyncQueue, 0, func(item DeqItem) {
		if fn, ok := item.Value.(func()); ok {
			fn()
		}
	})
	return c, nil
}

// Platform exposes the underlying window/surface owner (host.Surfacer).
func (c *Client) Platform() *platform.Platform { return c.platform }

// Startup opens the window and fires EventInit.
func (c *Client) Startup(title string, width, height int) error {
	if err := c.platform.Startup(title, 0, 0, width, height, c); err != nil {
		return err
	}
	c.fire(EventInit, nil)
	return nil
}

// On registers fn for code, running inline (Sync) or via the deq (Async).
// It returns a registration id that Off can later use to remove it.
func (c *Client) On(code EventCode, mode CallbackMode, fn Callback) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextReg++
	id := c.nextReg
	c.callbacks[code] = append(c.callbacks[code], registration{id: id, mode: mode, fn: fn})
	return id
}

// Off removes a callback previously registered with On, the generalization
// of engine/core/events.go's EventUnregister from listener-identity lookup
// to registration-id lookup (Go func values aren't comparable). Reports
// whether a matching registration was found.
func (c *Client) Off(code EventCode, id uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	regs := c.callbacks[code]
	idx := slices.IndexFunc(regs, func(r registration) bool { return r.id == id })
	if idx < 0 {
		return false
	}
	c.callbacks[code] = slices.Delete(regs, idx, idx+1)
	return true
}

func (c *Client) fire(code EventCode, data any) {
	c.mu.Lock()
	regs := append([]registration(nil), c.callbacks[code]...)
	c.mu.Unlock()
	for _, r := range regs {
		switch r.mode {
		case Sync:
			r.fn(data)
		case Async:
			fn := r.fn
			c.deq.Enqueue(asyncQueue, DeqItem{Type: 0, Value: func() { fn(data) }})
		}
	}
}

// NewTimer creates and registers a timer, returning its id for EventTimer
// payloads and StopTimer calls.
func (c *Client) NewTimer(delay, period float64, maxCount uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextTimer++
	id := c.nextTimer
	c.timers[id] = NewTimer(delay, period, maxCount)
	c.timers[id].Start(c.now())
	return id
}

func (c *Client) StopTimer(id uint32) {
	c.mu.Lock()
	t := c.timers[id]
	c.mu.Unlock()
	if t != nil {
		t.Stop()
	}
}

// Run pumps glfw events and fires EventFrame/EventTimer once per iteration
// until the window is closed or Stop is called, the generalization of
// engine/platform/platform.go's empty PumpMessages into an owned loop.
func (c *Client) Run() {
	for {
		select {
		case <-c.stop:
			c.fire(EventDestroy, nil)
			return
		default:
		}
		if c.platform.ShouldClose() {
			c.fire(EventDestroy, nil)
			return
		}
		c.platform.PollEvents()
		c.deq.Process(c.proc)

		now := c.now()
		c.mu.Lock()
		ids := maps.Keys(c.timers)
		c.mu.Unlock()
		for _, id := range ids {
			c.mu.Lock()
			t := c.timers[id]
			c.mu.Unlock()
			if t == nil {
				continue
			}
			if n := t.Tick(now); n > 0 {
				c.fire(EventTimer, TimerEvent{TimerID: id, FireIdx: n, Time: now})
			}
		}
		c.fire(EventFrame, nil)
		time.Sleep(time.Millisecond)
	}
}

// Thread starts Run on its own goroutine, returning immediately (spec.md
// §5.10's Thread, paired with Join).
func (c *Client) Thread() {
	go c.Run()
}

// Stop signals Run to exit on its next iteration.
func (c *Client) Stop() {
	close(c.stop)
}

// Join waits up to the platform window closing; callers that used Thread
// should instead wait on an external WaitGroup, since Run owns no state
// Join could block on beyond glfw's own ShouldClose polling.
func (c *Client) Join() {
	for !c.platform.ShouldClose() {
		time.Sleep(10 * time.Millisecond)
	}
}

// OnKey implements platform.InputSink.
func (c *Client) OnKey(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	c.fire(EventKeyboard, KeyboardEvent{Key: int(key), Action: MouseAction(action), Mods: int(mods)})
}

// OnMouseButton implements platform.InputSink.
func (c *Client) OnMouseButton(button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	c.fire(EventMouse, MouseEvent{Button: MouseAction(button), Action: MouseAction(action)})
}

// OnCursorPos implements platform.InputSink.
func (c *Client) OnCursorPos(x, y float64) {
	c.fire(EventMouse, MouseEvent{X: x, Y: y})
}

// OnScroll implements platform.InputSink.
func (c *Client) OnScroll(xoff, yoff float64) {
	c.fire(EventMouse, MouseEvent{Wheel: yoff})
}

// OnFramebufferSize implements platform.InputSink.
func (c *Client) OnFramebufferSize(width, height int) {
	c.fire(EventWindowResize, ResizeEvent{Width: width, Height: height})
}

// Shutdown tears down the window and the event system.
func (c *Client) Shutdown() error {
	if err := c.platform.Shutdown(); err != nil {
		return core.NewError(core.ErrorKindUnsupportedFeature, err)
	}
	return nil
}
