package audio

import "sync"

// FakeContext is a scriptable Context for tests. Errors can be injected at
// acquisition time to simulate permission denial.
type FakeContext struct {
	AcquireErr error
	DeviceList []DeviceInfo

	mu       sync.Mutex
	captures []*FakeCapture
}

func NewFakeContext() *FakeContext {
	return &FakeContext{}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return f.DeviceList, nil
}

func (f *FakeContext) NewCapture(device *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	if f.AcquireErr != nil {
		return nil, f.AcquireErr
	}
	c := &FakeCapture{device: device}
	f.mu.Lock()
	f.captures = append(f.captures, c)
	f.mu.Unlock()
	return c, nil
}

func (f *FakeContext) Close() {}

// Captures returns every capture created so far.
func (f *FakeContext) Captures() []*FakeCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeCapture(nil), f.captures...)
}

// FakeCapture lets tests feed segments to the registered callback directly.
type FakeCapture struct {
	StartErr error
	StopErr  error

	device *DeviceInfo

	mu      sync.Mutex
	cb      DataCallback
	running bool
	starts  int
	closed  bool
}

func (c *FakeCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.StartErr != nil {
		return c.StartErr
	}
	c.running = true
	c.starts++
	return nil
}

func (c *FakeCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return c.StopErr
}

func (c *FakeCapture) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.closed = true
}

func (c *FakeCapture) SetCallback(cb DataCallback) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

func (c *FakeCapture) ClearCallback() {
	c.mu.Lock()
	c.cb = nil
	c.mu.Unlock()
}

func (c *FakeCapture) DeviceName() string {
	if c.device != nil {
		return c.device.Name
	}
	return "fake"
}

// Feed delivers one segment to the callback, as the platform would.
// It works regardless of running state so tests can exercise late delivery.
func (c *FakeCapture) Feed(data []byte) {
	c.mu.Lock()
	cb := c.cb
	c.mu.Unlock()
	if cb != nil {
		cb(data, uint32(len(data)/2))
	}
}

func (c *FakeCapture) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *FakeCapture) Starts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts
}

func (c *FakeCapture) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
