package warpbench

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Device represents a compute device. The emulated device is the host CPU
// with its cores and memory; there is exactly one, with ID 0.
type Device struct {
	ID       int    // Unique device identifier
	Name     string // Human-readable device name
	TotalMem uint64 // Total available memory in bytes
	NumCores int    // Number of CPU cores
}

// Context represents an execution context. It owns the device memory pool
// and the set of streams. A default context is created at init time and
// backs all package-level operations.
type Context struct {
	device        *Device
	mu            sync.Mutex
	streams       map[int]*Stream
	streamID      int32
	memory        *MemoryPool
	defaultStream *Stream
}

// Stream represents an ordered sequence of operations that execute
// asynchronously. Operations within a stream execute in order; operations
// in different streams may execute concurrently.
type Stream struct {
	id    int
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
}

// Dim3 represents 3D dimensions for grid and block configurations,
// matching CUDA's dim3 launch parameters.
type Dim3 struct {
	X, Y, Z int
}

// Size returns the total number of elements covered by the dimensions.
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// ThreadID identifies a thread's position within the execution hierarchy.
// It provides the same indexing semantics as CUDA's built-in variables:
// blockIdx, threadIdx, blockDim, and gridDim.
type ThreadID struct {
	BlockIdx  Dim3
	ThreadIdx Dim3
	BlockDim  Dim3
	GridDim   Dim3
}

// Global returns the global linear thread index along X.
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// Lane returns the thread's index within its logical warp.
func (tid ThreadID) Lane(warpSize int) int {
	return tid.ThreadIdx.X % warpSize
}

// Warp returns the index of the thread's logical warp within its block.
func (tid ThreadID) Warp(warpSize int) int {
	return tid.ThreadIdx.X / warpSize
}

// Kernel represents a compute kernel that can be executed in parallel.
// Implementations must be safe for concurrent Execute calls from multiple
// blocks.
type Kernel interface {
	Execute(tid ThreadID, args ...interface{})
}

// KernelFunc is a function that can be launched as a kernel.
type KernelFunc func(tid ThreadID, args ...interface{})

// Execute implements Kernel.
func (fn KernelFunc) Execute(tid ThreadID, args ...interface{}) {
	fn(tid, args...)
}

// Global runtime state
var (
	defaultDevice  *Device
	defaultContext *Context
	initOnce       sync.Once
)

func init() {
	initOnce.Do(func() {
		defaultDevice = &Device{
			ID:       0,
			Name:     deviceName(),
			TotalMem: getSystemMemory(),
			NumCores: runtime.NumCPU(),
		}

		defaultContext = &Context{
			device:  defaultDevice,
			streams: make(map[int]*Stream),
			memory:  NewMemoryPool(),
		}

		defaultContext.defaultStream = defaultContext.CreateStream()
	})
}

// deviceName synthesizes a device description from the architecture and
// detected SIMD features, e.g. "CPU (amd64, 16 cores, AVX2/FMA)".
func deviceName() string {
	return fmt.Sprintf("CPU (%s, %d cores, %s)",
		runtime.GOARCH, runtime.NumCPU(), CPUInfo())
}

// Malloc allocates device memory of the specified size in bytes from the
// default context. The memory is aligned for SIMD access.
func Malloc(size int) (DevicePtr, error) {
	return defaultContext.Malloc(size)
}

// Free releases device memory allocated by Malloc.
func Free(ptr DevicePtr) error {
	return defaultContext.Free(ptr)
}

// Memcpy copies memory between host and device using the default context.
func Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	return defaultContext.Memcpy(dst, src, size, kind)
}

// Launch executes a kernel on the default stream.
func Launch(kernel Kernel, grid, block Dim3, args ...interface{}) error {
	return defaultContext.Launch(kernel, grid, block, args...)
}

// LaunchFunc executes a kernel function on the default stream.
func LaunchFunc(fn KernelFunc, grid, block Dim3, args ...interface{}) error {
	return defaultContext.LaunchFunc(fn, grid, block, args...)
}

// Synchronize waits for all operations on all streams to complete.
func Synchronize() error {
	return defaultContext.Synchronize()
}

// GetDevice returns the current device.
func GetDevice() *Device {
	return defaultDevice
}

// GetDeviceCount returns the number of available devices, always 1.
func GetDeviceCount() int {
	return 1
}

// GetDeviceProperties returns the properties of the device with the given ID.
func GetDeviceProperties(id int) (*Device, error) {
	if id != 0 {
		return nil, NewDeviceError("GetDeviceProperties",
			fmt.Sprintf("invalid device ID: %d", id))
	}
	return defaultDevice, nil
}

// SetDevice sets the active device. Only device 0 exists.
func SetDevice(id int) error {
	if id != 0 {
		return ErrInvalidDevice
	}
	return nil
}

// Context methods

// CreateStream creates a new execution stream backed by a worker goroutine.
func (ctx *Context) CreateStream() *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := &Stream{
		id:    id,
		tasks: make(chan func(), 1000),
		done:  make(chan struct{}),
	}

	go stream.worker()

	ctx.mu.Lock()
	ctx.streams[id] = stream
	ctx.mu.Unlock()
	return stream
}

// Launch executes a kernel on the default stream.
func (ctx *Context) Launch(kernel Kernel, grid, block Dim3, args ...interface{}) error {
	return ctx.LaunchStream(kernel, grid, block, ctx.defaultStream, args...)
}

// LaunchFunc executes a kernel function on the default stream.
func (ctx *Context) LaunchFunc(fn KernelFunc, grid, block Dim3, args ...interface{}) error {
	return ctx.LaunchStream(fn, grid, block, ctx.defaultStream, args...)
}

// LaunchStream executes a kernel on a specific stream.
func (ctx *Context) LaunchStream(kernel Kernel, grid, block Dim3, stream *Stream, args ...interface{}) error {
	return ctx.launchInternal(kernel.Execute, grid, block, stream, args...)
}

// Synchronize waits for all streams of the context to complete.
func (ctx *Context) Synchronize() error {
	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()

	for _, s := range streams {
		s.Synchronize()
	}
	return nil
}

// Stream methods

func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

// Synchronize waits for all tasks in the stream to complete.
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// Submit adds a task to the stream.
func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}

// getSystemMemory returns total system memory in bytes. The pool does not
// enforce this limit; it only feeds the device description.
func getSystemMemory() uint64 {
	return 16 * 1024 * 1024 * 1024
}
