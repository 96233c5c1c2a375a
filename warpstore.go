package warpbench

// Warp-level store primitives: strategies for writing a logical warp's
// per-thread register data back to device memory.
//
// A logical warp of warpSize lanes holds warpSize*itemsPerThread elements in
// a blocked arrangement: lane l owns elements [l*itemsPerThread,
// (l+1)*itemsPerThread). A store writes that tile to memory either in the
// same blocked order (Direct, Vectorize, Transpose) or interleaved by lane
// (Striped). On a GPU the variants differ in coalescing behavior; in this
// emulation they differ in access pattern only, which is what the
// throughput benchmark probes.

// Element is the set of numeric types a warp store can move.
type Element interface {
	~int32 | ~uint32 | ~float32 | ~int64 | ~uint64 | ~float64
}

// StoreAlgorithm selects the data-layout strategy of a warp store.
type StoreAlgorithm int

const (
	// StoreDirect writes the blocked arrangement item by item.
	StoreDirect StoreAlgorithm = iota
	// StoreStriped writes lane l's item i to position i*warpSize+l.
	StoreStriped
	// StoreVectorize writes the blocked arrangement as one bulk move per
	// lane. Same memory layout as StoreDirect.
	StoreVectorize
	// StoreTranspose stages the blocked arrangement in temp storage and
	// flushes it with striped accesses once every lane has contributed.
	// Same memory layout as StoreDirect.
	StoreTranspose
)

func (a StoreAlgorithm) String() string {
	switch a {
	case StoreDirect:
		return "direct"
	case StoreStriped:
		return "striped"
	case StoreVectorize:
		return "vectorize"
	case StoreTranspose:
		return "transpose"
	default:
		return "unknown"
	}
}

// WarpStore performs the store for one logical warp. One instance per warp
// per block; it carries the warp's temp storage, the counterpart of the
// shared-memory staging area a GPU implementation would use. Instances are
// not safe for concurrent use, matching the one-warp-one-owner model.
type WarpStore[T Element] struct {
	alg      StoreAlgorithm
	warpSize int
	items    int

	// Transpose staging state. Lanes stage into temp; the tile is flushed
	// once all warpSize lanes have contributed, standing in for the warp
	// barrier. The seen bitmap makes the flush independent of lane order
	// and of lanes storing repeatedly between flushes.
	temp   []T
	seen   []bool
	staged int
}

// NewWarpStore creates a store for a logical warp of the given width with
// itemsPerThread elements per lane.
func NewWarpStore[T Element](alg StoreAlgorithm, warpSize, itemsPerThread int) *WarpStore[T] {
	w := &WarpStore[T]{
		alg:      alg,
		warpSize: warpSize,
		items:    itemsPerThread,
	}
	if alg == StoreTranspose {
		w.temp = make([]T, warpSize*itemsPerThread)
		w.seen = make([]bool, warpSize)
	}
	return w
}

// TileSize returns the number of elements the warp stores per invocation.
func (w *WarpStore[T]) TileSize() int {
	return w.warpSize * w.items
}

// Store writes lane's itemsPerThread register values into dst, which must
// cover the warp's tile. For StoreTranspose the write is deferred until
// every lane of the warp has stored since the last flush.
func (w *WarpStore[T]) Store(dst []T, lane int, items []T) {
	switch w.alg {
	case StoreDirect:
		base := lane * w.items
		for i, v := range items {
			dst[base+i] = v
		}

	case StoreStriped:
		for i, v := range items {
			dst[i*w.warpSize+lane] = v
		}

	case StoreVectorize:
		copy(dst[lane*w.items:(lane+1)*w.items], items)

	case StoreTranspose:
		copy(w.temp[lane*w.items:(lane+1)*w.items], items)
		if !w.seen[lane] {
			w.seen[lane] = true
			w.staged++
		}
		if w.staged == w.warpSize {
			w.flush(dst)
		}
	}
}

// flush writes the staged tile with striped accesses: for each item index,
// one element per lane. The resulting layout is blocked, identical to
// StoreDirect; only the store order differs.
func (w *WarpStore[T]) flush(dst []T) {
	for i := 0; i < w.items; i++ {
		for l := 0; l < w.warpSize; l++ {
			p := i*w.warpSize + l
			dst[p] = w.temp[p]
		}
	}
	for l := range w.seen {
		w.seen[l] = false
	}
	w.staged = 0
}
