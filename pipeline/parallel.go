package pipeline

import (
	"runtime"
	"sync"
)

// workChunk represents a range of particles for a worker to process.
type workChunk struct {
	start, end int
	fs         *frameState
	frame      *Frame
}

// parallelState holds the persistent worker pool.
type parallelState struct {
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &parallelState{numWorkers: workers}
}

// startWorkers launches persistent worker goroutines.
func (ps *parallelState) startWorkers(p *Pipeline) {
	if ps.running {
		return
	}

	ps.workChan = make(chan workChunk, ps.numWorkers)
	ps.doneChan = make(chan struct{}, ps.numWorkers)
	ps.stopChan = make(chan struct{})
	ps.running = true

	for i := 0; i < ps.numWorkers; i++ {
		ps.wg.Add(1)
		go ps.worker(p)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (ps *parallelState) stopWorkers() {
	if !ps.running {
		return
	}

	close(ps.stopChan)
	ps.wg.Wait()
	close(ps.workChan)
	close(ps.doneChan)
	ps.running = false
}

func (ps *parallelState) worker(p *Pipeline) {
	defer ps.wg.Done()

	for {
		select {
		case <-ps.stopChan:
			return
		case chunk, ok := <-ps.workChan:
			if !ok {
				return
			}
			p.computeChunk(chunk.start, chunk.end, chunk.fs, chunk.frame)
			ps.doneChan <- struct{}{}
		}
	}
}

// computeParallel splits n particles across the pool and waits for all
// chunks. Chunks write disjoint ranges of the blend buffer and the frame.
func (p *Pipeline) computeParallel(n int, fs *frameState, f *Frame) {
	ps := p.parallel
	if !ps.running {
		ps.startWorkers(p)
	}

	chunkSize := (n + ps.numWorkers - 1) / ps.numWorkers

	dispatched := 0
	for w := 0; w < ps.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		ps.workChan <- workChunk{start: start, end: end, fs: fs, frame: f}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-ps.doneChan
	}
}
