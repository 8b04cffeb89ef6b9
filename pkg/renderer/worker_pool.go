package renderer

import (
	"runtime"
	"sync"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile  *Tile
	Frame *frameJob
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	Stats TileStats
}

// WorkerPool manages parallel tile rendering. Workers live for the lifetime
// of the renderer and serve every frame.
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID          int
	tiles       *TileRenderer
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, numWorkers*4),
		resultQueue: make(chan TileResult, numWorkers*4),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			tiles:       NewTileRenderer(),
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// RenderFrame renders every tile of job and blocks until all are done
func (wp *WorkerPool) RenderFrame(job *frameJob, tiles []*Tile) RenderStats {
	go func() {
		for _, tile := range tiles {
			wp.taskQueue <- TileTask{Tile: tile, Frame: job}
		}
	}()

	var stats RenderStats
	for range tiles {
		result := <-wp.resultQueue
		stats.add(result.Stats)
	}
	return stats
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		// Tiles never overlap, so writing straight into the frame is safe
		stats := w.tiles.RenderTileBounds(task.Frame, task.Tile.Bounds)
		w.resultQueue <- TileResult{Stats: stats}
	}
}
