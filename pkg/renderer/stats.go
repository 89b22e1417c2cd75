package renderer

import (
	"fmt"
	"sync/atomic"
)

// RenderStats tracks tiled rendering progress across workers
type RenderStats struct {
	tilesCompleted int64
	totalSamples   int64
}

func (rs *RenderStats) addTile(samples int) {
	atomic.AddInt64(&rs.tilesCompleted, 1)
	atomic.AddInt64(&rs.totalSamples, int64(samples))
}

// TilesCompleted returns the number of finished tiles
func (rs *RenderStats) TilesCompleted() int {
	return int(atomic.LoadInt64(&rs.tilesCompleted))
}

// TotalSamples returns the number of pixel samples taken so far
func (rs *RenderStats) TotalSamples() int64 {
	return atomic.LoadInt64(&rs.totalSamples)
}

func (rs *RenderStats) String() string {
	return fmt.Sprintf("%d tiles, %d samples", rs.TilesCompleted(), rs.TotalSamples())
}
