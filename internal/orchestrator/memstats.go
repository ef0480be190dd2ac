package orchestrator

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/specialistvlad/smartnodego/internal/ctxlog"
)

// logHeap logs heap usage relative to base when debug logging is enabled and
// returns the current allocation. Reading memory statistics stops the world,
// so nothing is read otherwise.
func logHeap(ctx context.Context, phase string, base uint64) uint64 {
	logger := ctxlog.FromContext(ctx)
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return 0
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	logger.Debug("Heap usage.",
		"phase", phase,
		"heap_alloc", ms.HeapAlloc,
		"heap_objects", ms.HeapObjects,
		"delta", int64(ms.HeapAlloc)-int64(base),
	)
	return ms.HeapAlloc
}
