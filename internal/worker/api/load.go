package api

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.uber.org/zap"
)

// loadSampleWindow is how long cpu.PercentWithContext blocks measuring
// utilization.
const loadSampleWindow = 200 * time.Millisecond

// Load implements GET /load (spec.md §4.6, §6.2): a decimal CPU
// utilization in [0, 100]. This actually wires gopsutil/v4 rather than
// leaving it an unused stub (see SPEC_FULL.md §4.10).
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	percents, err := cpu.PercentWithContext(r.Context(), loadSampleWindow, false)
	if err != nil || len(percents) == 0 {
		h.Logger.Error("load: sampling cpu", zap.Error(err))
		writeJSON(w, http.StatusOK, 0.0)
		return
	}
	writeJSON(w, http.StatusOK, percents[0])
}
