package handler

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/mcoot/tourneybot/internal/api/response"
)

// Snapshotter takes snapshots on demand
type Snapshotter interface {
	RunOnce(ctx context.Context) (string, error)
}

// SnapshotLister lists existing snapshots
type SnapshotLister interface {
	ListSnapshots() ([]string, error)
}

// SnapshotHandler handles snapshot endpoints
type SnapshotHandler struct {
	snapshotter Snapshotter
	lister      SnapshotLister
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(snapshotter Snapshotter, lister SnapshotLister) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotter: snapshotter,
		lister:      lister,
	}
}

// Create handles POST /api/v1/snapshots
func (h *SnapshotHandler) Create(w http.ResponseWriter, r *http.Request) {
	dir, err := h.snapshotter.RunOnce(r.Context())
	if dir == "" && err != nil {
		WriteError(w, err)
		return
	}
	// A prune failure after a successful snapshot is logged by the scheduler

	response.JSON(w, http.StatusCreated, response.Snapshot{Dir: filepath.ToSlash(dir)})
}

// List handles GET /api/v1/snapshots
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.lister.ListSnapshots()
	if err != nil {
		WriteError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	response.JSON(w, http.StatusOK, response.SnapshotList{Snapshots: names})
}
