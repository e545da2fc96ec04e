package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bromleigh/mealboard/internal/backup"
	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/store"
)

type BackupHandler struct {
	manager *backup.Manager
	history *store.BackupStore
	logger  *slog.Logger
}

func NewBackupHandler(manager *backup.Manager, history *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: manager, history: history, logger: logger}
}

type backupRequest struct {
	Passphrase string `json:"passphrase"`
}

// Run snapshots the database, encrypts it with the passphrase, and uploads
// it to object storage.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil || !h.manager.Configured() {
		writeError(w, http.StatusServiceUnavailable, "backups are not configured")
		return
	}

	var req backupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase is required")
		return
	}

	b, err := h.manager.Run(r.Context(), req.Passphrase)
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.history.List(0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

type restoreRequest struct {
	Passphrase  string `json:"passphrase"`
	Destination string `json:"destination"`
}

// Restore downloads and decrypts a backup to a file on disk. The running
// database is left untouched; swapping it in is a deliberate manual step.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil || !h.manager.Configured() {
		writeError(w, http.StatusServiceUnavailable, "backups are not configured")
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase is required")
		return
	}
	if req.Destination == "" {
		req.Destination = "restored.db"
	}

	if err := h.manager.Restore(r.Context(), id, req.Passphrase, req.Destination); err != nil {
		h.logger.Error("restore backup", "backup_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "restore failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"restored_to": req.Destination})
}
