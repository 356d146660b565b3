package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sarchlab/memsim/mem"
)

// writeSuccess serializes fields under a {"status": "success"} envelope.
func writeSuccess(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"status": "success"}
	for k, v := range fields {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(body)
	dieOnErr(err)
}

// writeError serializes a {"status": "error"} envelope with the given
// HTTP status.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": message,
	})
	dieOnErr(err)
}

// writeEngineError maps core error kinds to HTTP statuses. Every kind the
// engine reports is a caller mistake; anything else is internal.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	for _, kind := range []error{
		mem.ErrInvalidConfig,
		mem.ErrNotStarted,
		mem.ErrAlreadyStarted,
		mem.ErrInvalidOperation,
		mem.ErrInvalidSize,
		mem.ErrOutOfRange,
		mem.ErrProcessNotFound,
		mem.ErrInvalidFrame,
		mem.ErrInsufficientMemory,
	} {
		if errors.Is(err, kind) {
			status = http.StatusBadRequest
			break
		}
	}

	writeError(w, status, err.Error())
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
