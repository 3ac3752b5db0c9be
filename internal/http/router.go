package http

import nethttp "net/http"

// NewRouter registers HTTP routes on a ServeMux.
func NewRouter(handler *Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/ready", handler.Ready)
	mux.HandleFunc("/roster", handler.Roster)
	mux.HandleFunc("/roster/import", handler.ImportRoster)
	mux.HandleFunc("/ratings", handler.CurrentRatings)
	mux.HandleFunc("/history", handler.RatingHistory)
	mux.HandleFunc("/reports/latest", handler.LatestReport)
	mux.HandleFunc("/sync/run", handler.RunBatch)
	mux.HandleFunc("/sync/first", handler.RunFirst)
	mux.HandleFunc("/sync/last", handler.RunLast)
	mux.HandleFunc("/sync/rows/", handler.RunRow)
	return mux
}
