package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/faceledger/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	registerHandler := handlers.NewRegisterHandler(s.service)
	recognizeHandler := handlers.NewRecognizeHandler(s.service)
	attendanceHandler := handlers.NewAttendanceHandler(s.service)
	subjectsHandler := handlers.NewSubjectsHandler(s.service)
	trainHandler := handlers.NewTrainHandler(s.service, s.trainManager)
	nearestHandler := handlers.NewNearestHandler(s.service)
	statsHandler := handlers.NewStatsHandler(s.service)

	// Health check
	s.router.Get("/api/v1/health", handlers.Health(s.version))

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Enrollment and recognition
		r.Post("/register", registerHandler.Register)
		r.Post("/recognize", recognizeHandler.Recognize)

		// Attendance ledger
		r.Get("/attendance", attendanceHandler.List)

		// Subject roster
		r.Get("/subjects", subjectsHandler.List)

		// Training (long-running operations)
		r.Post("/train", trainHandler.Start)
		r.Get("/train/{jobId}", trainHandler.Status)

		// Diagnostics
		r.Post("/faces/nearest", nearestHandler.Nearest)
		r.Get("/stats", statsHandler.Get)
	})

	// Landing page
	s.router.Get("/", s.serveIndex)
}

// serveIndex serves a minimal landing page pointing at the API.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Face Ledger</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
        code { background: #2a2a3e; padding: 2px 8px; border-radius: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Face Ledger</h1>
        <p>Face recognition attendance service.</p>
        <p>Register a face with <code>POST /api/v1/register</code>, mark attendance with <code>POST /api/v1/recognize</code>.</p>
        <p>API health at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
