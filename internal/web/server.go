package web

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zombor/receipt-uploader/internal/risk"
)

// DefaultMaxBodySize caps request bodies so oversized files still reach the validator
const DefaultMaxBodySize = 50 << 20 // 50MB

// ReportReader reads persisted risk reports
type ReportReader interface {
	ListReports() ([]*risk.Report, error)
	ReportsFor(receiptID string) ([]*risk.Report, error)
	GetReport(id string) (*risk.Report, error)
}

// Server handles HTTP requests for the receipt workflow
type Server struct {
	sessions    *Sessions
	reports     ReportReader
	basicAuth   BasicAuth
	maxBodySize int64
	mux         *http.ServeMux
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(sessions *Sessions, reports ReportReader, basicAuth BasicAuth) *Server {
	return NewServerWithMux(sessions, reports, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(sessions *Sessions, reports ReportReader, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		sessions:    sessions,
		reports:     reports,
		basicAuth:   basicAuth,
		maxBodySize: DefaultMaxBodySize,
		mux:         mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="Receipt Uploader"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// registerRoutes registers all routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /static/app.css", s.requireAuth(s.handleStaticCSS))
	s.mux.HandleFunc("GET /static/app.js", s.requireAuth(s.handleStaticJS))

	// JSON endpoints
	s.mux.HandleFunc("GET /api/state", s.requireAuth(s.handleState))
	s.mux.HandleFunc("GET /api/reports/{id}", s.requireAuth(s.handleGetReport))
	s.mux.HandleFunc("GET /api/reports", s.requireAuth(s.handleListReports))
	s.mux.HandleFunc("POST /api/clipboard-ok", s.requireAuth(s.handleClipboardOK))
	s.mux.HandleFunc("POST /api/clipboard-error", s.requireAuth(s.handleClipboardError))

	// Workflow actions
	s.mux.HandleFunc("POST /file/clear", s.requireAuth(s.handleClearFile))
	s.mux.HandleFunc("POST /file", s.requireAuth(s.handleSelectFile))
	s.mux.HandleFunc("POST /bank", s.requireAuth(s.handleSelectBank))
	s.mux.HandleFunc("POST /upload", s.requireAuth(s.handleUpload))
	s.mux.HandleFunc("POST /reset", s.requireAuth(s.handleReset))
	s.mux.HandleFunc("POST /notification/dismiss", s.requireAuth(s.handleDismissNotification))
	s.mux.HandleFunc("POST /error/dismiss", s.requireAuth(s.handleDismissError))

	// Review panel
	s.mux.HandleFunc("GET /export.csv", s.requireAuth(s.handleExportCSV))
	s.mux.HandleFunc("POST /copy", s.requireAuth(s.handleCopy))
	s.mux.HandleFunc("POST /report/open", s.requireAuth(s.handleOpenReport))
	s.mux.HandleFunc("POST /report/cancel", s.requireAuth(s.handleCancelReport))
	s.mux.HandleFunc("POST /report", s.requireAuth(s.handleSubmitReport))

	s.mux.HandleFunc("GET /{$}", s.requireAuth(s.handleIndex))
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.corsMiddleware(s.mux))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
