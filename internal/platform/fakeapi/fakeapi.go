// Package fakeapi is an in-memory stand-in for the remote hair analysis
// service. It backs the mock-server command and gateway tests.
package fakeapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hairly/internal/platform/clock"
	"hairly/internal/platform/id"
)

const maxUploadSize = 10 << 20

// Route names accepted by Fail and Recover.
const (
	RouteHealth  = "health"
	RouteUpload  = "upload"
	RoutePlan    = "plan"
	RouteLog     = "log"
	RouteHistory = "history"
)

type profile struct {
	HairType        string
	Confidence      float64
	Characteristics []string
	Products        []string
	Routine         map[string]string
}

var profiles = []profile{
	{
		HairType:        "4B Coily",
		Confidence:      0.87,
		Characteristics: []string{"high porosity", "fine strands", "dense"},
		Products:        []string{"Shea Moisture Deep Treatment Masque", "Curl Cleansing Co-Wash", "Jamaican Black Castor Oil", "Aloe Leave-In Conditioner"},
		Routine: map[string]string{
			"deep_conditioning": "Apply protein-free deep conditioner for 30-45 minutes",
			"cleansing":         "Use sulfate-free shampoo or co-wash",
			"moisturizing":      "Apply leave-in conditioner followed by natural oil",
			"styling":           "Style hair in low-manipulation protective styles",
			"duration":          "8 weeks",
		},
	},
	{
		HairType:        "3C Curly",
		Confidence:      0.81,
		Characteristics: []string{"medium porosity", "defined curls"},
		Products:        []string{"Hydrating Curl Mask", "Low-Poo Cleanser", "Curl Defining Cream"},
		Routine: map[string]string{
			"cleansing": "Cleanse with a low-poo once a week",
			"duration":  "6 weeks",
		},
	},
	{
		HairType:        "2B Wavy",
		Confidence:      0.76,
		Characteristics: []string{"low porosity", "frizz prone"},
		Products:        []string{"Lightweight Conditioner", "Gentle Clarifying Shampoo"},
		Routine:         map[string]string{},
	},
}

type logEntry struct {
	ID       int    `json:"id"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
	Rating   int    `json:"rating"`
	PhotoURL string `json:"photo_url,omitempty"`
}

type session struct {
	profile profile
	logs    []logEntry
}

type failure struct {
	status int
	detail any
}

// Server keeps every session in memory; it is safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	sessions map[string]*session
	failures map[string]failure
	nextLog  int
	ids      id.Generator
	clock    clock.Clock
	logger   *slog.Logger
}

func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		sessions: map[string]*session{},
		failures: map[string]failure{},
		ids:      id.UUID{},
		clock:    clock.SystemClock{},
		logger:   logger,
	}
}

// Fail makes route answer with status and a {"detail": detail} body until
// Recover is called. detail may be any JSON value.
func (s *Server) Fail(route string, status int, detail any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Sessions reports how many sessions the server has created.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.injected(RouteHealth, s.handleHealth))
	r.Post("/upload", s.injected(RouteUpload, s.handleUpload))
	r.Get("/plan", s.injected(RoutePlan, s.handlePlan))
	r.Post("/log", s.injected(RouteLog, s.handleLog))
	r.Get("/history", s.injected(RouteHistory, s.handleHistory))
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "request_id", r.Header.Get("X-Request-ID"), "elapsed", time.Since(started))
	})
}

func (s *Server) injected(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[route]
		s.mu.Unlock()
		if ok {
			writeJSON(w, f.status, map[string]any{"detail": f.detail})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hair Analysis API"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeDetail(w, http.StatusBadRequest, "File must be an image")
		return
	}

	p := profiles[int(header.Size)%len(profiles)]
	sessionID := s.ids.New()
	s.mu.Lock()
	s.sessions[sessionID] = &session{profile: p}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"analysis": map[string]any{
			"hair_type":       p.HairType,
			"confidence":      p.Confidence,
			"characteristics": p.Characteristics,
		},
		"message": "Image uploaded and analyzed successfully",
	})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Session not found")
		return
	}
	products := make([]any, 0, len(sess.profile.Products))
	for i, name := range sess.profile.Products {
		// Odd entries are objects carrying a name.
		if i%2 == 1 {
			products = append(products, map[string]string{"name": name})
			continue
		}
		products = append(products, name)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"care_plan": map[string]any{
			"routine":  sess.profile.Routine,
			"products": products,
		},
		"hair_analysis": map[string]any{
			"hair_type":       sess.profile.HairType,
			"confidence":      sess.profile.Confidence,
			"characteristics": sess.profile.Characteristics,
		},
	})
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notes    string `json:"notes"`
		Rating   int    `json:"rating"`
		PhotoURL string `json:"photo_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Notes) == "" || body.Rating < 1 || body.Rating > 5 {
		writeDetail(w, http.StatusUnprocessableEntity, "Notes and a rating between 1 and 5 are required")
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Session not found")
		return
	}
	s.nextLog++
	entry := logEntry{
		ID:       s.nextLog,
		Date:     s.clock.Now().Format(time.RFC3339),
		Notes:    body.Notes,
		Rating:   body.Rating,
		PhotoURL: body.PhotoURL,
	}
	sess.logs = append(sess.logs, entry)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"log_id": entry.ID, "message": "Progress logged successfully"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"logs":       sess.logs,
		"total_logs": len(sess.logs),
		"hair_type":  sess.profile.HairType,
	})
}

// lookup returns a copy of the session named by the session_id query.
func (s *Server) lookup(r *http.Request) (session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[r.URL.Query().Get("session_id")]
	if !ok {
		return session{}, false
	}
	out := *sess
	out.logs = append([]logEntry{}, sess.logs...)
	return out, true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
