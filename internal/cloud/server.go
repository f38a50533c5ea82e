package cloud

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/logger"
	"github.com/sshdeck/sshdeck/internal/registry"
	"github.com/sshdeck/sshdeck/internal/store"
)

type contextKey string

const accountKey contextKey = "account"

// Server is the sync server's HTTP surface. Everything under /api except
// register and login requires a bearer token.
type Server struct {
	mux      *http.ServeMux
	accounts *Accounts
	configs  *Configs
	devices  *registry.Service
	metrics  *Metrics
	log      logger.Logger
	now      func() time.Time
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger overrides the server logger.
func WithServerLogger(log logger.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// WithServerClock injects the time source, for tests.
func WithServerClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
		s.devices = registry.NewService(NewDeviceRepo(s.dbOf()), registry.WithClock(now), registry.WithLogger(s.log))
	}
}

func (s *Server) dbOf() *gorm.DB { return s.accounts.db }

// NewServer wires the API over db, registering metrics on reg.
func NewServer(db *gorm.DB, reg prometheus.Registerer, opts ...ServerOption) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		accounts: NewAccounts(db),
		configs:  NewConfigs(db),
		metrics:  NewMetrics(reg),
		log:      logger.Default(),
		now:      time.Now,
	}
	s.devices = registry.NewService(NewDeviceRepo(db))
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/register-device", s.authed(s.handleRegisterDevice))
	s.mux.HandleFunc("POST /api/auth/heartbeat", s.authed(s.handleHeartbeat))
	s.mux.HandleFunc("POST /api/auth/device-logout", s.authed(s.handleDeviceLogout))
	s.mux.HandleFunc("GET /api/auth/devices", s.authed(s.handleListDevices))
	s.mux.HandleFunc("DELETE /api/auth/device/{id}", s.authed(s.handleRemoveDevice))

	s.mux.HandleFunc("GET /api/config", s.authed(s.handleGetConfig))
	s.mux.HandleFunc("POST /api/config/sync", s.authed(s.handleSync))
	s.mux.HandleFunc("PUT /api/config/profiles", s.authed(s.handlePutProfiles))
	s.mux.HandleFunc("PUT /api/config/commands", s.authed(s.handlePutCommands))
	s.mux.HandleFunc("GET /api/config/stats", s.authed(s.handleStats))
	s.mux.HandleFunc("POST /api/config/push-to-devices", s.authed(s.handlePushToDevices))
	s.mux.HandleFunc("GET /api/config/pending-push", s.authed(s.handleGetPendingPush))
	s.mux.HandleFunc("POST /api/config/clear-pending-push", s.authed(s.handleClearPendingPush))

	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// authed wraps a handler with bearer-token resolution. The account lands in
// the request context.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		acct, err := s.accounts.FindByToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), accountKey, acct)))
	}
}

func accountFrom(r *http.Request) Account {
	return r.Context().Value(accountKey).(Account)
}

// --- auth ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	acct, err := s.accounts.Register(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "account already exists")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": acct.Token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	acct, err := s.accounts.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": acct.Token})
}

func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID   string `json:"deviceId"`
		DeviceName string `json:"deviceName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" || req.DeviceName == "" {
		writeError(w, http.StatusBadRequest, "deviceId and deviceName required")
		return
	}

	if err := s.devices.Register(accountFrom(r).ID, req.DeviceID, req.DeviceName); err != nil {
		s.serverError(w, "register device", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string `json:"deviceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "deviceId required")
		return
	}

	if err := s.devices.Heartbeat(accountFrom(r).ID, req.DeviceID); err != nil {
		if errors.IsCode(err, errors.ErrDevice) {
			writeError(w, http.StatusNotFound, "device not registered")
			return
		}
		s.serverError(w, "heartbeat", err)
		return
	}
	s.metrics.Heartbeats.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeviceLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string `json:"deviceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "deviceId required")
		return
	}

	if err := s.devices.Logout(accountFrom(r).ID, req.DeviceID); err != nil {
		if errors.IsCode(err, errors.ErrDevice) {
			writeError(w, http.StatusNotFound, "device not registered")
			return
		}
		s.serverError(w, "device logout", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// deviceView is the wire shape of one device. Online carries the derived
// status; the raw flag stays server-side.
type deviceView struct {
	DeviceID    string    `json:"deviceId"`
	DeviceName  string    `json:"deviceName"`
	LastSeen    time.Time `json:"lastSeen"`
	Online      bool      `json:"online"`
	PendingPush bool      `json:"pendingPush"`
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.List(accountFrom(r).ID)
	if err != nil {
		s.serverError(w, "list devices", err)
		return
	}

	now := s.now()
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, deviceView{
			DeviceID:    d.ID,
			DeviceName:  d.Name,
			LastSeen:    d.LastSeen,
			Online:      registry.EffectiveOnline(d, now),
			PendingPush: d.PendingPush,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": views})
}

func (s *Server) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("id")
	if err := s.devices.Remove(accountFrom(r).ID, deviceID); err != nil {
		if errors.IsCode(err, errors.ErrDevice) {
			writeError(w, http.StatusNotFound, "device not registered")
			return
		}
		s.serverError(w, "remove device", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// --- config ---

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	snap, lastSyncedAt, err := s.configs.Get(accountFrom(r).ID)
	if err != nil {
		s.serverError(w, "get config", err)
		return
	}
	s.metrics.SyncOps.WithLabelValues("pull").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles":     emptyProfiles(snap.Profiles),
		"commands":     emptyCommands(snap.Commands),
		"lastSyncedAt": lastSyncedAt,
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req store.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := s.configs.Replace(accountFrom(r).ID, req); err != nil {
		s.serverError(w, "sync", err)
		return
	}
	s.metrics.SyncOps.WithLabelValues("push").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}

func (s *Server) handlePutProfiles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Profiles []store.Profile `json:"profiles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Profiles == nil {
		writeError(w, http.StatusBadRequest, "profiles required")
		return
	}

	if err := s.configs.ReplaceProfiles(accountFrom(r).ID, req.Profiles); err != nil {
		s.serverError(w, "put profiles", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handlePutCommands(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Commands []store.Command `json:"commands"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Commands == nil {
		writeError(w, http.StatusBadRequest, "commands required")
		return
	}

	if err := s.configs.ReplaceCommands(accountFrom(r).ID, req.Commands); err != nil {
		s.serverError(w, "put commands", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.configs.GetStats(accountFrom(r).ID)
	if err != nil {
		s.serverError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePushToDevices(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceIDs []string `json:"deviceIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.DeviceIDs) == 0 {
		writeError(w, http.StatusBadRequest, "deviceIds required")
		return
	}

	acct := accountFrom(r)
	snap, _, err := s.configs.Get(acct.ID)
	if err != nil {
		s.serverError(w, "push to devices", err)
		return
	}

	if err := s.devices.StagePush(acct.ID, req.DeviceIDs, snap.Profiles, snap.Commands); err != nil {
		s.serverError(w, "push to devices", err)
		return
	}
	s.metrics.PushStaged.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "queued",
		"deviceCount": len(req.DeviceIDs),
	})
}

func (s *Server) handleGetPendingPush(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "deviceId required")
		return
	}

	devices, err := s.devices.List(accountFrom(r).ID)
	if err != nil {
		s.serverError(w, "pending push", err)
		return
	}
	for _, d := range devices {
		if d.ID == deviceID {
			writeJSON(w, http.StatusOK, map[string]any{
				"pendingPush": d.PendingPush,
				"pushData":    d.PushData,
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "device not registered")
}

func (s *Server) handleClearPendingPush(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string `json:"deviceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "deviceId required")
		return
	}

	if err := s.devices.ClearPendingPush(accountFrom(r).ID, req.DeviceID); err != nil {
		s.serverError(w, "clear pending push", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.log.Error("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func emptyProfiles(p []store.Profile) []store.Profile {
	if p == nil {
		return []store.Profile{}
	}
	return p
}

func emptyCommands(c []store.Command) []store.Command {
	if c == nil {
		return []store.Command{}
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
