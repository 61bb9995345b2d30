package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cthulhu/internal/archive"
	"cthulhu/internal/server/store"
)

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type profileResponse struct {
	Username string      `json:"username"`
	Stats    store.Stats `json:"stats"`
}

// API 提供帳號、戰績查詢與 WebSocket 入口
type API struct {
	hub        *Hub
	store      *store.Store
	archive    *archive.Archive
	sessionTTL time.Duration
	upgrader   websocket.Upgrader
	logger     *zap.SugaredLogger
}

func NewAPI(hub *Hub, st *store.Store, ar *archive.Archive, sessionTTL time.Duration) *API {
	return &API{
		hub:        hub,
		store:      st,
		archive:    ar,
		sessionTTL: sessionTTL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: hub.logger.Named("api"),
	}
}

func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", a.health)
	r.Get("/ws", a.serveWS)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Post("/register", a.register)
		r.Post("/login", a.login)
		r.Get("/profile", a.profile)
		r.Get("/matches/{id}", a.match)
	})
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "rooms": a.hub.RoomCount()})
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	user, err := a.store.CreateUser(req.Username, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, store.ErrUserExists) {
			status = http.StatusConflict
		}
		a.writeError(w, status, err.Error())
		return
	}
	a.issueSession(w, user)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	user, err := a.store.Authenticate(req.Username, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, store.ErrInvalidCredentials) {
			status = http.StatusBadRequest
		}
		a.writeError(w, status, err.Error())
		return
	}
	a.issueSession(w, user)
}

func (a *API) issueSession(w http.ResponseWriter, user *store.User) {
	token, err := a.store.CreateSession(user.ID, a.sessionTTL)
	if err != nil {
		a.logger.Errorw("create session", "user", user.ID, "error", err)
		a.writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	a.writeJSON(w, http.StatusOK, authResponse{Token: token, Username: user.Username})
}

func (a *API) profile(w http.ResponseWriter, r *http.Request) {
	token := parseAuthHeader(r)
	if token == "" {
		a.writeError(w, http.StatusUnauthorized, "missing session")
		return
	}
	user, err := a.store.GetUserBySession(token)
	if err != nil {
		a.writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	stats, err := a.store.Stats(r.Context(), user.ID)
	if err != nil {
		a.logger.Errorw("load stats", "user", user.ID, "error", err)
		a.writeError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	a.writeJSON(w, http.StatusOK, profileResponse{Username: user.Username, Stats: stats})
}

func (a *API) match(w http.ResponseWriter, r *http.Request) {
	res, err := a.archive.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			a.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		a.logger.Errorw("load match", "error", err)
		a.writeError(w, http.StatusInternalServerError, "could not load match")
		return
	}
	a.writeJSON(w, http.StatusOK, res)
}

// serveWS 升級連線；帶有會話 token 時連結帳號，否則以訪客身份遊玩
func (a *API) serveWS(w http.ResponseWriter, r *http.Request) {
	authToken := strings.TrimSpace(r.URL.Query().Get("auth"))
	if authToken == "" {
		authToken = parseAuthHeader(r)
	}

	var (
		accountID int64
		username  string
	)
	if authToken != "" {
		user, err := a.store.GetUserBySession(authToken)
		if err != nil {
			http.Error(w, "invalid session", http.StatusUnauthorized)
			return
		}
		accountID, username = user.ID, user.Username
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(conn, a.hub, accountID, username)
	go client.WritePump()
	client.ReadPump()
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Warnw("write json response", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, map[string]string{"error": message})
}

func parseAuthHeader(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		if cookie, err := r.Cookie("session_token"); err == nil {
			return strings.TrimSpace(cookie.Value)
		}
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
