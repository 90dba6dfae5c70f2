package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/rest"
	"github.com/gorilla/mux"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type SessionDTO struct {
	Id        string       `json:"id"`
	Title     string       `json:"title"`
	CreatedAt time.Time    `json:"createdAt"`
	Messages  []MessageDTO `json:"messages"`
}

type MessageDTO struct {
	Id        string    `json:"id"`
	SessionId string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"createdAt"`
}

type FavoriteMessageDTO struct {
	MessageDTO
	SessionTitle string `json:"sessionTitle"`
}

type SendMessageDTO struct {
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.CreateSession(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, sessionToDTO(session))
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ListSessions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		dtos = append(dtos, sessionToDTO(s))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["sessionId"]
	session, err := h.service.GetSession(r.Context(), sessionId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, sessionToDTO(session))
}

// SendMessage serves POST /api/chat/session/{sessionId}/message and returns
// the assistant's reply message.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["sessionId"]

	var dto SendMessageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if dto.Content == "" {
		rest.WriteError(w, http.StatusBadRequest, "Message content is required", "")
		return
	}

	reply, err := h.service.SendMessage(r.Context(), sessionId, dto.Content, dto.Mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, messageToDTO(reply))
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	message, err := h.service.ToggleFavorite(r.Context(), vars["sessionId"], vars["messageId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, messageToDTO(message))
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.service.ListFavorites(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]FavoriteMessageDTO, 0, len(favorites))
	for _, f := range favorites {
		dtos = append(dtos, FavoriteMessageDTO{
			MessageDTO:   messageToDTO(f.Message),
			SessionTitle: f.SessionTitle,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNoPrincipal):
		rest.WriteError(w, http.StatusUnauthorized, "Authentication required", "")
	case errors.Is(err, ErrSessionNotFound):
		rest.WriteError(w, http.StatusNotFound, "Chat session not found", "")
	case errors.Is(err, ErrMessageNotFound):
		rest.WriteError(w, http.StatusNotFound, "Chat message not found", "")
	case errors.Is(err, ErrSessionBusy):
		rest.WriteError(w, http.StatusConflict, "A message is already being processed for this session", "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func sessionToDTO(s Session) SessionDTO {
	messages := make([]MessageDTO, 0, len(s.Messages))
	for _, m := range s.Messages {
		messages = append(messages, messageToDTO(m))
	}
	return SessionDTO{
		Id:        s.Id,
		Title:     SessionTitle(s),
		CreatedAt: s.CreatedAt,
		Messages:  messages,
	}
}

func messageToDTO(m Message) MessageDTO {
	return MessageDTO{
		Id:        m.Id,
		SessionId: m.SessionId,
		Role:      string(m.Role),
		Content:   m.Content,
		Favorite:  m.Favorite,
		CreatedAt: m.CreatedAt,
	}
}
