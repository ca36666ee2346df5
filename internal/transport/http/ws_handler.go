package http

import (
	"encoding/json"
	"log"
	"net/http"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	rooms    *app.Registry
	upgrader websocket.Upgrader
}

func NewWSHandler(rooms *app.Registry) *WSHandler {
	return &WSHandler{
		rooms: rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type transcriptPayload struct {
	Transcript string `json:"transcript"`
}

type answerPayload struct {
	Contestant int    `json:"contestant"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and pumps messages between the connection and
// its room: inbound events dispatch to room operations, and a writer
// goroutine drains the room's broadcasts back out. A failure in either
// direction tears the connection down through the same leave path as an
// explicit disconnect.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		http.Error(w, "missing room", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	participant := app.NewParticipant(uuid.NewString())
	room, err := h.rooms.Join(r.Context(), roomID, participant)
	if err != nil {
		log.Printf("ws join room %s failed: %v", roomID, err)
		_ = conn.WriteJSON(domain.Message{Type: "error", Data: errorPayload{Message: err.Error()}})
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range participant.Messages() {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write to %s failed, dropping connection: %v", participant.ID, err)
				h.rooms.Leave(roomID, participant)
				conn.Close()
				// Drain so the room is never backed up by a dead peer.
				for range participant.Messages() {
				}
				return
			}
		}
	}()

	defer func() {
		h.rooms.Leave(roomID, participant)
		<-writerDone
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case domain.TypeTranscriptUpdate:
			var payload transcriptPayload
			if err := json.Unmarshal(inbound.Data, &payload); err != nil {
				log.Printf("ws malformed transcript payload from %s: %v", participant.ID, err)
				return
			}
			room.UpdateTranscript(payload.Transcript)
		case domain.TypeAnswerSubmitted:
			var payload answerPayload
			if err := json.Unmarshal(inbound.Data, &payload); err != nil {
				log.Printf("ws malformed answer payload from %s: %v", participant.ID, err)
				return
			}
			room.SubmitAnswer(payload.Contestant, payload.Answer, payload.Correct)
		case domain.TypeNextQuestion:
			room.ForceNextQuestion()
		default:
			// Unknown types pass through to the room untouched.
			room.Relay(domain.Message{Type: inbound.Type, Data: inbound.Data})
		}
	}
}
