package http

import (
	"encoding/json"
	"log"
	"net/http"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/session"
	"github.com/gorilla/websocket"
)

// QuizHandler runs one quiz session per websocket connection. The session
// controller is the state machine; this handler is only the renderer
// boundary, streaming controller events out and feeding answers and
// focus/visibility signals in.
type QuizHandler struct {
	service  *app.Service
	cfg      session.Config
	upgrader websocket.Upgrader
}

func NewQuizHandler(service *app.Service, cfg session.Config) *QuizHandler {
	return &QuizHandler{
		service: service,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ServeQuiz upgrades the request and drives a full quiz attempt.
func (h *QuizHandler) ServeQuiz(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	student := r.URL.Query().Get("student")
	if subject == "" || student == "" {
		http.Error(w, "missing subject or student", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctrl := session.New(h.service, h.service, h.cfg)
	monitor := session.NewMonitor(ctrl)

	events, cancel := ctrl.Subscribe()
	defer cancel()

	send := make(chan any, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- ev:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// Start after subscribing so the first question is not lost.
	if err := ctrl.Start(r.Context(), subject, student); err != nil {
		// Permission denial reaches the student verbatim.
		send <- errorMessage{Type: "error", Message: err.Error()}
	} else {
		for {
			var inbound inboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				break
			}
			switch inbound.Type {
			case "answer":
				var payload answerPayload
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					send <- errorMessage{Type: "error", Message: "invalid answer payload"}
					continue
				}
				if err := ctrl.Answer(payload.Option); err != nil {
					send <- errorMessage{Type: "error", Message: err.Error()}
				}
			case "focus-lost":
				monitor.Report(session.SignalFocusLost)
			case "hidden":
				monitor.Report(session.SignalHidden)
			default:
				send <- errorMessage{Type: "error", Message: "unsupported message type"}
			}
		}
	}

	ctrl.Reset()
	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}
