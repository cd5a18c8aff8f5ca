package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/domain"
	"quiz-admin-service/internal/excel"
)

// Handler exposes the REST surface of the service. Every response carries a
// {success: bool} envelope; a permission-gate denial is a successful HTTP
// response with success=false, not an HTTP error.
type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register wires the routes into the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("GET /subjects", h.subjects)
	mux.HandleFunc("GET /questions/{subject}/{student}", h.questions)
	mux.HandleFunc("POST /add-question", h.addQuestion)
	mux.HandleFunc("POST /add-subject", h.addSubject)
	mux.HandleFunc("POST /add-user", h.addUser)
	mux.HandleFunc("POST /reset-subject-scores", h.resetSubjectScores)
	mux.HandleFunc("POST /save-score", h.saveScore)
	mux.HandleFunc("GET /scores", h.scores)
	mux.HandleFunc("POST /delete-score", h.deleteScore)
	mux.HandleFunc("POST /toggle-permission", h.togglePermission)
	mux.HandleFunc("GET /export-excel/{subject}", h.exportSubject)
	mux.HandleFunc("GET /export-toppers", h.exportToppers)
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "missing username or password"})
		return
	}
	role, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, statusResponse{Message: "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool        `json:"success"`
		Role    domain.Role `json:"role"`
	}{true, role})
}

func (h *Handler) subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.Subjects(r.Context())
	if err != nil {
		h.internalError(w, "list subjects", err)
		return
	}
	if subjects == nil {
		subjects = []string{}
	}
	writeJSON(w, http.StatusOK, struct {
		Success  bool     `json:"success"`
		Subjects []string `json:"subjects"`
	}{true, subjects})
}

func (h *Handler) questions(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("subject")
	student := r.PathValue("student")
	questions, err := h.service.QuestionsFor(r.Context(), student, subject)
	if errors.Is(err, domain.ErrRetestNotAllowed) {
		writeJSON(w, http.StatusOK, statusResponse{Message: err.Error()})
		return
	}
	if err != nil {
		h.internalError(w, "serve questions", err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success   bool              `json:"success"`
		Questions []domain.Question `json:"questions"`
	}{true, questions})
}

func (h *Handler) addQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string   `json:"subject"`
		Prompt  string   `json:"q"`
		Options []string `json:"options"`
		Answer  string   `json:"answer"`
	}
	if err := decodeBody(r, &req); err != nil || req.Subject == "" || req.Prompt == "" || len(req.Options) == 0 || req.Answer == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Invalid data"})
		return
	}
	q := domain.Question{Prompt: req.Prompt, Options: req.Options, Answer: req.Answer}
	if err := h.service.AddQuestion(r.Context(), req.Subject, q); err != nil {
		if errors.Is(err, domain.ErrInvalidQuestion) {
			writeJSON(w, http.StatusBadRequest, statusResponse{Message: err.Error()})
			return
		}
		h.internalError(w, "add question", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Question added"})
}

func (h *Handler) addSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject"`
	}
	if err := decodeBody(r, &req); err != nil || req.Subject == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Subject name required"})
		return
	}
	if err := h.service.AddSubject(r.Context(), req.Subject); err != nil {
		if errors.Is(err, domain.ErrSubjectExists) {
			writeJSON(w, http.StatusOK, statusResponse{Message: err.Error()})
			return
		}
		h.internalError(w, "add subject", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Subject added"})
}

func (h *Handler) addUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Missing data"})
		return
	}
	role := domain.Role(req.Role)
	if role != domain.RoleStudent && role != domain.RoleTeacher {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "role must be student or teacher"})
		return
	}
	err := h.service.AddUser(domain.User{Username: req.Username, Password: req.Password, Role: role})
	if errors.Is(err, domain.ErrUserExists) {
		writeJSON(w, http.StatusOK, statusResponse{Message: err.Error()})
		return
	}
	if err != nil {
		h.internalError(w, "add user", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: fmt.Sprintf("User %s added", req.Username)})
}

func (h *Handler) resetSubjectScores(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject"`
	}
	if err := decodeBody(r, &req); err != nil || req.Subject == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Subject name required"})
		return
	}
	if _, err := h.service.ResetSubjectScores(r.Context(), req.Subject); err != nil {
		h.internalError(w, "reset subject scores", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Subject scores reset"})
}

func (h *Handler) saveScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Student    string  `json:"studentId"`
		Subject    string  `json:"subject"`
		Score      int     `json:"score"`
		Total      int     `json:"total"`
		Percentage float64 `json:"percentage"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Invalid data"})
		return
	}
	rec := domain.ScoreRecord{
		Student:    req.Student,
		Subject:    req.Subject,
		Score:      req.Score,
		Total:      req.Total,
		Percentage: req.Percentage,
	}
	if err := h.service.SaveScore(r.Context(), rec); err != nil {
		if errors.Is(err, app.ErrInvalidRecord) {
			writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Invalid data"})
			return
		}
		h.internalError(w, "save score", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Score saved"})
}

func (h *Handler) scores(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Scores(r.Context())
	if err != nil {
		h.internalError(w, "list scores", err)
		return
	}
	if records == nil {
		records = []domain.ScoreRecord{}
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool                 `json:"success"`
		Scores  []domain.ScoreRecord `json:"scores"`
	}{true, records})
}

func (h *Handler) deleteScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Student string `json:"studentId"`
		Subject string `json:"subject"`
	}
	if err := decodeBody(r, &req); err != nil || req.Student == "" || req.Subject == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Missing student or subject"})
		return
	}
	err := h.service.DeleteScore(r.Context(), req.Student, req.Subject)
	if errors.Is(err, domain.ErrScoreNotFound) {
		writeJSON(w, http.StatusOK, statusResponse{Message: err.Error()})
		return
	}
	if err != nil {
		h.internalError(w, "delete score", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Score deleted"})
}

func (h *Handler) togglePermission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Student string `json:"studentId"`
		Subject string `json:"subject"`
	}
	if err := decodeBody(r, &req); err != nil || req.Student == "" || req.Subject == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Missing data"})
		return
	}
	allowed, err := h.service.TogglePermission(r.Context(), req.Student, req.Subject)
	if err != nil {
		h.internalError(w, "toggle permission", err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		Allowed bool `json:"allowed"`
	}{true, allowed})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) exportSubject(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("subject")
	records, err := h.service.Scores(r.Context())
	if err != nil {
		h.internalError(w, "load scores", err)
		return
	}
	var subjectScores []domain.ScoreRecord
	for _, rec := range records {
		if rec.Subject == subject {
			subjectScores = append(subjectScores, rec)
		}
	}
	if len(subjectScores) == 0 {
		http.Error(w, "No scores found for this subject", http.StatusNotFound)
		return
	}
	f, err := excel.SubjectWorkbook(subject, subjectScores)
	if err != nil {
		h.internalError(w, "build subject workbook", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s_Scores_%d.xlsx", subject, time.Now().Unix()))
	if err := f.Write(w); err != nil {
		log.Printf("write subject workbook: %v", err)
	}
}

func (h *Handler) exportToppers(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Scores(r.Context())
	if err != nil {
		h.internalError(w, "load scores", err)
		return
	}
	if len(records) == 0 {
		http.Error(w, "No score data found", http.StatusNotFound)
		return
	}
	f, err := excel.ToppersWorkbook(records)
	if err != nil {
		h.internalError(w, "build toppers workbook", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=All_Subject_Toppers_%d.xlsx", time.Now().Unix()))
	if err := f.Write(w); err != nil {
		log.Printf("write toppers workbook: %v", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
