package evaluation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/performance-evaluation/internal/auth"
	"github.com/frahmantamala/performance-evaluation/internal/transport"
	"github.com/frahmantamala/performance-evaluation/pkg/logger"
)

// maxEvidenceSize caps uploaded evidence files at 10 MiB.
const maxEvidenceSize = 10 << 20

type ServiceAPI interface {
	List(actor *auth.User) ([]*Evaluation, error)
	ListAsEvaluatee(actor *auth.User) ([]*Evaluation, error)
	ListAsEvaluator(actor *auth.User) ([]*Evaluation, error)
	Get(actor *auth.User, id int64) (*Evaluation, error)
	Create(actor *auth.User, dto CreateEvaluationDTO) (*Evaluation, error)
	Update(actor *auth.User, id int64, dto UpdateEvaluationDTO) (*Evaluation, error)
	SaveProgress(actor *auth.User, id int64, dto SaveProgressDTO) (*Evaluation, error)
	Submit(actor *auth.User, id int64) (*Evaluation, error)
	Delete(actor *auth.User, id int64) error
	MyResults(actor *auth.User) ([]*Result, error)
	AttachEvidence(actor *auth.User, evaluationID int64, fileName string, data []byte) (*Evidence, error)
	Evidence(actor *auth.User, evidenceID int64) (*Evidence, error)
	ListEvidences(actor *auth.User, evaluationID int64) ([]*Evidence, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	evaluations, err := h.Service.List(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, evaluations)
}

func (h *Handler) ListAsEvaluatee(w http.ResponseWriter, r *http.Request) {
	h.listFor(w, r, h.Service.ListAsEvaluatee)
}

func (h *Handler) ListAsEvaluator(w http.ResponseWriter, r *http.Request) {
	h.listFor(w, r, h.Service.ListAsEvaluator)
}

func (h *Handler) listFor(w http.ResponseWriter, r *http.Request, list func(*auth.User) ([]*Evaluation, error)) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	evaluations, err := list(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, evaluations)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	id, err := h.idParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}

	eval, err := h.Service.Get(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, eval)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	var dto CreateEvaluationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eval, err := h.Service.Create(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, eval)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	id, err := h.idParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}

	var dto UpdateEvaluationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eval, err := h.Service.Update(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, eval)
}

func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	id, err := h.idParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}

	var dto SaveProgressDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eval, err := h.Service.SaveProgress(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, eval)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	id, err := h.idParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}

	eval, err := h.Service.Submit(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, eval)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	id, err := h.idParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}

	if err := h.Service.Delete(actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "evaluation deleted"})
}

func (h *Handler) MyResults(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	results, err := h.Service.MyResults(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, results)
}

// UploadEvidence accepts a multipart form with a single "file" field.
func (h *Handler) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	id, err := h.idParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}

	if err := r.ParseMultipartForm(maxEvidenceSize); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxEvidenceSize+1))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(data) > maxEvidenceSize {
		h.WriteError(w, http.StatusBadRequest, "file too large")
		return
	}

	evidence, err := h.Service.AttachEvidence(actor, id, header.Filename, data)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "evidence uploaded",
		"evidence": evidence,
	})
}

func (h *Handler) ListEvidences(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	id, err := h.idParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}

	evidences, err := h.Service.ListEvidences(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, evidences)
}

// DownloadEvidence streams the stored bytes as an attachment under the
// original file name.
func (h *Handler) DownloadEvidence(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	id, err := h.idParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid evidence id")
		return
	}

	evidence, err := h.Service.Evidence(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", evidence.FileName))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(evidence.FileData)))
	if _, err := w.Write(evidence.FileData); err != nil {
		h.Logger.Error("failed to stream evidence", "evidence_id", id, "error", err)
	}
}

func (h *Handler) idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
