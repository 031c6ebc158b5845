package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/middleware"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgUploadFailed     = "Error uploading file. Please try again."
	msgNoFile           = "No file uploaded"
	msgTooManyFiles     = "Only one file may be uploaded"
	msgResolveMissing   = "Both resolution text and image are required."
	msgComplaintMissing = "Complaint not found"
	msgServerError      = "Server error"

	msgClassifyFailed = "Error processing file with ML model."
	msgStorageFailed  = "Error uploading file to storage."
	msgPersistFailed  = "Error saving complaint."

	// Multipart parts above this stay on disk instead of in memory.
	multipartMemory = 8 << 20
)

var (
	errNoFile       = errors.New("no file part")
	errTooManyFiles = errors.New("more than one file part")
)

// UploadHandler serves the complaint intake and resolution routes
type UploadHandler struct {
	submissions *services.SubmissionService
	maxBytes    int64
	logger      *zap.SugaredLogger
}

// NewUploadHandler creates a new upload handler. maxBytes caps the request body.
func NewUploadHandler(submissions *services.SubmissionService, maxBytes int64, logger *zap.SugaredLogger) *UploadHandler {
	return &UploadHandler{submissions: submissions, maxBytes: maxBytes, logger: logger}
}

// UploadMedia handles POST /upload-media
func (h *UploadHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	file, err := h.readUpload(w, r)
	switch {
	case errors.Is(err, errNoFile):
		respondError(w, http.StatusBadRequest, msgNoFile)
		return
	case errors.Is(err, errTooManyFiles):
		respondError(w, http.StatusBadRequest, msgTooManyFiles)
		return
	case err != nil:
		h.logger.Warnw("Error uploading file", "error", err)
		respondError(w, http.StatusUnprocessableEntity, msgUploadFailed)
		return
	}

	sub := models.ComplaintSubmission{
		UserID:          r.FormValue("userId"),
		TrainNo:         models.StrPtr(r.FormValue("trainNo")),
		PNRNo:           models.StrPtr(r.FormValue("pnrNo")),
		CoachNo:         models.StrPtr(r.FormValue("coachNo")),
		SeatNo:          models.StrPtr(r.FormValue("seatNo")),
		Description:     models.StrPtr(r.FormValue("description")),
		ResolutionText:  models.StrPtr(r.FormValue("resolutionText")),
		TrainName:       models.StrPtr(r.FormValue("trainName")),
		CurrentLocation: models.StrPtr(r.FormValue("currentLocation")),
	}

	complaint, url, err := h.submissions.Submit(r.Context(), sub, file)
	if err != nil {
		h.logger.Errorw("Error handling upload", "filename", file.Filename, "error", err)
		status := statusFor(err)
		if status == http.StatusBadRequest {
			respondError(w, status, msgNoFile)
			return
		}
		respondError(w, status, uploadFailureMessage(err))
		return
	}

	respondJSON(w, http.StatusOK, models.SubmitResponse{
		Message:   "Complaint submitted successfully",
		Complaint: complaint,
		URL:       url,
	})
}

// ResolveComplaint handles POST /resolve-complaint/{id}
func (h *UploadHandler) ResolveComplaint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	file, err := h.readUpload(w, r)
	switch {
	case errors.Is(err, errTooManyFiles):
		respondError(w, http.StatusBadRequest, msgTooManyFiles)
		return
	case err != nil && !errors.Is(err, errNoFile):
		h.logger.Warnw("Error uploading resolution file", "id", id, "error", err)
		respondError(w, http.StatusBadRequest, msgUploadFailed)
		return
	}
	resolutionText := r.FormValue("resolutionText")
	if errors.Is(err, errNoFile) || resolutionText == "" {
		respondError(w, http.StatusBadRequest, msgResolveMissing)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	complaint, err := h.submissions.ResolveWithEvidence(r.Context(), id, resolutionText, file, actor)
	if err != nil {
		switch statusFor(err) {
		case http.StatusBadRequest:
			respondError(w, http.StatusBadRequest, msgResolveMissing)
		case http.StatusNotFound:
			h.logger.Infow("Resolve requested for unknown complaint", "id", id)
			respondError(w, http.StatusNotFound, msgComplaintMissing)
		default:
			h.logger.Errorw("Error resolving complaint", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, models.ResolveResponse{
		Message:   "Complaint resolved successfully",
		Complaint: complaint,
	})
}

// readUpload parses the multipart body and buffers its single "file" part.
// A request that is not multipart, or has no file part, yields errNoFile;
// more than one file part yields errTooManyFiles.
func (h *UploadHandler) readUpload(w http.ResponseWriter, r *http.Request) (models.Upload, error) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return models.Upload{}, errNoFile
		}
		return models.Upload{}, err
	}

	parts := r.MultipartForm.File["file"]
	switch {
	case len(parts) == 0:
		return models.Upload{}, errNoFile
	case len(parts) > 1:
		return models.Upload{}, errTooManyFiles
	}

	f, err := parts[0].Open()
	if err != nil {
		return models.Upload{}, err
	}
	defer f.Close()

	return readPart(f, parts[0])
}

func readPart(f multipart.File, hdr *multipart.FileHeader) (models.Upload, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return models.Upload{}, err
	}
	return models.Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func uploadFailureMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrClassification):
		return msgClassifyFailed
	case errors.Is(err, models.ErrStorage):
		return msgStorageFailed
	case errors.Is(err, models.ErrPersistence):
		return msgPersistFailed
	default:
		return msgServerError
	}
}
