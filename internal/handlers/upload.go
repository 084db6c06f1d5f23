package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/internal/middleware"
	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
)

type UploadResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// multipart overhead allowed on top of the file itself
const uploadFormSlack = 1 << 20

// UploadPhoto stores a profile photo and returns its public URL.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if h.Media == nil {
		writeMessage(w, http.StatusServiceUnavailable, "File uploads are not available")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+uploadFormSlack)
	if err := r.ParseMultipartForm(services.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.countUpload("too_large")
			writeError(w, r, services.ErrFileTooLarge)
			return
		}
		writeMessage(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	url, err := h.Media.Upload(r.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		if models.IsValidationError(err) {
			h.countUpload("rejected")
		} else {
			h.countUpload("error")
		}
		writeError(w, r, err)
		return
	}
	h.countUpload("ok")

	sess, _ := middleware.SessionFromContext(r.Context())
	log.WithFields(log.Fields{"account": sess.AccountID, "url": url}).Info("photo uploaded")
	writeJSON(w, http.StatusOK, UploadResponse{
		Success:  true,
		Message:  "File uploaded successfully",
		ImageURL: url,
	})
}

func (h *Handler) countUpload(outcome string) {
	if h.Metrics != nil {
		h.Metrics.UploadsTotal.WithLabelValues(outcome).Inc()
	}
}
