package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"docchat/internal/api/response"
	"docchat/internal/service"
)

const (
	maxFilesPerUpload = 10
	maxFileSizeBytes  = 10 << 20 // 10MB per file
	maxUploadMemory   = 32 << 20
)

// extension → effective content type for the extractor, used when the
// client declares nothing useful (e.g. application/octet-stream)
var allowedUploadTypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".text": "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type uploadResponse struct {
	Success bool                    `json:"success"`
	Results []service.IngestResult  `json:"results"`
	Errors  []service.IngestFailure `json:"errors"`
}

// UploadHandler handles multipart document uploads
type UploadHandler struct {
	ingest *service.IngestService
}

func NewUploadHandler(ingest *service.IngestService) *UploadHandler {
	return &UploadHandler{ingest: ingest}
}

// Upload validates the batch up front (session id, file count, type, size)
// and then ingests files one by one; extraction or storage failures after
// validation are reported per file, not as a request failure.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	sessionID := strings.TrimSpace(r.FormValue("session_id"))
	if sessionID == "" {
		response.BadRequest(w, "missing session_id")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		response.BadRequest(w, "no files uploaded")
		return
	}
	if len(files) > maxFilesPerUpload {
		response.BadRequest(w, fmt.Sprintf("too many files: at most %d per upload", maxFilesPerUpload))
		return
	}

	inputs := make([]service.FileInput, 0, len(files))
	for _, header := range files {
		contentType, ok := allowedType(header)
		if !ok {
			response.BadRequest(w, fmt.Sprintf("unsupported file type for %q: allowed types are PDF, plain text, DOC, DOCX", header.Filename))
			return
		}
		if header.Size > maxFileSizeBytes {
			response.BadRequest(w, fmt.Sprintf("file %q exceeds the 10MB limit", header.Filename))
			return
		}

		data, err := readFile(header)
		if err != nil {
			response.InternalError(w, "failed to read uploaded file", err.Error())
			return
		}

		inputs = append(inputs, service.FileInput{
			Filename:    header.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	batch := h.ingest.IngestBatch(r.Context(), sessionID, inputs)

	response.OK(w, uploadResponse{
		Success: true,
		Results: batch.Results,
		Errors:  batch.Failures,
	})
}

// allowedType checks the file extension against the allowlist and resolves
// the content type handed to the extractor, preferring the client's declared
// type when it is specific.
func allowedType(header *multipart.FileHeader) (string, bool) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	fallback, ok := allowedUploadTypes[ext]
	if !ok {
		return "", false
	}

	declared := header.Header.Get("Content-Type")
	if declared == "" || declared == "application/octet-stream" {
		return fallback, true
	}
	return declared, true
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
