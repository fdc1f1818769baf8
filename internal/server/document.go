package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gnegDev/path/internal/document"
	"github.com/gnegDev/path/internal/export"
)

const maxUploadBytes = 32 << 20

// DocumentHandler exposes the upload/read surface for documents.
type DocumentHandler struct {
	svc    *document.Service
	export *export.Service
}

func NewDocumentHandler(svc *document.Service, exp *export.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc, export: exp}
}

// Upload accepts a multipart form with a required "medical_history" file
// and an optional "treatment_plan" file. The response always carries the
// document; extraction failures surface through its status field.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	history, ok := readFilePart(w, r, "medical_history", true)
	if !ok {
		return
	}
	plan, ok := readFilePart(w, r, "treatment_plan", false)
	if !ok {
		return
	}

	doc, err := h.svc.Submit(r.Context(), ownerFrom(r), *history, plan)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id must be a UUID"})
		return
	}
	doc, err := h.svc.Get(r.Context(), id, ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.export.ExportDocumentsXLSX(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="documents.xlsx"`)
	_, _ = w.Write(data)
}

// readFilePart reads one multipart file into memory. Returns ok=false
// after writing an error response; a nil upload with ok=true means the
// optional part was absent.
func readFilePart(w http.ResponseWriter, r *http.Request, field string, required bool) (*document.FileUpload, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if required {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": field + " file is required"})
			return nil, false
		}
		return nil, true
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read " + field})
		return nil, false
	}
	return &document.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, true
}
