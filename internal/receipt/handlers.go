package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zombor/receipt-tracker/internal/parsing"
	"github.com/zombor/receipt-tracker/internal/scanning"
)

const (
	// phone photos can be large
	maxUploadSize = 50 << 20
	maxTextSize   = 1 << 20
)

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes {"error": message}
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeProcessingError reports an OCR or parse failure. The failed receipt,
// when one was saved, is included so the client can offer a reprocess.
func writeProcessingError(w http.ResponseWriter, receipt *Receipt, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, scanning.ErrUnsupportedFormat):
		code = http.StatusUnsupportedMediaType
	case errors.Is(err, parsing.ErrParseFailure), receipt != nil:
		code = http.StatusUnprocessableEntity
	}

	body := map[string]any{"error": err.Error()}
	if receipt != nil {
		body["receipt"] = receipt
	}
	writeJSON(w, code, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownedReceipt loads the receipt named in the path, answering 404 when it
// is missing or belongs to someone else
func (s *Server) ownedReceipt(w http.ResponseWriter, r *http.Request) (*Receipt, bool) {
	id := r.PathValue("id")
	receipt, err := s.service.GetReceipt(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "receipt not found")
		} else {
			slog.Error("Error getting receipt", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return nil, false
	}

	if owner := ownerFromContext(r.Context()); owner != "" && receipt.OwnerID != owner {
		writeError(w, http.StatusNotFound, "receipt not found")
		return nil, false
	}
	return receipt, true
}

// handleUploadReceipt stores, scans and parses an uploaded receipt
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 50MB. Please compress or resize your image.")
			return
		}
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file was selected. Please choose a file to upload.")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return
	}

	contentType := uploadContentType(header.Header.Get("Content-Type"), header.Filename)

	receipt, err := s.service.ProcessReceipt(r.Context(), ownerFromContext(r.Context()), header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		writeProcessingError(w, receipt, err)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// uploadContentType falls back to the file extension when the browser did
// not label the part
func uploadContentType(declared, filename string) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
		return mediaType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleListReceipts returns the receipts matching the query filters
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipts, err := s.service.ListReceipts(filter)
	if err != nil {
		slog.Error("Error listing receipts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, receipts)
}

// handleExportReceipts returns the matching receipts as a spreadsheet
func (s *Server) handleExportReceipts(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("limit") == "" {
		filter.Limit = -1
	}

	var buf bytes.Buffer
	if err := s.service.ExportReceipts(&buf, filter); err != nil {
		slog.Error("Error exporting receipts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", SpreadsheetContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="receipts.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Error writing export", "error", err)
	}
}

// handleGetReceipt returns a single receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, ok := s.ownedReceipt(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// handleGetReceiptFile returns the uploaded file for a receipt
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	receipt, ok := s.ownedReceipt(w, r)
	if !ok {
		return
	}

	data, contentType, err := s.service.GetReceiptFile(receipt.ID)
	if err != nil {
		slog.Error("Error getting receipt file", "id", receipt.ID, "error", err)
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(data); err != nil {
		slog.Error("Error writing file", "id", receipt.ID, "error", err)
	}
}

// handleReparseReceipt runs the parser again on the stored OCR text
func (s *Server) handleReparseReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, ok := s.ownedReceipt(w, r)
	if !ok {
		return
	}

	updated, err := s.service.ReparseReceipt(receipt.ID)
	if err != nil {
		writeProcessingError(w, updated, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleReprocessReceipt runs OCR and the parser again on the stored file
func (s *Server) handleReprocessReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, ok := s.ownedReceipt(w, r)
	if !ok {
		return
	}

	updated, err := s.service.ReprocessReceipt(r.Context(), receipt.ID)
	if err != nil {
		writeProcessingError(w, updated, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteReceipt deletes a receipt and its file
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, ok := s.ownedReceipt(w, r)
	if !ok {
		return
	}

	if err := s.service.DeleteReceipt(receipt.ID); err != nil {
		slog.Error("Error deleting receipt", "id", receipt.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "error deleting receipt")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAnalytics returns spending analytics for the query filters
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analytics, err := s.service.SpendingAnalytics(filter)
	if err != nil {
		slog.Error("Error computing analytics", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// handleParse parses OCR text sent as the request body, either raw or as
// {"text": "..."}
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTextSize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "text is too large")
		return
	}

	text := string(body)
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		text = req.Text
	}

	parsed, err := s.service.ParseText(text)
	if err != nil {
		writeProcessingError(w, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

// filterFromQuery reads category, date_from, date_to (YYYY-MM-DD, both
// inclusive, local time), min_amount, max_amount and limit
func filterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	filter := Filter{OwnerID: ownerFromContext(r.Context())}

	if c := q.Get("category"); c != "" {
		filter.Category = parsing.Category(strings.ToLower(c))
		if !filter.Category.Valid() {
			return Filter{}, fmt.Errorf("unknown category %q", c)
		}
	}

	if v := q.Get("date_from"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid date_from %q", v)
		}
		filter.DateFrom = &d
	}
	if v := q.Get("date_to"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid date_to %q", v)
		}
		end := d.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &end
	}

	for name, dst := range map[string]**float64{"min_amount": &filter.MinAmount, "max_amount": &filter.MaxAmount} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid %s %q", name, v)
		}
		*dst = &amount
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return Filter{}, fmt.Errorf("invalid limit %q", v)
		}
		filter.Limit = limit
	}

	return filter, nil
}
