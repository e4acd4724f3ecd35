package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/output"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Header string `json:"header,omitempty"`
	Token  string `json:"token,omitempty"`
	Sheet  string `json:"sheet,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, false)
}

// handleConvert exports an uploaded workbook. The body is the xlsx file itself, or a
// multipart form with the file in the "file" field.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithField("request_id", middleware.GetReqID(r.Context()))

	opts, pretty, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	opts.Logger = log

	r.Body = http.MaxBytesReader(w, r.Body, s.maxSize)
	data, err := s.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "workbook too large"})
			return
		}
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	wb, err := sheetjson.OpenBytes(data, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	defer wb.Close()

	result, err := wb.ExportWorkbook()
	if err != nil {
		var schemaErr *sheetjson.SchemaError
		if errors.As(err, &schemaErr) {
			writeError(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error:  err.Error(),
				Kind:   string(schemaErr.Kind),
				Header: schemaErr.Header,
				Token:  schemaErr.Token,
				Sheet:  schemaErr.Sheet,
			})
			return
		}
		log.WithError(err).Error("Export failed")
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "export failed"})
		return
	}

	log.WithFields(logrus.Fields{"bytes_in": len(data), "sheets": wb.SheetCount()}).Debug("Converted workbook")
	writeJSON(w, http.StatusOK, result, pretty)
}

func (s *Server) readUpload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, errors.New("no workbook provided")
		}
		return data, nil
	}

	if err := r.ParseMultipartForm(s.maxSize); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("no file provided")
	}
	defer file.Close()
	return io.ReadAll(file)
}

func optionsFromQuery(r *http.Request) (sheetjson.Options, bool, error) {
	q := r.URL.Query()

	format, err := sheetjson.ParseOutputFormat(q.Get("format"))
	if err != nil {
		return sheetjson.Options{}, false, err
	}
	naming, err := sheetjson.ParseNamingConvention(q.Get("naming"))
	if err != nil {
		return sheetjson.Options{}, false, err
	}
	opts := sheetjson.Options{
		IgnoreSheetPatterns:  q["ignore_sheet"],
		IgnoreColumnPatterns: q["ignore_column"],
		Format:               format,
		Naming:               naming,
	}
	if v := q.Get("max_rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return sheetjson.Options{}, false, fmt.Errorf("invalid max_rows: %s", v)
		}
		opts.MaxRows = n
	}
	if err := opts.Validate(); err != nil {
		return sheetjson.Options{}, false, err
	}

	pretty := false
	if v := q.Get("pretty"); v != "" {
		pretty, err = strconv.ParseBool(v)
		if err != nil {
			return sheetjson.Options{}, false, fmt.Errorf("invalid pretty: %s", v)
		}
	}
	return opts, pretty, nil
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	data, err := output.ToJSON(v, pretty)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", output.ContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp, false)
}
