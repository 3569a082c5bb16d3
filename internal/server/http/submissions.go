package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
	"github.com/dmitrijs2005/recipekeeper/internal/services"
)

// multipartMemory is how much of a multipart body is kept in memory before
// parts spill to temporary files.
const multipartMemory = 8 << 20

type createdResponse struct {
	ID string `json:"id"`
}

func (httpserver *HttpServer) listSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.SearchFilter{
		Query:    q.Get("q"),
		Region:   q.Get("region"),
		FoodType: q.Get("food_type"),
	}

	subs, err := httpserver.submissions.Search(r.Context(), filter)
	if err != nil {
		handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
		return
	}

	writeJsonSuccessResponse(w, http.StatusOK, subs)
}

func (httpserver *HttpServer) getSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := httpserver.submissions.GetSubmission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
		return
	}

	writeJsonSuccessResponse(w, http.StatusOK, sub)
}

func (httpserver *HttpServer) createSubmission(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	if httpserver.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, httpserver.opts.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("upload too large", "limit", tooLarge.Limit)
			writeJsonErrorResponse(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		handleJsonSrvcError(logger, w, fmt.Errorf("%w: parse form: %v", common.ErrorValidation, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	fields := models.Fields{
		RecipeName:  r.FormValue("recipe_name"),
		Region:      r.FormValue("region"),
		FoodType:    r.FormValue("food_type"),
		Ingredients: r.FormValue("ingredients"),
		Steps:       r.FormValue("steps"),
	}

	var uploads []services.Upload
	for _, kind := range models.MediaKinds {
		for _, fh := range r.MultipartForm.File[string(kind)] {
			u, err := readUpload(fh, kind)
			if err != nil {
				handleJsonSrvcError(logger, w, err)
				return
			}
			uploads = append(uploads, u)
		}
	}

	id, err := httpserver.submissions.Contribute(r.Context(), fields, uploads, sessionUsername(r.Context()))
	if err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}

	writeJsonSuccessResponse(w, http.StatusCreated, createdResponse{ID: id})
}

func readUpload(fh *multipart.FileHeader, kind models.MediaKind) (services.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, fmt.Errorf("%w: open %s: %v", common.ErrorValidation, fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.Upload{}, fmt.Errorf("%w: read %s: %v", common.ErrorValidation, fh.Filename, err)
	}

	return services.Upload{
		Kind:        kind,
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (httpserver *HttpServer) getAttachment(w http.ResponseWriter, r *http.Request) {
	ref := path.Join(chi.URLParam(r, "kind"), chi.URLParam(r, "name"))

	data, contentType, err := httpserver.submissions.AttachmentContent(r.Context(), ref)
	if err != nil {
		handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
		return
	}

	// stored objects are never overwritten
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (httpserver *HttpServer) listFoodTypes(w http.ResponseWriter, r *http.Request) {
	writeJsonSuccessResponse(w, http.StatusOK, models.FoodTypes)
}
