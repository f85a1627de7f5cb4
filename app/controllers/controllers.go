package controllers

import (
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pressroom/app/models"
	"pressroom/app/services"
)

// pubDateFormats are the accepted formats for the pub_date form field,
// datetime-local first since that is what the form emits.
var pubDateFormats = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

var templateFuncs = template.FuncMap{
	"deref": func(id *int) int {
		if id == nil {
			return 0
		}
		return *id
	},
}

// loadTemplates parses the layout plus each view under basePath.
func loadTemplates(basePath string, views map[string][]string) map[string]*template.Template {
	templates := make(map[string]*template.Template)
	for name, files := range views {
		paths := []string{filepath.Join(basePath, "app/views/layout.html")}
		for _, f := range files {
			paths = append(paths, filepath.Join(basePath, f))
		}
		templates[name] = template.Must(
			template.New(filepath.Base(paths[0])).Funcs(templateFuncs).ParseFiles(paths...))
	}
	return templates
}

func render(w http.ResponseWriter, tmpl *template.Template, data interface{}, log *zap.Logger) {
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Error("template render failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// renderStatus renders with a non-200 status, used for validation
// re-renders.
func renderStatus(w http.ResponseWriter, status int, tmpl *template.Template, data interface{}, log *zap.Logger) {
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Error("template render failed", zap.Error(err))
	}
}

// pathInt extracts an integer path variable.
func pathInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(mux.Vars(r)[name])
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func notFound(w http.ResponseWriter) {
	http.Error(w, "Page not found", http.StatusNotFound)
}

func forbidden(w http.ResponseWriter) {
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// fieldErrors extracts per-field messages from a service error, or nil.
func fieldErrors(err error) map[string]string {
	if ve, ok := services.AsValidationError(err); ok {
		return ve.Fields
	}
	return nil
}

func parsePubDate(value string) (time.Time, error) {
	for _, format := range pubDateFormats {
		if t, err := time.ParseInLocation(format, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// optionalID parses a select-field value into a nullable foreign key.
func optionalID(value string) *int {
	if value == "" {
		return nil
	}
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// saveUpload stores an uploaded image under mediaDir with a fresh name
// and returns the stored filename.
func saveUpload(file multipart.File, header *multipart.FileHeader, mediaDir string) (string, error) {
	defer file.Close()

	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(mediaDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// pageParam reads the ?page= query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	return page
}

// basePage is the template context shared by every view.
type basePage struct {
	CurrentUser *models.User
}
