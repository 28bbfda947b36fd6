package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Angel-Eco/CuidadoPRO/internal/modules/upload/service"
	"github.com/Angel-Eco/CuidadoPRO/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStorage struct {
	uploads int
}

func (s *countingStorage) Upload(_ context.Context, r io.Reader, filename, _ string) (string, error) {
	s.uploads++
	_, _ = io.Copy(io.Discard, r)
	return "https://res.cloudinary.com/demo/image/upload/v1/profesionales-fotos/" + filename, nil
}

func (s *countingStorage) Delete(context.Context, string) error { return nil }

func (s *countingStorage) PublicURL(filename string) (string, error) {
	return "https://res.cloudinary.com/demo/image/upload/profesionales-fotos/" + filename, nil
}

func (s *countingStorage) Buckets(context.Context) ([]string, error) { return nil, nil }

func (s *countingStorage) Bucket() string { return "profesionales-fotos" }

func setupRouter(st *countingStorage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUploadHandler(service.NewUploadService(st, logger.Nop()))

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.POST("/api/upload/profesional-foto", h.UploadProfesionalFoto)
	r.DELETE("/api/upload/profesional-foto/:filename", h.DeleteProfesionalFoto)
	r.GET("/api/upload/profesional-foto/:filename", h.GetProfesionalFoto)
	return r
}

func multipartRequest(t *testing.T, field, filename string, size int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{'x'}, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/profesional-foto", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadProfesionalFoto(t *testing.T) {
	st := &countingStorage{}
	r := setupRouter(st)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", "perfil.png", 1024))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Filename string `json:"filename"`
			URL      string `json:"url"`
			Size     int64  `json:"size"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Regexp(t, `^profesional_\d{8}_\d{6}_[0-9a-f-]{36}\.png$`, resp.Data.Filename)
	assert.Contains(t, resp.Data.URL, resp.Data.Filename)
	assert.Equal(t, int64(1024), resp.Data.Size)
	assert.Equal(t, 1, st.uploads)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	st := &countingStorage{}
	r := setupRouter(st)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", "enorme.jpg", 6*1024*1024))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Archivo muy grande")
	assert.Zero(t, st.uploads)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	st := &countingStorage{}
	r := setupRouter(st)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", "anim.gif", 100))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ".jpg, .jpeg, .png, .webp")
	assert.Zero(t, st.uploads)
}

func TestUploadMissingFile(t *testing.T) {
	st := &countingStorage{}
	r := setupRouter(st)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "otro", "perfil.png", 10))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "El archivo es obligatorio")
}

func TestDeleteProfesionalFoto(t *testing.T) {
	r := setupRouter(&countingStorage{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/upload/profesional-foto/profesional_1.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Archivo profesional_1.png eliminado exitosamente")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/upload/profesional-foto/script.sh", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
