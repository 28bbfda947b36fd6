package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	commonDto "github.com/Angel-Eco/CuidadoPRO/pkg/dto"
	"github.com/Angel-Eco/CuidadoPRO/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStorage struct {
	uploads   map[string][]byte
	deleted   []string
	uploadErr error
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{uploads: make(map[string][]byte)}
}

func (s *recordingStorage) Upload(_ context.Context, r io.Reader, filename, _ string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.uploads[filename] = b
	return "https://res.cloudinary.com/demo/image/upload/v1/profesionales-fotos/" + filename, nil
}

func (s *recordingStorage) Delete(_ context.Context, filename string) error {
	s.deleted = append(s.deleted, filename)
	return nil
}

func (s *recordingStorage) PublicURL(filename string) (string, error) {
	return "https://res.cloudinary.com/demo/image/upload/profesionales-fotos/" + filename, nil
}

func (s *recordingStorage) Buckets(context.Context) ([]string, error) { return nil, nil }

func (s *recordingStorage) Bucket() string { return "profesionales-fotos" }

func newTestService(st *recordingStorage) UploadService {
	return NewUploadService(st, logger.Nop(),
		WithClock(func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }),
		WithIDGenerator(func() string { return "fixed-id" }),
	)
}

func image(name string, size int) commonDto.ImageFile {
	return commonDto.ImageFile{
		Reader:      bytes.NewReader(bytes.Repeat([]byte{0x89}, size)),
		FileName:    name,
		Size:        int64(size),
		ContentType: "image/png",
	}
}

func TestUploadProfesionalFoto(t *testing.T) {
	st := newRecordingStorage()
	svc := newTestService(st)

	got, err := svc.UploadProfesionalFoto(context.Background(), image("Foto Perfil.PNG", 1024))
	require.NoError(t, err)

	assert.Equal(t, "profesional_20250314_092653_fixed-id.png", got.Filename)
	assert.True(t, strings.HasSuffix(got.URL, got.Filename))
	assert.Equal(t, int64(1024), got.Size)
	assert.Len(t, st.uploads[got.Filename], 1024)
}

func TestUploadRejectsWithoutTouchingStorage(t *testing.T) {
	tests := []struct {
		name  string
		file  commonDto.ImageFile
		want  string
	}{
		{"too large", image("grande.jpg", MaxFileSize+1), "Archivo muy grande"},
		{"gif", image("anim.gif", 10), "Tipo de archivo no permitido"},
		{"no extension", image("foto", 10), "Tipo de archivo no permitido"},
		{"empty", image("vacia.webp", 0), "El archivo está vacío"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newRecordingStorage()
			svc := newTestService(st)

			_, err := svc.UploadProfesionalFoto(context.Background(), tt.file)
			require.Error(t, err)
			assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
			assert.Contains(t, apperror.MessageOf(err), tt.want)
			assert.Empty(t, st.uploads)
		})
	}
}

func TestUploadExactlyAtLimit(t *testing.T) {
	st := newRecordingStorage()
	_, err := newTestService(st).UploadProfesionalFoto(context.Background(), image("limite.jpeg", MaxFileSize))
	require.NoError(t, err)
}

func TestUploadStorageFailure(t *testing.T) {
	st := newRecordingStorage()
	st.uploadErr = errors.New("cloudinary: 401")

	_, err := newTestService(st).UploadProfesionalFoto(context.Background(), image("a.png", 10))
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, "Error al subir archivo", apperror.MessageOf(err))
}

func TestDeleteAndGetValidateName(t *testing.T) {
	st := newRecordingStorage()
	svc := newTestService(st)
	ctx := context.Background()

	for _, bad := range []string{"../secreto.png", "a b.png", "foto.exe", ""} {
		err := svc.DeleteProfesionalFoto(ctx, bad)
		assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err), bad)

		_, err = svc.GetProfesionalFoto(ctx, bad)
		assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err), bad)
	}
	assert.Empty(t, st.deleted)

	require.NoError(t, svc.DeleteProfesionalFoto(ctx, "profesional_1.jpg"))
	assert.Equal(t, []string{"profesional_1.jpg"}, st.deleted)

	info, err := svc.GetProfesionalFoto(ctx, "profesional_1.jpg")
	require.NoError(t, err)
	assert.Contains(t, info.URL, "profesionales-fotos/profesional_1.jpg")
}
