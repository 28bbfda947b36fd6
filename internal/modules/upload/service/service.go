package service

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/modules/upload/dto"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	commonDto "github.com/Angel-Eco/CuidadoPRO/pkg/dto"
	"github.com/Angel-Eco/CuidadoPRO/pkg/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	MaxFileSize    = 5 * 1024 * 1024
	filenamePrefix = "profesional_"
)

// AllowedExtensions is the image allow-list, in display order.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

var storedFilename = regexp.MustCompile(`^[A-Za-z0-9_\-]+\.[A-Za-z0-9]+$`)

type UploadService interface {
	UploadProfesionalFoto(ctx context.Context, file commonDto.ImageFile) (*dto.UploadedFile, error)
	DeleteProfesionalFoto(ctx context.Context, filename string) error
	GetProfesionalFoto(ctx context.Context, filename string) (*dto.UploadedFile, error)
}

type uploadService struct {
	storage storage.ImageStorage
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string
}

type Option func(*uploadService)

// WithClock overrides the clock used in generated filenames.
func WithClock(now func() time.Time) Option {
	return func(s *uploadService) { s.now = now }
}

// WithIDGenerator overrides the random part of generated filenames.
func WithIDGenerator(newID func() string) Option {
	return func(s *uploadService) { s.newID = newID }
}

func NewUploadService(fileStorage storage.ImageStorage, log zerolog.Logger, opts ...Option) UploadService {
	s := &uploadService{
		storage: fileStorage,
		log:     log.With().Str("module", "upload").Logger(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func isAllowedExtension(ext string) bool {
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ValidateImage checks extension and size. It never touches storage.
func ValidateImage(file commonDto.ImageFile) error {
	ext := strings.ToLower(filepath.Ext(file.FileName))
	if !isAllowedExtension(ext) {
		return apperror.BadRequest(fmt.Sprintf(
			"Tipo de archivo no permitido. Extensiones permitidas: %s",
			strings.Join(AllowedExtensions, ", "),
		))
	}
	if file.Size > MaxFileSize {
		return apperror.BadRequest(fmt.Sprintf(
			"Archivo muy grande. Tamaño máximo permitido: %dMB",
			MaxFileSize/(1024*1024),
		))
	}
	if file.Size == 0 {
		return apperror.BadRequest("El archivo está vacío")
	}
	return nil
}

func (s *uploadService) generateFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s%s_%s%s", filenamePrefix, s.now().Format("20060102_150405"), s.newID(), ext)
}

func (s *uploadService) UploadProfesionalFoto(ctx context.Context, file commonDto.ImageFile) (*dto.UploadedFile, error) {
	if err := ValidateImage(file); err != nil {
		return nil, err
	}

	filename := s.generateFilename(file.FileName)
	url, err := s.storage.Upload(ctx, file.Reader, filename, file.ContentType)
	if err != nil {
		return nil, apperror.Internal("Error al subir archivo", err)
	}

	s.log.Info().Str("filename", filename).Int64("size", file.Size).Msg("photo uploaded")

	return &dto.UploadedFile{
		Filename:    filename,
		URL:         url,
		Size:        file.Size,
		ContentType: file.ContentType,
	}, nil
}

func validateStoredName(filename string) error {
	if !storedFilename.MatchString(filename) || !isAllowedExtension(strings.ToLower(filepath.Ext(filename))) {
		return apperror.BadRequest("Nombre de archivo inválido")
	}
	return nil
}

func (s *uploadService) DeleteProfesionalFoto(ctx context.Context, filename string) error {
	if err := validateStoredName(filename); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, filename); err != nil {
		return apperror.Internal("Error al eliminar archivo", err)
	}

	s.log.Info().Str("filename", filename).Msg("photo deleted")
	return nil
}

func (s *uploadService) GetProfesionalFoto(_ context.Context, filename string) (*dto.UploadedFile, error) {
	if err := validateStoredName(filename); err != nil {
		return nil, err
	}

	url, err := s.storage.PublicURL(filename)
	if err != nil {
		return nil, apperror.Internal("Error al obtener información del archivo", err)
	}
	return &dto.UploadedFile{Filename: filename, URL: url}, nil
}
