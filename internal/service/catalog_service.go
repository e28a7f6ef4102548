package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/port"
)

var catTracer = otel.Tracer("service/catalog")

// maxThumbnailBytes caps thumbnail uploads at 2 MiB.
const maxThumbnailBytes = 2 << 20

// CatalogService manages the service catalog and the training contents,
// including thumbnail uploads to object storage.
type CatalogService struct {
	store   port.CatalogStore
	objects port.ObjectStore
	logger  *zap.Logger
}

// NewCatalogService creates the catalog service.
func NewCatalogService(store port.CatalogStore, objects port.ObjectStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, objects: objects, logger: logger}
}

// ListServices returns the catalog, newest first.
func (s *CatalogService) ListServices(ctx context.Context) ([]domain.Service, error) {
	ctx, span := catTracer.Start(ctx, "Catalog.ListServices")
	defer span.End()

	return s.store.ListServices(ctx)
}

// CreateService validates and inserts a catalog item.
func (s *CatalogService) CreateService(ctx context.Context, input *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := catTracer.Start(ctx, "Catalog.CreateService")
	defer span.End()

	if err := validateServiceInput(input); err != nil {
		return nil, err
	}

	svc, err := s.store.CreateService(ctx, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info("service created", zap.String("service_id", svc.ID), zap.String("title", svc.Title))
	return svc, nil
}

// UpdateService validates and patches a catalog item.
func (s *CatalogService) UpdateService(ctx context.Context, id string, input *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := catTracer.Start(ctx, "Catalog.UpdateService")
	defer span.End()
	span.SetAttributes(attribute.String("service.id", id))

	if err := validateServiceInput(input); err != nil {
		return nil, err
	}
	return s.store.UpdateService(ctx, id, input)
}

// DeleteService removes a catalog item.
func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	ctx, span := catTracer.Start(ctx, "Catalog.DeleteService")
	defer span.End()
	span.SetAttributes(attribute.String("service.id", id))

	if err := s.store.DeleteService(ctx, id); err != nil {
		return err
	}
	s.logger.Info("service deleted", zap.String("service_id", id))
	return nil
}

// ListContents returns the training contents, newest first.
func (s *CatalogService) ListContents(ctx context.Context) ([]domain.Content, error) {
	ctx, span := catTracer.Start(ctx, "Catalog.ListContents")
	defer span.End()

	return s.store.ListContents(ctx)
}

// CreateContent validates and inserts a content entry.
func (s *CatalogService) CreateContent(ctx context.Context, input *domain.ContentInput) (*domain.Content, error) {
	ctx, span := catTracer.Start(ctx, "Catalog.CreateContent")
	defer span.End()

	if err := validateContentInput(input); err != nil {
		return nil, err
	}

	content, err := s.store.CreateContent(ctx, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info("content created", zap.String("content_id", content.ID), zap.String("type", content.Type))
	return content, nil
}

// UpdateContent validates and patches a content entry.
func (s *CatalogService) UpdateContent(ctx context.Context, id string, input *domain.ContentInput) (*domain.Content, error) {
	ctx, span := catTracer.Start(ctx, "Catalog.UpdateContent")
	defer span.End()
	span.SetAttributes(attribute.String("content.id", id))

	if err := validateContentInput(input); err != nil {
		return nil, err
	}
	return s.store.UpdateContent(ctx, id, input)
}

// DeleteContent removes a content entry.
func (s *CatalogService) DeleteContent(ctx context.Context, id string) error {
	ctx, span := catTracer.Start(ctx, "Catalog.DeleteContent")
	defer span.End()
	span.SetAttributes(attribute.String("content.id", id))

	if err := s.store.DeleteContent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("content deleted", zap.String("content_id", id))
	return nil
}

// UploadThumbnail stores an image under a random name and returns its
// public URL for the content form.
func (s *CatalogService) UploadThumbnail(ctx context.Context, contentType string, data []byte) (string, error) {
	ctx, span := catTracer.Start(ctx, "Catalog.UploadThumbnail")
	defer span.End()

	if len(data) == 0 {
		return "", &domain.ErrValidation{Field: "file", Message: "empty upload"}
	}
	if len(data) > maxThumbnailBytes {
		return "", &domain.ErrValidation{Field: "file", Message: "thumbnail exceeds 2MB"}
	}
	ext, ok := imageExtension(contentType)
	if !ok {
		return "", &domain.ErrValidation{Field: "file", Message: "unsupported image type"}
	}

	path := uuid.New().String() + ext
	url, err := s.objects.UploadThumbnail(ctx, path, contentType, data)
	if err != nil {
		return "", err
	}

	s.logger.Info("thumbnail uploaded", zap.String("path", path), zap.Int("bytes", len(data)))
	return url, nil
}

func validateServiceInput(input *domain.ServiceInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return &domain.ErrValidation{Field: "title", Message: "required"}
	}
	if input.Price < 0 {
		return &domain.ErrValidation{Field: "price", Message: "must not be negative"}
	}
	if !domain.ValidCategory(input.Category) {
		return &domain.ErrValidation{Field: "category", Message: "unknown category"}
	}
	return nil
}

func validateContentInput(input *domain.ContentInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return &domain.ErrValidation{Field: "title", Message: "required"}
	}
	if !domain.ValidContentType(input.Type) {
		return &domain.ErrValidation{Field: "type", Message: "must be video or formation"}
	}
	if strings.TrimSpace(input.URL) == "" {
		return &domain.ErrValidation{Field: "url", Message: "required"}
	}
	return nil
}

func imageExtension(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/webp":
		return ".webp", true
	}
	return "", false
}
