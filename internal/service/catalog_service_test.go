package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/service"
)

type mockCatalogStore struct {
	services       []domain.Service
	contents       []domain.Content
	createdService *domain.ServiceInput
	createdContent *domain.ContentInput
	deletedService string
	deletedContent string
}

func (m *mockCatalogStore) ListServices(_ context.Context) ([]domain.Service, error) {
	return m.services, nil
}

func (m *mockCatalogStore) CreateService(_ context.Context, input *domain.ServiceInput) (*domain.Service, error) {
	m.createdService = input
	return &domain.Service{ID: "svc-1", Title: input.Title, Price: input.Price, Category: input.Category, IsActive: true}, nil
}

func (m *mockCatalogStore) UpdateService(_ context.Context, id string, input *domain.ServiceInput) (*domain.Service, error) {
	return &domain.Service{ID: id, Title: input.Title, Price: input.Price, Category: input.Category}, nil
}

func (m *mockCatalogStore) DeleteService(_ context.Context, id string) error {
	m.deletedService = id
	return nil
}

func (m *mockCatalogStore) ListContents(_ context.Context) ([]domain.Content, error) {
	return m.contents, nil
}

func (m *mockCatalogStore) CreateContent(_ context.Context, input *domain.ContentInput) (*domain.Content, error) {
	m.createdContent = input
	return &domain.Content{ID: "cnt-1", Title: input.Title, Type: input.Type, URL: input.URL}, nil
}

func (m *mockCatalogStore) UpdateContent(_ context.Context, id string, input *domain.ContentInput) (*domain.Content, error) {
	return &domain.Content{ID: id, Title: input.Title, Type: input.Type, URL: input.URL}, nil
}

func (m *mockCatalogStore) DeleteContent(_ context.Context, id string) error {
	m.deletedContent = id
	return nil
}

type mockObjectStore struct {
	path        string
	contentType string
	size        int
	err         error
}

func (m *mockObjectStore) UploadThumbnail(_ context.Context, path, contentType string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.path = path
	m.contentType = contentType
	m.size = len(data)
	return "https://cdn.example/thumbnails/" + path, nil
}

func newCatalogSvc(store *mockCatalogStore, objects *mockObjectStore) *service.CatalogService {
	return service.NewCatalogService(store, objects, zap.NewNop())
}

func TestCreateService(t *testing.T) {
	store := &mockCatalogStore{}
	svc := newCatalogSvc(store, &mockObjectStore{})

	created, err := svc.CreateService(context.Background(), &domain.ServiceInput{
		Title: "Pack visibilité", Price: 50000, Category: domain.CategoryVisibility,
	})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if !created.IsActive {
		t.Error("new service must be active")
	}
	if store.createdService == nil {
		t.Fatal("store not called")
	}
}

func TestCreateService_Validation(t *testing.T) {
	svc := newCatalogSvc(&mockCatalogStore{}, &mockObjectStore{})

	cases := []struct {
		name  string
		input domain.ServiceInput
	}{
		{"empty title", domain.ServiceInput{Price: 10, Category: domain.CategorySales}},
		{"negative price", domain.ServiceInput{Title: "x", Price: -1, Category: domain.CategorySales}},
		{"bad category", domain.ServiceInput{Title: "x", Price: 10, Category: "Autre"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateService(context.Background(), &tc.input); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreateContent_Validation(t *testing.T) {
	svc := newCatalogSvc(&mockCatalogStore{}, &mockObjectStore{})

	if _, err := svc.CreateContent(context.Background(), &domain.ContentInput{
		Title: "Intro", Type: "podcast", URL: "https://x",
	}); err == nil {
		t.Error("unknown content type accepted")
	}
	if _, err := svc.CreateContent(context.Background(), &domain.ContentInput{
		Title: "Intro", Type: domain.ContentVideo,
	}); err == nil {
		t.Error("missing url accepted")
	}
	if _, err := svc.CreateContent(context.Background(), &domain.ContentInput{
		Title: "Intro", Type: domain.ContentFormation, URL: "https://x",
	}); err != nil {
		t.Errorf("valid content rejected: %v", err)
	}
}

func TestUploadThumbnail(t *testing.T) {
	objects := &mockObjectStore{}
	svc := newCatalogSvc(&mockCatalogStore{}, objects)

	url, err := svc.UploadThumbnail(context.Background(), "image/png", []byte("fake-png"))
	if err != nil {
		t.Fatalf("UploadThumbnail: %v", err)
	}
	if !strings.HasSuffix(objects.path, ".png") {
		t.Errorf("stored path = %q, want .png suffix", objects.path)
	}
	if !strings.Contains(url, objects.path) {
		t.Errorf("url %q does not reference path %q", url, objects.path)
	}
}

func TestUploadThumbnail_Rejections(t *testing.T) {
	svc := newCatalogSvc(&mockCatalogStore{}, &mockObjectStore{})

	if _, err := svc.UploadThumbnail(context.Background(), "image/png", nil); err == nil {
		t.Error("empty upload accepted")
	}
	if _, err := svc.UploadThumbnail(context.Background(), "application/pdf", []byte("x")); err == nil {
		t.Error("non-image type accepted")
	}
	big := make([]byte, 2<<20+1)
	if _, err := svc.UploadThumbnail(context.Background(), "image/jpeg", big); err == nil {
		t.Error("oversize upload accepted")
	}
	var v *domain.ErrValidation
	_, err := svc.UploadThumbnail(context.Background(), "image/jpeg", big)
	if !errors.As(err, &v) {
		t.Errorf("got %T, want ErrValidation", err)
	}
}
