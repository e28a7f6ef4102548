package supabase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/domain"
)

// thumbnailBucket holds content thumbnails uploaded from the admin forms.
const thumbnailBucket = "thumbnails"

// UploadThumbnail stores the bytes under path in the thumbnail bucket and
// returns the public URL clients can render directly.
func (c *Client) UploadThumbnail(ctx context.Context, path, contentType string, data []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UploadThumbnail")
	defer span.End()
	span.SetAttributes(
		attribute.String("object.path", path),
		attribute.Int("object.size", len(data)),
	)

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, thumbnailBucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("storage: upload failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return "", &domain.ErrExternalService{Service: "supabase/storage", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := readBody(resp)
		c.logger.Warn("storage: upload non-2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return "", &domain.ErrExternalService{
			Service: "supabase/storage",
			Err:     fmt.Errorf("storage returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, thumbnailBucket, path)
	c.logger.Info("storage: thumbnail uploaded",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return publicURL, nil
}
