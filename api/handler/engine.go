package handler

import (
	"context"
	"time"

	"github.com/molistry/rendertron/models"
)

// Engine is the rendering pipeline surface the handlers drive.
type Engine interface {
	Serialize(ctx context.Context, req *models.RenderRequest) (*models.SerializedResponse, error)
	Preview(ctx context.Context, req *models.RenderRequest) (*models.PreviewResponse, error)
	Screenshot(ctx context.Context, req *models.RenderRequest) ([]byte, error)
}

// StatusSource exposes renderer liveness for the health endpoint.
type StatusSource interface {
	Alive() bool
	Stats() (active, max int, started time.Time)
}
