package render

import (
	"context"

	"github.com/abhaystar2004/dynamic-form/pkg/controller"
)

// Renderer converts a controller snapshot into a byte representation (HTML,
// plain text, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, snapshot controller.Snapshot, options RenderOptions) ([]byte, error)
}
