package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cgmap/pkg/cache"
	"github.com/matzehuels/cgmap/pkg/errors"
	cgio "github.com/matzehuels/cgmap/pkg/io"
	"github.com/matzehuels/cgmap/pkg/observability"
	"github.com/matzehuels/cgmap/pkg/scene"
)

// Scene is a decoded scene document with the hash of its source bytes.
type Scene struct {
	Map  *scene.Map
	Hash string
	// Source holds the document as read; servers persist it to rebuild
	// sessions on another replica.
	Source []byte
}

// LoadScene decodes a JSON scene document. Ranges that fail validation
// are logged and later skipped by the renderer; only structural problems
// are errors.
func LoadScene(ctx context.Context, data []byte, logger *log.Logger) (*Scene, error) {
	start := time.Now()
	m, err := cgio.ReadJSON(bytes.NewReader(data))
	observability.Render().OnSceneLoad(ctx, featureCount(m), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if verr := m.Validate(); verr != nil && logger != nil {
		logger.Warn("scene has invalid ranges; they will be skipped", "err", verr)
	}
	return &Scene{Map: m, Hash: cache.Hash(data), Source: data}, nil
}

// LoadSceneFile reads and decodes the scene document at path.
func LoadSceneFile(ctx context.Context, path string, logger *log.Logger) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	sc, err := LoadScene(ctx, data, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func featureCount(m *scene.Map) int {
	if m == nil {
		return 0
	}
	return len(m.Features)
}
