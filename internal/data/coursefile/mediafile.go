package coursefile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/media"
	nberrors "github.com/yungbote/neurobridge-coursegraph/internal/pkg/errors"
)

type MediaDocument struct {
	Media []course.MediaRecord `yaml:"media"`
}

func LoadMediaCatalog(path string) (*media.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("coursefile: %s: %w", path, nberrors.ErrNotFound)
		}
		return nil, fmt.Errorf("coursefile: read %s: %w", path, err)
	}
	return ParseMediaCatalog(data)
}

func ParseMediaCatalog(data []byte) (*media.Catalog, error) {
	var doc MediaDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("coursefile: decode media yaml: %w", err)
	}
	for i, rec := range doc.Media {
		if rec.DurationSeconds < 0 {
			return nil, fmt.Errorf("coursefile: media %d (%s) has negative duration: %w", i, rec.MediaID, nberrors.ErrInvalidArgument)
		}
	}
	return media.NewCatalog(doc.Media...), nil
}
