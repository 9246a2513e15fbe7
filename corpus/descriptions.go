package corpus

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Descriptions maps labels to human-readable descriptions for reports.
type Descriptions map[string]string

// ReadDescriptions decodes a JSON object of label to description. Keys may
// be given with or without LabelMarker.
func ReadDescriptions(r io.Reader) (Descriptions, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode label descriptions")
	}

	descriptions := make(Descriptions, len(raw))
	for label, description := range raw {
		if !strings.HasPrefix(label, LabelMarker) {
			label = LabelMarker + label
		}
		descriptions[label] = description
	}
	return descriptions, nil
}

// LoadDescriptions reads a label-description file.
func LoadDescriptions(path string) (Descriptions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open label descriptions")
	}
	defer f.Close()

	return ReadDescriptions(f)
}

// Describe returns the description for label, or the label itself.
func (d Descriptions) Describe(label string) string {
	if description, ok := d[label]; ok && description != "" {
		return description
	}
	return label
}
