package program

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zjy-dev/stuckpoint/internal/logger"
)

type modelFile struct {
	Classes []ClassDef `json:"classes"`
}

// LoadModel reads a dumped program model from a JSON file and assembles the
// program view.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program model: %w", err)
	}

	var file modelFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse program model: %w", err)
	}

	model, err := Build(file.Classes)
	if err != nil {
		return nil, fmt.Errorf("invalid program model %s: %w", path, err)
	}

	logger.Debug("loaded program model: %d classes, %d methods", len(model.order), len(model.methods))
	return model, nil
}
