package classifier

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/telvora/telvora/pkg/models"
)

// LoadGlobalAverages reads the population-average artifact exported
// alongside the model (a flat field->average JSON object). Loaded once
// at startup; the returned map is treated as read-only.
func LoadGlobalAverages(path string) (models.GlobalAverages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read global averages artifact: %w", err)
	}

	averages := models.GlobalAverages{}
	if err := json.Unmarshal(data, &averages); err != nil {
		return nil, fmt.Errorf("failed to parse global averages artifact: %w", err)
	}
	if len(averages) == 0 {
		return nil, fmt.Errorf("global averages artifact %s is empty", path)
	}
	return averages, nil
}
