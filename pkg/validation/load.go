package validation

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChicagoDave/citadel/pkg/config"
)

// LoadProject reads settlement.yaml from projectDir and runs document and
// schema validation on it. An empty projectDir validates config.Default.
// The returned error covers IO and YAML syntax only; rule violations are
// reported in the Report.
func LoadProject(projectDir string) (*config.Settlement, *Report, error) {
	if projectDir == "" {
		s := config.Default()
		return s, ValidateConfig(s), nil
	}

	data, err := os.ReadFile(filepath.Join(projectDir, config.FileName))
	if err != nil {
		return nil, nil, fmt.Errorf("reading settlement file: %w", err)
	}
	s, err := config.Parse(data)
	if err != nil {
		return nil, nil, err
	}

	r := ValidateDocument(data)
	r.Merge(ValidateConfig(s))
	return s, r, nil
}
