package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ChicagoDave/citadel/pkg/config"
	"github.com/ChicagoDave/citadel/pkg/export"
	"github.com/ChicagoDave/citadel/pkg/mesh"
	"github.com/ChicagoDave/citadel/pkg/scene"
	"github.com/ChicagoDave/citadel/pkg/shape"
	"github.com/ChicagoDave/citadel/pkg/store"
	"github.com/ChicagoDave/citadel/pkg/validation"
)

// loadAndGenerate loads the project, refuses to continue on config
// errors, and generates the scene. The returned report includes the
// spatial checks.
func loadAndGenerate(projectPath string, seed *float64) (*config.Settlement, *scene.Graph, *validation.Report, error) {
	set, report, err := validation.LoadProject(projectPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading settlement: %w", err)
	}
	if seed != nil {
		set.Seed = *seed
	}
	if !report.Valid {
		printValidationReport(report)
		return nil, nil, nil, fmt.Errorf("settlement has validation errors")
	}

	g, err := scene.Generate(set)
	if err != nil {
		return nil, nil, nil, err
	}
	report.Merge(scene.ValidateGraph(g))
	return set, g, report, nil
}

func runValidate(projectPath string) error {
	set, report, err := validation.LoadProject(projectPath)
	if err != nil {
		return fmt.Errorf("loading settlement: %w", err)
	}

	if report.Valid {
		g, err := scene.Generate(set)
		if err != nil {
			return err
		}
		report.Merge(scene.ValidateGraph(g))
	}

	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func runGenerate(logger *log.Logger, projectPath string, seed *float64) error {
	_, g, report, err := loadAndGenerate(projectPath, seed)
	if err != nil {
		return err
	}
	logger.Printf("generated %d entities (%s)", len(g.Entities), report.Summary)

	output := map[string]any{
		"validation":  report,
		"scene_graph": g,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func runExport(logger *log.Logger, projectPath, out string) error {
	_, g, _, err := loadAndGenerate(projectPath, nil)
	if err != nil {
		return err
	}
	if err := export.WriteFile(out, g); err != nil {
		return err
	}
	logger.Printf("wrote %d entities to %s", len(g.Entities), out)
	return nil
}

func runMesh(logger *log.Logger, projectPath, out string, building, cells int) error {
	_, g, _, err := loadAndGenerate(projectPath, nil)
	if err != nil {
		return err
	}
	if building < 0 || building >= g.Metadata.Buildings {
		return fmt.Errorf("building %d out of range: settlement has %d buildings", building, g.Metadata.Buildings)
	}

	entities := g.Owner(scene.BuildingOwner(building))
	ps := make([]shape.Primitive, len(entities))
	for i, e := range entities {
		ps[i] = e.Primitive
	}
	m, err := mesh.Build(ps, cells)
	if err != nil {
		return fmt.Errorf("meshing building %d: %w", building, err)
	}
	if err := mesh.WriteSTLFile(out, m); err != nil {
		return err
	}
	logger.Printf("wrote %d triangles to %s", len(m.Triangles), out)
	return nil
}

func runStore(ctx context.Context, logger *log.Logger, projectPath, dbPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, g, report, err := loadAndGenerate(projectPath, nil)
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	digest, err := store.Digest(g)
	if err != nil {
		return err
	}
	prior, err := st.RunsByDigest(ctx, digest)
	if err != nil {
		return err
	}
	if len(prior) > 0 {
		logger.Printf("identical scene already stored as run %d", prior[0])
	}

	id, err := st.SaveRun(ctx, g, report)
	if err != nil {
		return err
	}
	logger.Printf("saved run %d (%d entities)", id, len(g.Entities))

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return err
	}
	printRuns(runs)
	return nil
}
