package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChicagoDave/citadel/internal/server"
	"github.com/ChicagoDave/citadel/pkg/mesh"
)

func main() {
	logger := log.New(os.Stderr, "citadel: ", log.LstdFlags)

	rootCmd := &cobra.Command{
		Use:          "citadel",
		Short:        "Procedural walled city and settlement generator",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(generateCmd(logger))
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(exportCmd(logger))
	rootCmd.AddCommand(meshCmd(logger))
	rootCmd.AddCommand(storeCmd(logger))
	rootCmd.AddCommand(serveCmd(logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// projectArg returns the optional project directory.
func projectArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func generateCmd(logger *log.Logger) *cobra.Command {
	var seed float64

	cmd := &cobra.Command{
		Use:   "generate [project-path]",
		Short: "Generate the settlement and print its scene graph as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var override *float64
			if c.Flags().Changed("seed") {
				override = &seed
			}
			return runGenerate(logger, projectArg(args), override)
		},
	}

	cmd.Flags().Float64Var(&seed, "seed", 0, "override the settlement seed")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a settlement file and the scene it produces",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(projectArg(args))
		},
	}
}

func exportCmd(logger *log.Logger) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export [project-path]",
		Short: "Write the scene as a zstd-compressed JSON-lines archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runExport(logger, projectArg(args), out)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "scene.jsonl.zst", "archive path")
	return cmd
}

func meshCmd(logger *log.Logger) *cobra.Command {
	var (
		out      string
		building int
		cells    int
	)

	cmd := &cobra.Command{
		Use:   "mesh [project-path]",
		Short: "Render one building as a binary STL mesh",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runMesh(logger, projectArg(args), out, building, cells)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "building.stl", "STL path")
	cmd.Flags().IntVar(&building, "building", 0, "terrain building index")
	cmd.Flags().IntVar(&cells, "cells", mesh.DefaultCells, "marching cubes cells along the longest axis")
	return cmd
}

func storeCmd(logger *log.Logger) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "store [project-path]",
		Short: "Generate the settlement and record the run in a SQLite index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runStore(c.Context(), logger, projectArg(args), db)
		},
	}

	cmd.Flags().StringVar(&db, "db", "runs.db", "SQLite database path")
	return cmd
}

func serveCmd(logger *log.Logger) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local dev server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			srv := server.New(projectArg(args), port, logger)
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	return cmd
}
