package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"folio.dev/internal/scene"
)

var (
	geometryOut  string
	geometrySeed uint64
)

var geometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Precompute the scene geometry as static JSON",
	Long: `Builds every procedural geometry the page uses and writes one JSON
file per kind to <out>/geometry/. The files hold the same geometry
/api/scene/geometry/{kind} serves for the same seed.`,
	Args: cobra.NoArgs,
	RunE: runGeometry,
}

func init() {
	geometryCmd.Flags().StringVarP(&geometryOut, "out", "o", "", "Output directory (default STATIC_PATH)")
	geometryCmd.Flags().Uint64Var(&geometrySeed, "seed", 0, "Seed for every generator (default: each kind's default)")
}

func runGeometry(cmd *cobra.Command, args []string) error {
	outputDir := geometryOut
	if outputDir == "" {
		outputDir = cfg.StaticPath
	}
	dir := filepath.Join(outputDir, "geometry")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cache := scene.NewGeometryCache(logger)
	params := defaultGeometry(geometrySeed)
	if err := cache.Warm(cmd.Context(), params); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range params {
		g, err := cache.Get(p)
		if err != nil {
			return err
		}
		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", p.Kind, err)
		}
		name := string(p.Kind) + ".json"
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		fmt.Fprintf(out, "Created %s (%d vertices, radius %.2f)\n", name, g.VertexCount(), g.Radius())
	}
	return nil
}
