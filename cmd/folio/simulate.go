package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"folio.dev/internal/page"
	"folio.dev/internal/scene"
	"folio.dev/internal/section"
	"folio.dev/internal/services"
	"folio.dev/internal/shell"
)

var (
	simStep          float64
	simViewport      float64
	simSectionHeight float64
	simNoWebGL       bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Scroll through the page and print every section's state",
	Long: `Mounts the page in-process with a stepped frame loop and scrolls from
the top to the bottom and back, printing the active section, the progress
bar, the hero assembly and each section's lifecycle state at every stop.
Exits non-zero if anything is left running after unmount.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().Float64Var(&simStep, "step", 250, "Scroll distance between stops, in px")
	simulateCmd.Flags().Float64Var(&simViewport, "viewport", 900, "Viewport height, in px")
	simulateCmd.Flags().Float64Var(&simSectionHeight, "section-height", 1000, "Height of every section, in px")
	simulateCmd.Flags().BoolVar(&simNoWebGL, "no-webgl", false, "Simulate a device without WebGL")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simStep <= 0 || simViewport <= 0 || simSectionHeight <= 0 {
		return errors.New("step, viewport and section-height must be positive")
	}
	content, err := services.NewContentService(cfg.ContentFile, logger)
	if err != nil {
		return err
	}
	catalog := content.Catalog()

	sh, err := shell.New(shell.Options{Registerer: prometheus.NewRegistry(), Logger: logger})
	if err != nil {
		return err
	}
	defer sh.Shutdown()

	all := section.Definitions(section.Content{
		Profile:      catalog.Profile,
		SkillGroups:  services.NewSkillService(content).Groups(),
		Projects:     catalog.Projects,
		Testimonials: catalog.Testimonials,
	})
	var defs []section.Definition
	var ids []string
	for _, item := range catalog.Navigation {
		if def, ok := section.Lookup(all, item.ID); ok {
			defs = append(defs, def)
			ids = append(ids, item.ID)
		}
	}

	var scenes []page.Scene
	if _, ok := section.Lookup(defs, section.HeroID); ok {
		surface := scene.NewSurface(sh.Loop, sh.Stage, scene.SurfaceOptions{
			Element:  "hero-canvas",
			Geometry: scene.Brain(scene.DefaultParams(scene.KindBrain).Seed, 1),
			Guard:    sh.Guard,
			Logger:   logger,
		})
		scenes = append(scenes, page.Scene{Section: section.HeroID, Surface: surface})
	}

	layout := page.Stack(ids, simSectionHeight, simViewport)
	p := page.New(page.Options{
		Loop:         sh.Loop,
		Stage:        sh.Stage,
		Scroll:       sh.Scroll,
		Definitions:  defs,
		Layout:       layout,
		Scenes:       scenes,
		Capabilities: scene.Capabilities{WebGL: !simNoWebGL},
		Logger:       logger,
	})
	if err := p.Mount(); err != nil {
		return err
	}

	now := time.Now()
	frames := func(n int) {
		for i := 0; i < n; i++ {
			now = now.Add(sh.Loop.Interval())
			sh.Loop.Step(now)
		}
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "offset\tactive\tprogress\tassembly")
	for _, id := range ids {
		fmt.Fprintf(tw, "\t%s", id)
	}
	if len(scenes) > 0 {
		fmt.Fprint(tw, "\tscene")
	}
	fmt.Fprintln(tw)

	bottom := max(0, layout.DocumentHeight()-simViewport)
	var offsets []float64
	for o := 0.0; o < bottom; o += simStep {
		offsets = append(offsets, o)
	}
	offsets = append(offsets, bottom)
	for i := len(offsets) - 2; i >= 0; i-- {
		offsets = append(offsets, offsets[i])
	}

	for _, offset := range offsets {
		if err := p.Scroll(offset); err != nil {
			p.Unmount()
			return err
		}
		frames(10)
		fmt.Fprintf(tw, "%.0f\t%s\t%.0f%%\t%.2f", offset, p.Active(), sh.Progress.Width(), p.Assembly())
		for _, s := range p.Sections() {
			fmt.Fprintf(tw, "\t%s", s.State())
		}
		for _, sc := range scenes {
			fmt.Fprintf(tw, "\t%s", sc.Surface.State())
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p.Unmount()
	sh.Shutdown()
	if n := sh.Loop.Active(); n != 0 {
		return fmt.Errorf("%d frame callbacks still running after unmount", n)
	}
	if n := sh.Stage.Claims(); n != 0 {
		return fmt.Errorf("%d element claims still held after unmount", n)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "unmounted cleanly")
	return nil
}
