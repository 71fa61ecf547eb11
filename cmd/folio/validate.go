package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"folio.dev/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [content-file]",
	Short: "Check the content catalog",
	Long: `Loads the content catalog (CONTENT_FILE by default) and reports
structural errors. Testimonials that reference a missing project are listed
as warnings; the server drops those references at load time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := cfg.ContentFile
	if len(args) == 1 {
		path = args[0]
	}
	out := cmd.OutOrStdout()

	catalog, err := config.LoadCatalog(path)
	if err != nil {
		return err
	}
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("%s is invalid: %w", path, err)
	}

	for _, ref := range catalog.DanglingReferences() {
		fmt.Fprintf(out, "warning: testimonial %q references unknown project %q\n", ref.TestimonialID, ref.ProjectID)
	}
	fmt.Fprintf(out, "%s: ok (%d sections, %d skills, %d projects, %d testimonials)\n",
		path, len(catalog.Navigation), len(catalog.Skills), len(catalog.Projects), len(catalog.Testimonials))
	return nil
}
