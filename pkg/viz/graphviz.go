package viz

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// OutputFormat represents the output format
type OutputFormat string

const (
	FormatDOT OutputFormat = "dot" // DOT source
	FormatSVG OutputFormat = "svg" // SVG vector graphics
	FormatPNG OutputFormat = "png" // PNG raster graphics
	FormatPDF OutputFormat = "pdf" // PDF document
)

// RenderOptions configures rendering of an already-generated DOT
// document to a file.
type RenderOptions struct {
	Layout string       // GraphViz layout engine (dot, neato, fdp, ...)
	Output string       // Output file path
	Format OutputFormat // Output format
}

// RenderToFile writes dotContent to opts.Output, shelling out to the
// GraphViz `dot` family of tools for any non-DOT format.
func RenderToFile(dotContent string, opts RenderOptions) error {
	if opts.Format == "" {
		ext := strings.ToLower(filepath.Ext(opts.Output))
		switch ext {
		case ".dot":
			opts.Format = FormatDOT
		case ".svg":
			opts.Format = FormatSVG
		case ".png":
			opts.Format = FormatPNG
		case ".pdf":
			opts.Format = FormatPDF
		default:
			opts.Format = FormatDOT
		}
	}

	if opts.Format == FormatDOT {
		return os.WriteFile(opts.Output, []byte(dotContent), 0644)
	}

	if !isGraphVizAvailable() {
		dotPath := strings.TrimSuffix(opts.Output, filepath.Ext(opts.Output)) + ".dot"
		if err := os.WriteFile(dotPath, []byte(dotContent), 0644); err != nil {
			return fmt.Errorf("failed to write DOT file: %w", err)
		}
		return fmt.Errorf("GraphViz not available, saved as DOT format to %s (install graphviz to render %s)", dotPath, opts.Format)
	}

	return renderWithGraphViz(dotContent, opts)
}

// isGraphVizAvailable checks if GraphViz is installed
func isGraphVizAvailable() bool {
	_, err := exec.LookPath("dot")
	return err == nil
}

// renderWithGraphViz renders DOT content using GraphViz
func renderWithGraphViz(dotContent string, opts RenderOptions) error {
	cmd := opts.Layout
	if cmd == "" {
		cmd = "dot"
	}

	command := exec.Command(cmd, fmt.Sprintf("-T%s", opts.Format), "-o", opts.Output)
	command.Stdin = strings.NewReader(dotContent)

	var stderr strings.Builder
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return fmt.Errorf("GraphViz rendering failed: %s: %w", stderr.String(), err)
	}
	return nil
}

// GetAvailableLayouts returns available GraphViz layout engines
func GetAvailableLayouts() []string {
	layouts := []string{"dot", "neato", "fdp", "circo", "twopi", "sfdp"}
	available := make([]string, 0)
	for _, layout := range layouts {
		if _, err := exec.LookPath(layout); err == nil {
			available = append(available, layout)
		}
	}
	return available
}

// ValidateLayout checks if a layout engine is available
func ValidateLayout(layout string) error {
	if layout == "" {
		layout = "dot"
	}
	if _, err := exec.LookPath(layout); err != nil {
		return fmt.Errorf("layout engine '%s' not found (install graphviz)", layout)
	}
	return nil
}
