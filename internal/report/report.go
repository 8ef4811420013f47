// Package report renders build plans and build results for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/wolfeidau/libplan/internal/plan"
	"gopkg.in/yaml.v3"
)

// Format represents the output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format string
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %s (valid: table, json, yaml)", s)
	}
}

// PlanView is the serializable form of a resolved plan and its artifacts.
type PlanView struct {
	Plan      *plan.BuildPlan           `json:"plan" yaml:"plan"`
	Artifacts []plan.ArtifactDescriptor `json:"artifacts" yaml:"artifacts"`
}

// WritePlan prints the resolved plan followed by one row per artifact.
func WritePlan(w io.Writer, format Format, bp *plan.BuildPlan, artifacts []plan.ArtifactDescriptor) error {
	view := PlanView{Plan: bp, Artifacts: artifacts}

	switch format {
	case FormatJSON:
		return writeJSON(w, view)
	case FormatYAML:
		return writeYAML(w, view)
	}

	formats := make([]string, len(bp.Formats))
	for i, f := range bp.Formats {
		formats[i] = f.String()
	}

	_, _ = fmt.Fprintf(w, "entry:    %s\n", bp.EntryPath)
	_, _ = fmt.Fprintf(w, "outDir:   %s\n", bp.OutDir)
	_, _ = fmt.Fprintf(w, "base:     %s\n", bp.BasePublicPath)
	_, _ = fmt.Fprintf(w, "formats:  %s\n", strings.Join(formats, ", "))
	_, _ = fmt.Fprintf(w, "manifest: %t\n\n", bp.EmitManifest)

	rows := make([][]string, len(artifacts))
	for i, a := range artifacts {
		rows[i] = []string{a.Format.String(), a.RelativeFileName, a.AbsoluteOutputPath}
	}

	writeTable(w, []string{"Format", "File", "Output"}, rows)
	return nil
}

// WriteBuild prints the emitted files with raw and gzip sizes.
func WriteBuild(w io.Writer, format Format, emitted *plan.EmittedFiles) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, emitted)
	case FormatYAML:
		return writeYAML(w, emitted)
	}

	rows := make([][]string, 0, len(emitted.Files))
	var total, totalGzip int64

	for _, f := range emitted.Files {
		rows = append(rows, []string{
			f.Path,
			f.Format.String(),
			humanize.Bytes(uint64(f.Size)),     // #nosec G115 - sizes are never negative
			humanize.Bytes(uint64(f.GzipSize)), // #nosec G115 - sizes are never negative
			f.Hash,
		})
		total += f.Size
		totalGzip += f.GzipSize
	}

	writeTable(w, []string{"File", "Format", "Size", "Gzip", "Hash"}, rows)

	_, _ = fmt.Fprintf(w, "\n%d files, %s (gzip: %s)\n",
		len(emitted.Files),
		humanize.Bytes(uint64(total)),     // #nosec G115 - sizes are never negative
		humanize.Bytes(uint64(totalGzip)), // #nosec G115 - sizes are never negative
	)

	if emitted.ManifestPath != "" {
		_, _ = fmt.Fprintf(w, "manifest: %s\n", emitted.ManifestPath)
	}

	return nil
}

func writeTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)

	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(rows)
	table.Render()
}

func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func writeYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer func() { _ = encoder.Close() }()
	return encoder.Encode(data)
}
