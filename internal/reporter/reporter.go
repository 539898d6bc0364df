package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/declutter/internal/organizer"
	"github.com/fenilsonani/declutter/internal/relocator"
	"github.com/fenilsonani/declutter/internal/ui/styles"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// ParseFormat validates a format name given on the command line
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use summary, table, json or yaml)", s)
	}
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Report renders the outcome of a run
func (r *Reporter) Report(summary *organizer.Summary) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(summary)
	case FormatJSON:
		return r.reportJSON(summary)
	case FormatYAML:
		return r.reportYAML(summary)
	case FormatSummary:
		return r.reportSummary(summary)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// reportSummary generates a human-readable summary
func (r *Reporter) reportSummary(s *organizer.Summary) error {
	title := "=== Declutter Summary ==="
	if s.DryRun {
		title = "=== Declutter Summary (dry run) ==="
	}
	fmt.Fprintln(r.writer, styles.TitleStyle.Render(title))
	fmt.Fprintf(r.writer, "Folder: %s\n", styles.FilePathStyle.Render(s.Root))

	if s.Declined {
		fmt.Fprintln(r.writer, styles.WarningStyle.Render("Cancelled, nothing was moved."))
		return nil
	}

	verb := "Moved"
	if s.DryRun {
		verb = "Would move"
	}
	fmt.Fprintf(r.writer, "%s: %d files, %s\n", verb, s.TotalMoved(),
		styles.FileSizeStyle.Render(humanize.IBytes(uint64(s.BytesMoved))))

	if len(s.Moved) > 0 {
		fmt.Fprintf(r.writer, "\nBreakdown by Category:\n")
		for _, name := range sortedKeys(s.Moved) {
			fmt.Fprintf(r.writer, "  %s: %d files\n", styles.CategoryStyle.Render(name), s.Moved[name])
		}
	}

	fmt.Fprintf(r.writer, "\nArchives: %d extracted, %d rejected\n", s.ArchivesExtracted, s.ArchivesRejected)
	fmt.Fprintf(r.writer, "Folders: %d removed, %d left in place\n", s.FoldersRemoved, s.FoldersKept)
	if s.OtherLeft > 0 {
		fmt.Fprintf(r.writer, "Other files left in place: %d\n", s.OtherLeft)
	}

	if len(s.Extensions) > 0 {
		fmt.Fprintf(r.writer, "\nKnown extensions: %s\n", strings.Join(s.Extensions, ", "))
	}
	if len(s.Unknown) > 0 {
		fmt.Fprintf(r.writer, "Unknown extensions: %s\n", strings.Join(s.Unknown, ", "))
	}

	if s.HasFailures() {
		fmt.Fprintf(r.writer, "\n%s\n", styles.ErrorStyle.Render(fmt.Sprintf("Problems: %d", countFailures(s))))
		for _, is := range s.Issues {
			if is.Kind == organizer.IssueFolderKept {
				continue
			}
			fmt.Fprintf(r.writer, "  [%s] %s: %s\n", is.Kind, is.Path, is.Detail)
		}
		if len(s.MoveErrors) > 0 {
			fmt.Fprint(r.writer, relocator.FormatErrorSummary(s.MoveErrors))
		}
	} else {
		fmt.Fprintf(r.writer, "\n%s\n", styles.SuccessStyle.Render("Done."))
	}

	return nil
}

// reportTable prints per-category counts and every issue as tables
func (r *Reporter) reportTable(s *organizer.Summary) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Category", "Files"})
	for _, name := range sortedKeys(s.Moved) {
		tw.AppendRow(table.Row{name, strconv.Itoa(s.Moved[name])})
	}
	tw.AppendFooter(table.Row{"Total", strconv.Itoa(s.TotalMoved())})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	fmt.Fprintln(r.writer, tw.Render())

	fmt.Fprintf(r.writer, "Size: %s | Archives: %d extracted, %d rejected | Folders: %d removed, %d kept\n",
		humanize.IBytes(uint64(s.BytesMoved)),
		s.ArchivesExtracted, s.ArchivesRejected,
		s.FoldersRemoved, s.FoldersKept)

	if len(s.Issues) == 0 {
		return nil
	}

	it := table.NewWriter()
	it.SetStyle(table.StyleRounded)
	it.AppendHeader(table.Row{"Issue", "Path", "Detail"})
	for _, is := range s.Issues {
		it.AppendRow(table.Row{string(is.Kind), is.Path, is.Detail})
	}
	it.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60},
		{Number: 3, WidthMax: 60},
	})
	fmt.Fprintln(r.writer, it.Render())

	return nil
}

type report struct {
	Timestamp          string `json:"timestamp" yaml:"timestamp"`
	DurationMS         int64  `json:"duration_ms" yaml:"duration_ms"`
	TotalMoved         int    `json:"total_moved" yaml:"total_moved"`
	BytesMovedReadable string `json:"bytes_moved_formatted" yaml:"bytes_moved_formatted"`
	Failed             bool   `json:"failed" yaml:"failed"`

	organizer.Summary `yaml:",inline"`
}

func newReport(s *organizer.Summary) report {
	return report{
		Timestamp:          time.Now().Format(time.RFC3339),
		DurationMS:         s.Duration().Milliseconds(),
		TotalMoved:         s.TotalMoved(),
		BytesMovedReadable: humanize.IBytes(uint64(s.BytesMoved)),
		Failed:             s.HasFailures(),
		Summary:            *s,
	}
}

// reportJSON generates a JSON report
func (r *Reporter) reportJSON(s *organizer.Summary) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newReport(s))
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(s *organizer.Summary) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(newReport(s))
}

// SaveToFile saves the report to a file
func SaveToFile(summary *organizer.Summary, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	reporter := New(file, format)
	return reporter.Report(summary)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func countFailures(s *organizer.Summary) int {
	n := 0
	for _, is := range s.Issues {
		if is.Kind != organizer.IssueFolderKept {
			n++
		}
	}
	return n
}
