package observability

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jobboard/jobboard/internal/paginate"
	"github.com/jobboard/jobboard/internal/store"
	"github.com/jobboard/jobboard/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow caps requirement and benefit lists in job details
	maxItemsToShow = 5
)

// Printer renders job-board records for the terminal.
type Printer struct {
	out io.Writer
	now func() time.Time
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, now: time.Now}
}

// WithClock replaces the clock used for relative dates.
func (p *Printer) WithClock(now func() time.Time) *Printer {
	p.now = now
	return p
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, width int) string {
	if len(s) > width {
		return s[:width-3] + "..."
	}
	return s
}

// FormatSalary renders a salary as "$120,000", or "Not specified" when the
// job advertises none.
func FormatSalary(job *types.Job) string {
	if !job.HasSalary() {
		return "Not specified"
	}
	return "$" + humanize.Comma(int64(math.Round(*job.Salary)))
}

// posted renders a timestamp relative to the printer clock.
func (p *Printer) posted(t time.Time) string {
	return humanize.RelTime(t, p.now(), "ago", "from now")
}

// PrintJobPage outputs one page of jobs followed by the page summary.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintJobPage(jobs []types.Job, page, size, total int, favorites map[string]bool) {
	if total == 0 {
		fmt.Fprintln(p.out, "No jobs found. Try adjusting your filters.")
		return
	}

	for _, job := range jobs {
		marker := " "
		if favorites[job.ID] {
			marker = "★"
		}
		fmt.Fprintf(p.out, "%s %s  %s\n", marker, job.ID, job.Title)
		fmt.Fprintf(p.out, "    %s · %s · %s · %s\n", job.Company, job.Location, job.Type, FormatSalary(&job))
		fmt.Fprintf(p.out, "    posted %s\n", p.posted(job.CreatedAt))
	}

	first, last := paginate.Range(page, size, total)
	totalPages := paginate.TotalPages(total, size)
	fmt.Fprintf(p.out, "\nShowing %d-%d of %s jobs\n", first, last, humanize.Comma(int64(total)))
	if totalPages > 1 {
		fmt.Fprintf(p.out, "Pages: %s\n", FormatWindow(page, totalPages))
	}
}

// FormatWindow renders the page-number widget, bracketing the current page.
func FormatWindow(current, totalPages int) string {
	current = paginate.Clamp(current, totalPages)
	window := paginate.Window(current, totalPages)
	parts := make([]string, 0, len(window))
	for _, n := range window {
		switch n {
		case paginate.Ellipsis:
			parts = append(parts, "…")
		case current:
			parts = append(parts, "["+strconv.Itoa(n)+"]")
		default:
			parts = append(parts, strconv.Itoa(n))
		}
	}
	return strings.Join(parts, " ")
}

// PrintJob outputs the full details of a single job.
func (p *Printer) PrintJob(job *types.Job, favorite, applied bool) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	sb.WriteString(fmt.Sprintf("Location: %s\n", job.Location))
	sb.WriteString(fmt.Sprintf("Type:     %s\n", job.Type))
	sb.WriteString(fmt.Sprintf("Salary:   %s\n", FormatSalary(job)))
	sb.WriteString(fmt.Sprintf("Posted:   %s\n", p.posted(job.CreatedAt)))
	if favorite {
		sb.WriteString("★ Saved to favorites\n")
	}
	if applied {
		sb.WriteString("✓ You have applied to this job\n")
	}
	sb.WriteString("\n")
	for _, line := range wrap(job.Description, boxWidth-4) {
		sb.WriteString(line + "\n")
	}

	writeList(&sb, "Requirements:", job.Requirements)
	writeList(&sb, "Benefits:", job.Benefits)

	p.printBox(job.Title, strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + title + "\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// wrap breaks text into lines of at most width characters on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line)
	}
	return lines
}

// PrintStats outputs the summary of the filtered jobs.
func (p *Printer) PrintStats(stats store.Stats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Available jobs:  %s\n", humanize.Comma(int64(stats.Available))))
	sb.WriteString(fmt.Sprintf("Companies:       %s\n", humanize.Comma(int64(stats.Companies))))
	sb.WriteString(fmt.Sprintf("Locations:       %s\n", humanize.Comma(int64(stats.Locations))))
	if stats.AverageSalary > 0 {
		sb.WriteString(fmt.Sprintf("Average salary:  $%s", humanize.Comma(int64(stats.AverageSalary))))
	} else {
		sb.WriteString("Average salary:  Not specified")
	}
	p.printBox("JOB STATS", sb.String())
}

// PrintApplications outputs applications with their status, newest first as given.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintApplications(apps []types.Application) {
	if len(apps) == 0 {
		fmt.Fprintln(p.out, "No applications found.")
		return
	}

	for _, app := range apps {
		title := app.JobID
		if app.Job != nil {
			title = fmt.Sprintf("%s at %s", app.Job.Title, app.Job.Company)
		}
		fmt.Fprintf(p.out, "%s  [%s]  %s\n", app.ID, app.Status, title)
		fmt.Fprintf(p.out, "    %s <%s> · applied %s\n", app.Name, app.Email, p.posted(app.CreatedAt))
	}
}

// PrintStatusCounts outputs one line per status in review order.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStatusCounts(counts map[types.ApplicationStatus]int) {
	parts := make([]string, 0, len(counts))
	for _, status := range types.ApplicationStatuses() {
		parts = append(parts, fmt.Sprintf("%s: %d", status, counts[status]))
	}
	fmt.Fprintln(p.out, strings.Join(parts, "  "))
}
