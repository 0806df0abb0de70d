package services

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/utils"
)

// SourceLine is one row of the per-source table.
type SourceLine struct {
	Source    string
	OK        bool
	Count     int
	FromCache bool
	Reason    string
}

// Summary condenses a RunReport for display.
type Summary struct {
	RunID      string
	Locality   string
	Lines      []SourceLine
	Succeeded  int
	Failed     int
	Total      int
	OutputPath string
	Written    bool
	Duration   time.Duration

	// Heap in use when the summary was built, and the most memory the
	// runtime has reserved from the OS so far.
	MemInUse    uint64
	MemReserved uint64
}

type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate builds the summary. writeErr is the error Run returned, if any.
func (s *SummaryService) Generate(r *models.RunReport, writeErr error) *Summary {
	sum := &Summary{
		RunID:      r.RunID,
		Locality:   r.Locality,
		Total:      len(r.Listings),
		OutputPath: r.OutputPath,
		Written:    writeErr == nil,
		Duration:   r.Duration,
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	sum.MemInUse = ms.HeapAlloc
	sum.MemReserved = ms.Sys

	for _, o := range r.Outcomes {
		sum.Lines = append(sum.Lines, SourceLine{
			Source:    o.Source,
			OK:        o.OK(),
			Count:     o.Count,
			FromCache: o.FromCache,
			Reason:    o.Reason,
		})
		if o.OK() {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}
	s.logger.Debug("[summary] run %s: %d ok, %d failed, %d listings", sum.RunID, sum.Succeeded, sum.Failed, sum.Total)
	return sum
}

// Success reports aggregate success: at least one source worked and the
// output was written.
func (s *Summary) Success() bool {
	return s.Succeeded > 0 && s.Written
}

func (s *SummaryService) Print(w io.Writer, r *Summary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏠 LISTINGS SCRAPE: %s\033[0m\n", strings.ToUpper(r.Locality))
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Sources\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, l := range r.Lines {
		if l.OK {
			cached := ""
			if l.FromCache {
				cached = " (cached)"
			}
			fmt.Fprintf(w, "  %-14s \033[1;32mok    \033[0m %5d listings%s\n", l.Source, l.Count, cached)
		} else {
			fmt.Fprintf(w, "  %-14s \033[1;31mfailed\033[0m %s\n", l.Source, truncate(l.Reason, 60))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Sources ok / failed : \033[1m%d / %d\033[0m\n", r.Succeeded, r.Failed)
	fmt.Fprintf(w, "  Total listings      : \033[1m%d\033[0m\n", r.Total)
	if r.Written {
		fmt.Fprintf(w, "  Output              : %s\n", r.OutputPath)
	} else {
		fmt.Fprintf(w, "  Output              : \033[1;31mnot written\033[0m (%s)\n", r.OutputPath)
	}
	fmt.Fprintf(w, "  Took                : %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Memory in use / peak: %s / %s\n", mib(r.MemInUse), mib(r.MemReserved))

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func mib(b uint64) string {
	return fmt.Sprintf("%.1f MiB", float64(b)/(1<<20))
}

// truncate shortens s to max runes, ending in "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
