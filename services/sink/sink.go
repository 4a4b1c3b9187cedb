package sink

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/internal/crawler"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/logger"
	perrors "github.com/guilhermeLira011/monitor-preco-samsung-a05s/pkg/errors"
)

// MaxListings is how many listings are shown and persisted per store
const MaxListings = 5

// Placeholders written for fields the extractor could not find
const (
	TitleNotFound = "Título não encontrado"
	PriceNotFound = "Preço não encontrado"
	LinkNotFound  = "Link não encontrado"
)

// TimestampLayout is the capture time format of every artifact
const TimestampLayout = "2006-01-02 15:04:05"

// Record is the serialized form of a listing
type Record struct {
	Title     string `json:"title"`
	Price     string `json:"price"`
	Link      string `json:"link"`
	Store     string `json:"store,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Report describes what Emit did for one store
type Report struct {
	Store    crawler.Store
	Found    int
	Written  int
	CSVPath  string
	JSONPath string
}

// Sink prints results and writes the CSV and JSON artifacts
type Sink struct {
	Dir string
	Out io.Writer
	mu  sync.Mutex
	log *logger.Logger
}

// New creates a sink writing artifacts to dir and the report to out
func New(dir string, out io.Writer) *Sink {
	return &Sink{Dir: dir, Out: out, log: logger.ForComponent("sink")}
}

// FileBase returns the artifact name (without extension) of a store
func FileBase(store crawler.Store) string {
	switch store {
	case crawler.Kabum:
		return "precos_kabum_galaxy_a05s"
	case crawler.MagazineLuiza:
		return "precos_magazine_luiza_galaxy_a05s"
	default:
		return "precos_galaxy_a05s"
	}
}

// Top returns the first MaxListings listings in accumulation order
func Top(listings []crawler.Listing) []crawler.Listing {
	if len(listings) > MaxListings {
		return listings[:MaxListings]
	}
	return listings
}

// ToRecord converts a listing, substituting placeholders for missing fields
func ToRecord(l crawler.Listing) Record {
	r := Record{
		Title:     orDefault(l.Title, TitleNotFound),
		Price:     orDefault(l.Price, PriceNotFound),
		Link:      orDefault(l.Link, LinkNotFound),
		Timestamp: l.CapturedAt.Format(TimestampLayout),
	}
	if l.Tagged {
		r.Store = l.Store.String()
	}
	return r
}

// Emit prints the report for a store result and, when it found anything,
// writes the capped listings as CSV and JSON. Nothing is written for an
// empty result.
func (s *Sink) Emit(result crawler.Result) (Report, error) {
	report := Report{Store: result.Store, Found: len(result.Listings)}
	top := Top(result.Listings)

	var buf bytes.Buffer
	writeConsole(&buf, result, top)

	if len(top) > 0 {
		records := make([]Record, len(top))
		for i, l := range top {
			records[i] = ToRecord(l)
		}

		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			s.flush(&buf)
			return report, perrors.NewPersistence(result.Store.String(), "create output dir", err)
		}

		base := filepath.Join(s.Dir, FileBase(result.Store))
		if step, err := writeArtifacts(base, records, result.Tagged); err != nil {
			s.flush(&buf)
			return report, perrors.NewPersistence(result.Store.String(), step, err)
		}
		report.CSVPath = base + ".csv"
		report.JSONPath = base + ".json"
		fmt.Fprintf(&buf, "Resultados salvos em %s\n", report.CSVPath)
		fmt.Fprintf(&buf, "\nDados também salvos em %s\n", report.JSONPath)
		report.Written = len(records)
	} else {
		fmt.Fprintf(&buf, "\nNenhum produto correspondente encontrado na %s.\n", result.Store)
	}

	s.flush(&buf)
	s.log.Info().
		Str("store", result.Store.String()).
		Int("found", report.Found).
		Int("written", report.Written).
		Msg("Results emitted")
	return report, nil
}

// flush writes a buffered block so concurrent stores do not interleave
func (s *Sink) flush(buf *bytes.Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.Out.Write(buf.Bytes()); err != nil && s.log != nil {
		s.log.Warn().Err(err).Msg("Failed to write report")
	}
}

func writeConsole(w io.Writer, result crawler.Result, top []crawler.Listing) {
	if len(top) == 0 {
		fmt.Fprintln(w, "Nenhum produto encontrado.")
		return
	}

	rule := strings.Repeat("-", 100)
	if !result.Tagged {
		rule = strings.Repeat("-", 80)
	}

	fmt.Fprintf(w, "\nEncontrados %d produtos. Exibindo os %d primeiros:\n\n", len(result.Listings), MaxListings)
	fmt.Fprintln(w, rule)
	for i, l := range top {
		r := ToRecord(l)
		fmt.Fprintf(w, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(w, "   Preço: %s\n", r.Price)
		if result.Tagged {
			fmt.Fprintf(w, "   Loja: %s\n", r.Store)
		}
		fmt.Fprintf(w, "   Link: %s\n", r.Link)
		fmt.Fprintf(w, "   Data/Hora: %s\n", r.Timestamp)
		fmt.Fprintln(w, rule)
	}
}

// writeArtifacts stages the CSV and JSON files next to their destination and
// renames them into place. A failure leaves neither file from this run
// behind, so the pair never disagrees. step names what failed.
func writeArtifacts(base string, records []Record, tagged bool) (step string, err error) {
	csvPath, jsonPath := base+".csv", base+".json"

	csvTmp, err := stage(csvPath, func(w io.Writer) error { return writeCSV(w, records, tagged) })
	if err != nil {
		return "write csv", err
	}
	jsonTmp, err := stage(jsonPath, func(w io.Writer) error { return writeJSON(w, records) })
	if err != nil {
		os.Remove(csvTmp)
		return "write json", err
	}

	if err := os.Rename(csvTmp, csvPath); err != nil {
		os.Remove(csvTmp)
		os.Remove(jsonTmp)
		return "write csv", err
	}
	if err := os.Rename(jsonTmp, jsonPath); err != nil {
		os.Remove(jsonTmp)
		os.Remove(csvPath)
		return "write json", err
	}
	return "", nil
}

// stage writes a temporary file in the directory of path and returns its name
func stage(path string, write func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	tmp := f.Name()

	err = f.Chmod(0o644)
	if err == nil {
		err = write(f)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}

func writeCSV(out io.Writer, records []Record, tagged bool) error {
	w := csv.NewWriter(out)
	header := []string{"title", "price", "link", "timestamp"}
	if tagged {
		header = []string{"title", "price", "link", "store", "timestamp"}
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Title, r.Price, r.Link, r.Timestamp}
		if tagged {
			row = []string{r.Title, r.Price, r.Link, r.Store, r.Timestamp}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(out io.Writer, records []Record) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
