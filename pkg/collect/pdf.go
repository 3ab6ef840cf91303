package collect

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/manifestlab/puppetmill/pkg/corpus"
)

const (
	minPDFBlockLines = 3
	minPDFBlockChars = 51
)

var (
	sectionHeaderRe = regexp.MustCompile(`^(Chapter \d+|Section \d+|\d+\.\d+)`)
	blockOpenerRe   = regexp.MustCompile(`^(class\s+\w+|define\s+\w+|node\s+|file\s*\{|package\s*\{|service\s*\{|exec\s*\{)`)
)

// PDFExtractor pulls Puppet code blocks out of technical-book PDFs using
// line-oriented heuristics over extracted page text.
type PDFExtractor struct {
	log *slog.Logger
}

func NewPDFExtractor(log *slog.Logger) (*PDFExtractor, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	return &PDFExtractor{log: log}, nil
}

// ExtractFile extracts examples from one PDF file.
func (e *PDFExtractor) ExtractFile(path string) ([]corpus.Example, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	base := filepath.Base(path)
	scanner := newBlockScanner(base)

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Warn("Failed to extract page text", "file", base, "page", i, "error", err)
			continue
		}
		scanner.scanPage(i, text)
	}
	examples := scanner.finish()
	e.log.Info("Extracted PDF examples", "file", base, "count", len(examples))
	return examples, nil
}

// blockScanner accumulates code blocks across lines of page text. A block
// opens on a resource or class/define/node line and continues while lines
// look like code (indented, attribute arrows, trailing commas, or a bare
// closing brace).
type blockScanner struct {
	file     string
	section  string
	page     int
	buffer   []string
	inBlock  bool
	examples []corpus.Example
}

func newBlockScanner(file string) *blockScanner {
	return &blockScanner{file: file}
}

func (s *blockScanner) scanPage(page int, text string) {
	s.page = page
	for _, line := range strings.Split(text, "\n") {
		s.scanLine(line)
	}
}

func (s *blockScanner) scanLine(line string) {
	trimmed := strings.TrimSpace(line)

	if sectionHeaderRe.MatchString(trimmed) {
		s.section = trimmed
	}

	if !s.inBlock {
		if blockOpenerRe.MatchString(trimmed) {
			s.inBlock = true
			s.buffer = []string{line}
		}
		return
	}

	if isCodeContinuation(line, trimmed) {
		s.buffer = append(s.buffer, line)
		return
	}
	s.closeBlock()

	// The terminating line may itself open a new block.
	if blockOpenerRe.MatchString(trimmed) {
		s.inBlock = true
		s.buffer = []string{line}
	}
}

func isCodeContinuation(line, trimmed string) bool {
	return strings.HasPrefix(line, " ") ||
		strings.HasPrefix(line, "\t") ||
		strings.Contains(line, "=>") ||
		strings.HasSuffix(trimmed, ",") ||
		trimmed == "}"
}

func (s *blockScanner) closeBlock() {
	defer func() {
		s.inBlock = false
		s.buffer = nil
	}()

	if len(s.buffer) < minPDFBlockLines {
		return
	}
	code := strings.Join(s.buffer, "\n")
	hasSyntax := strings.Contains(code, "=>") ||
		strings.Contains(code, "class ") ||
		strings.Contains(code, "define ")
	if !hasSyntax || len(strings.TrimSpace(code)) < minPDFBlockChars {
		return
	}

	desc := fmt.Sprintf("From %s on page %d", s.section, s.page)
	if s.section == "" {
		desc = fmt.Sprintf("From page %d", s.page)
	}
	s.examples = append(s.examples, corpus.Example{
		Code:        code,
		Description: desc,
		Source:      fmt.Sprintf("%s page %d", s.file, s.page),
		Score:       10,
		Kind:        corpus.KindPDFBlock,
	})
}

func (s *blockScanner) finish() []corpus.Example {
	if s.inBlock {
		s.closeBlock()
	}
	return s.examples
}
