// Package kb loads the knowledge base of disease-description passages.
package kb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when a knowledge base file is not valid UTF-8.
var ErrInvalidEncoding = errors.New("knowledge base file is not valid UTF-8")

// Passage is one chunk of a knowledge base file.
type Passage struct {
	Index      int    `json:"index"`       // position in the KB-wide passage list
	Text       string `json:"text"`
	Source     string `json:"source"`      // base name of the file, e.g. "pneumonia.txt"
	ChunkIndex int    `json:"chunk_index"` // position among the file's non-empty chunks
}

// KnowledgeBase is the immutable set of passages loaded at startup.
type KnowledgeBase struct {
	Dir      string
	Files    []string // base names of the files read, in load order
	Passages []Passage
}

// Len returns the number of passages, treating a nil KnowledgeBase as empty.
func (k *KnowledgeBase) Len() int {
	if k == nil {
		return 0
	}
	return len(k.Passages)
}

// LoadDir reads every *.txt file directly inside dir in lexicographic order
// and splits each into passages. A missing directory yields an empty
// knowledge base. A file that is not valid UTF-8 fails the whole load.
func LoadDir(dir string) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{Dir: dir}

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return kb, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading knowledge base dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("knowledge base path %s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("listing knowledge base files: %w", err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%s: %w", path, ErrInvalidEncoding)
		}

		source := filepath.Base(path)
		kb.Files = append(kb.Files, source)
		for i, chunk := range Chunk(string(data)) {
			kb.Passages = append(kb.Passages, Passage{
				Index:      len(kb.Passages),
				Text:       chunk,
				Source:     source,
				ChunkIndex: i,
			})
		}
	}

	return kb, nil
}

// lineBreaks folds CRLF, CR and LF line endings into a single space each.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Chunk splits a file's text into passages: line breaks become spaces, the
// text is cut on the literal ". " separator, and empty pieces are dropped.
// The terminal period of each inner chunk is consumed by the separator.
func Chunk(text string) []string {
	text = lineBreaks.Replace(strings.TrimSpace(text))
	var chunks []string
	for _, part := range strings.Split(text, ". ") {
		if part = strings.TrimSpace(part); part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks
}
