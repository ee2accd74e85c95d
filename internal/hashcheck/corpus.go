package hashcheck

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/corona10/goimagehash"
)

// Corpus is the reference set of perceptual hashes of known AI-generated
// images. Entries are 64-bit pHash values; comparisons are Hamming distance.
type Corpus struct {
	hashes []*goimagehash.ImageHash
	names  []string
}

// LoadCorpus reads a corpus file: one entry per line, a 16-digit hex pHash
// optionally followed by a label. Blank lines and '#' comments are skipped.
func LoadCorpus(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	c := &Corpus{}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		v, err := strconv.ParseUint(fields[0], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("corpus line %d: invalid hash %q: %w", line, fields[0], err)
		}
		name := ""
		if len(fields) > 1 {
			name = strings.Join(fields[1:], " ")
		}
		c.hashes = append(c.hashes, goimagehash.NewImageHash(v, goimagehash.PHash))
		c.names = append(c.names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return c, nil
}

// Size returns the number of corpus entries.
func (c *Corpus) Size() int {
	if c == nil {
		return 0
	}
	return len(c.hashes)
}
