// Package input reads the two plain-text files a research run starts from:
// a list of seed URLs and a list of keyword definitions.
package input

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/keyscout/keyscout/internal/similarity"
)

// URLs reads one seed URL per line. Blank lines and lines starting with '#'
// are skipped.
func URLs(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("read seed urls: %w", err)
	}
	return lines, nil
}

// Keywords reads "keyword: description" lines. The split happens at the
// first colon; a line without a colon becomes a keyword with an empty
// description. Blank lines and '#' comments are skipped.
func Keywords(path string) ([]similarity.Keyword, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords: %w", err)
	}

	keywords := make([]similarity.Keyword, 0, len(lines))
	for _, line := range lines {
		keyword, description, found := strings.Cut(line, ":")
		if !found {
			keywords = append(keywords, similarity.Keyword{Keyword: strings.TrimSpace(line)})
			continue
		}
		keywords = append(keywords, similarity.Keyword{
			Keyword:     strings.TrimSpace(keyword),
			Description: strings.TrimSpace(description),
		})
	}
	return keywords, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
