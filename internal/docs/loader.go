// Package docs loads documents for ingestion from JSON, JSONL, and plain
// text files. The pipeline itself never touches the filesystem for
// documents; this is the data-loading collaborator in front of it.
package docs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"ragpipe/internal/domain"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs into single spaces and trims the
// result. Applied at load time so chunk boundaries land on real content.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// LoadFiles reads every path (shell globs allowed) into documents. A .json
// file holds an array of documents, a .jsonl file holds one per line, and
// anything else is treated as plain text forming a single document titled
// after the file. Documents without an id get a generated one.
func LoadFiles(paths []string) ([]domain.Document, error) {
	var documents []domain.Document
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			docs, err := loadFile(m)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", m, err)
			}
			documents = append(documents, docs...)
		}
	}
	return documents, nil
}

func loadFile(path string) ([]domain.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".jsonl":
		return loadJSONL(path)
	default:
		return loadText(path)
	}
}

func loadJSON(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []domain.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return finalize(docs), nil
}

func loadJSONL(path string) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var docs []domain.Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var doc domain.Document
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return finalize(docs), nil
}

func loadText(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	doc := domain.Document{
		ID:    "doc_" + uuid.New().String(),
		Title: name,
		Text:  CleanText(string(data)),
	}
	return []domain.Document{doc}, nil
}

func finalize(docs []domain.Document) []domain.Document {
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = "doc_" + uuid.New().String()
		}
		docs[i].Text = CleanText(docs[i].Text)
	}
	return docs
}
