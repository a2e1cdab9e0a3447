package parser

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/util"
)

// Parser loads readings files, remembering the last result per path until
// the file content changes.
type Parser struct {
	concurrency int
	mu          sync.Mutex
	cache       map[string]cachedFile
}

type cachedFile struct {
	fingerprint string
	readings    []model.Reading
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File     string
	Readings []model.Reading
	Error    error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string]cachedFile),
	}
}

// ParseFile parses the readings file at path. The returned slice is a copy
// the caller may modify. The file is read once, so the cached fingerprint
// always matches the parsed content.
func (p *Parser) ParseFile(path string) ([]model.Reading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		util.LogDebugf("Failed to read file: %s - %v", path, err)
		return nil, fmt.Errorf("failed to read readings file: %w", err)
	}
	fingerprint := util.BytesFingerprint(data)

	p.mu.Lock()
	if cached, ok := p.cache[path]; ok && cached.fingerprint == fingerprint {
		p.mu.Unlock()
		util.LogDebugf("Cache hit for %s (%s)", path, fingerprint)
		return model.CloneReadings(cached.readings), nil
	}
	p.mu.Unlock()

	readings, err := parseReadings(path, data)
	if err != nil {
		p.mu.Lock()
		delete(p.cache, path)
		p.mu.Unlock()
		return nil, err
	}

	p.mu.Lock()
	p.cache[path] = cachedFile{fingerprint: fingerprint, readings: readings}
	p.mu.Unlock()

	return model.CloneReadings(readings), nil
}

// ParseFiles parses multiple files concurrently and returns a channel of ParseResult.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebugf("Start concurrent parsing of %d files, concurrency: %d", len(files), p.concurrency)

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			readings, err := p.ParseFile(f)
			if err != nil {
				util.LogDebugf("File parsing failed: %s - %v", f, err)
			}

			results <- ParseResult{
				File:     f,
				Readings: readings,
				Error:    err,
			}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebugf("Concurrent parsing finished, total duration: %v", time.Since(start))
	}()

	return results
}
