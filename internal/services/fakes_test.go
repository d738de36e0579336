package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"alfredoptarigan/screenly/internal/models"
)

type reply struct {
	text string
	err  error
}

// fakeGenerator answers prompts by the first marker they contain.
type fakeGenerator struct {
	mu      sync.Mutex
	routes  []route
	prompts []string
}

type route struct {
	marker string
	reply  reply
}

const (
	markerPersonal       = `"telephone"`
	markerQualifications = `"job_history_summary"`
	markerSummary        = "Write a concise summary"
	markerScoring        = "HR expert"
)

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{}
}

func (f *fakeGenerator) on(marker, text string) *fakeGenerator {
	f.routes = append(f.routes, route{marker: marker, reply: reply{text: text}})
	return f
}

func (f *fakeGenerator) fail(marker string, err error) *fakeGenerator {
	f.routes = append(f.routes, route{marker: marker, reply: reply{err: err}})
	return f
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	for _, r := range f.routes {
		if strings.Contains(prompt, r.marker) {
			return r.reply.text, r.reply.err
		}
	}
	return "", errors.New("no canned reply")
}

func (f *fakeGenerator) promptWith(marker string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.prompts {
		if strings.Contains(p, marker) {
			return p
		}
	}
	return ""
}

type fakeSpreadsheet struct {
	mu        sync.Mutex
	exported  []ExportRow
	exportErr error
	profiles  map[string]*models.JobProfile
	lookupErr error
}

func (f *fakeSpreadsheet) ExportRow(ctx context.Context, row ExportRow) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exportErr != nil {
		return "", f.exportErr
	}
	f.exported = append(f.exported, row)
	return "Results!A2:L2", nil
}

func (f *fakeSpreadsheet) LookupProfile(ctx context.Context, role string) (*models.JobProfile, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.profiles[role], nil
}

type fakeResolver struct {
	name  string
	text  string
	found bool
	err   error
	calls int
}

func (f *fakeResolver) Name() string { return f.name }

func (f *fakeResolver) Resolve(ctx context.Context, app *models.Application) (string, bool, error) {
	f.calls++
	return f.text, f.found, f.err
}

type fakeTextExtractor struct {
	text string
	err  error
}

func (f *fakeTextExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	return f.text, f.err
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	ref := StoredName(filename)
	m.objects[ref] = data
	return ref, nil
}

func (m *memoryStorage) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref)
	return nil
}
