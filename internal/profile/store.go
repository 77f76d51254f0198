package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store looks up stored profile documents by site origin.
type Store interface {
	Get(origin string) (string, bool)
}

// FileStore keeps profile documents in a single YAML file, keyed by origin.
type FileStore struct {
	path string

	mu   sync.Mutex
	docs map[string]string
}

// OpenFileStore loads the store at path. A missing file is an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, docs: map[string]string{}}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile store: %w", err)
	}

	if err := yaml.Unmarshal(b, &s.docs); err != nil {
		return nil, fmt.Errorf("profile store %s: %w", path, err)
	}
	if s.docs == nil {
		s.docs = map[string]string{}
	}

	return s, nil
}

func (s *FileStore) Get(origin string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[strings.TrimRight(origin, "/")]

	return doc, ok
}

// Put stores doc for origin and writes the file.
func (s *FileStore) Put(origin, doc string) error {
	origin = strings.TrimRight(origin, "/")
	if origin == "" {
		return errors.New("profile store: empty origin")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[origin] = doc

	return s.save()
}

// Delete removes the profile for origin. Deleting an unknown origin is not
// an error.
func (s *FileStore) Delete(origin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	origin = strings.TrimRight(origin, "/")
	if _, ok := s.docs[origin]; !ok {
		return nil
	}
	delete(s.docs, origin)

	return s.save()
}

// Origins lists stored origins, sorted.
func (s *FileStore) Origins() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.docs))
	for k := range s.docs {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("profile store: %w", err)
	}

	b, err := yaml.Marshal(s.docs)
	if err != nil {
		return fmt.Errorf("profile store: %w", err)
	}

	return os.WriteFile(s.path, b, 0644)
}

// Lookup returns the parsed profile stored for the origin of pageURL, or an
// empty profile when the store has none.
func Lookup(s Store, pageURL string) SiteProfile {
	if s == nil {
		return SiteProfile{}
	}

	doc, ok := s.Get(Origin(pageURL))
	if !ok {
		return SiteProfile{}
	}

	return Parse(doc)
}
