package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ConfigKey names the persisted dashboard document.
const ConfigKey = "dashboard-config"

// BlobStore holds one opaque document. Load returns nil, nil when nothing
// has been saved yet.
type BlobStore interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// PersistedConfig is the document written on every mutation.
type PersistedConfig struct {
	Widgets    []Widget `json:"widgets"`
	IsDarkMode bool     `json:"isDarkMode"`

	// Rejected holds one error per saved widget entry that could not be
	// decoded. Those entries are left out of Widgets.
	Rejected []error `json:"-"`
}

// DecodeConfig parses a persisted document. A document with no widgets
// array is treated as unusable. Widget entries are decoded one at a time,
// so a single bad entry only costs that widget.
func DecodeConfig(data []byte) (*PersistedConfig, error) {
	var raw struct {
		Widgets    *[]json.RawMessage `json:"widgets"`
		IsDarkMode bool               `json:"isDarkMode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Widgets == nil {
		return nil, errNoWidgets
	}

	cfg := &PersistedConfig{
		Widgets:    make([]Widget, 0, len(*raw.Widgets)),
		IsDarkMode: raw.IsDarkMode,
	}
	for i, entry := range *raw.Widgets {
		var w Widget
		if err := json.Unmarshal(entry, &w); err != nil {
			cfg.Rejected = append(cfg.Rejected, fmt.Errorf("widget %d: %w", i, err))
			continue
		}
		cfg.Widgets = append(cfg.Widgets, w)
	}
	return cfg, nil
}

// FileBlobStore keeps the document at <dir>/dashboard-config.json.
type FileBlobStore struct {
	dir string
}

// NewFileBlobStore returns a store rooted at dir. The directory is created
// on first save.
func NewFileBlobStore(dir string) *FileBlobStore {
	return &FileBlobStore{dir: dir}
}

// Path returns the document's file path.
func (f *FileBlobStore) Path() string {
	return filepath.Join(f.dir, ConfigKey+".json")
}

// Load reads the document. Returns nil, nil if the file doesn't exist.
func (f *FileBlobStore) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Save replaces the document atomically via temp file and rename.
func (f *FileBlobStore) Save(data []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ConfigKey+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, f.Path()); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// MemoryBlobStore keeps the document in memory. Useful for tests and for
// running without a writable config directory.
type MemoryBlobStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryBlobStore returns a store preloaded with data, which may be nil.
func NewMemoryBlobStore(data []byte) *MemoryBlobStore {
	return &MemoryBlobStore{data: data}
}

// Load returns a copy of the stored document.
func (m *MemoryBlobStore) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

// Save replaces the stored document.
func (m *MemoryBlobStore) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *MemoryBlobStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
