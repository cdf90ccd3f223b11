// Package snapshot writes every stored key into a single zstd-compressed
// JSON archive and restores stores from such archives.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-water-tracker/internal/kv"
)

// Version is the archive format written by Save.
const Version = 1

// ErrUnsupportedVersion is returned for archives written by a newer twt.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// Archive is the decompressed content of a snapshot file.
type Archive struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Entries   map[string]string `json:"entries"`
}

// Keys returns the archived keys in sorted order.
func (a Archive) Keys() []string {
	keys := make([]string, 0, len(a.Entries))
	for k := range a.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Manager saves and restores snapshots of one store.
type Manager struct {
	store   kv.Store
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  zerolog.Logger
	now     func() time.Time
}

// NewManager creates a Manager with its own zstd encoder and decoder.
func NewManager(store kv.Store, logger zerolog.Logger) (*Manager, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Manager{store: store, encoder: encoder, decoder: decoder, logger: logger, now: time.Now}, nil
}

// Close releases the codec resources. The store is not closed.
func (m *Manager) Close() {
	_ = m.encoder.Close()
	m.decoder.Close()
}

// Save archives every key of the store into fileName and returns the number
// of keys written. The file is replaced atomically.
func (m *Manager) Save(ctx context.Context, fileName string) (int, error) {
	keys, err := m.store.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing keys: %w", err)
	}

	archive := Archive{Version: Version, CreatedAt: m.now().UTC(), Entries: make(map[string]string, len(keys))}
	for _, k := range keys {
		v, err := m.store.Get(ctx, k)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", k, err)
		}
		archive.Entries[k] = v
	}

	jsonData, err := json.Marshal(archive)
	if err != nil {
		return 0, err
	}
	data := m.encoder.EncodeAll(jsonData, make([]byte, 0, len(jsonData)/2))
	if err := writeAtomic(fileName, data); err != nil {
		return 0, err
	}

	m.logger.Info().Str("file", fileName).Int("keys", len(archive.Entries)).Int("bytes", len(data)).Msg("snapshot saved")
	return len(archive.Entries), nil
}

// Read decodes the archive in fileName without touching the store.
func (m *Manager) Read(fileName string) (Archive, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return Archive{}, err
	}
	raw, err := m.decoder.DecodeAll(data, nil)
	if err != nil {
		return Archive{}, fmt.Errorf("decompressing %s: %w", fileName, err)
	}
	var archive Archive
	if err := json.Unmarshal(raw, &archive); err != nil {
		return Archive{}, fmt.Errorf("decoding %s: %w", fileName, err)
	}
	if archive.Version < 1 || archive.Version > Version {
		return Archive{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, archive.Version)
	}
	return archive, nil
}

// Restore replaces the store content with the archive in fileName: keys
// missing from the archive are removed after all archived keys are written. It returns the number of keys
// restored.
func (m *Manager) Restore(ctx context.Context, fileName string) (int, error) {
	archive, err := m.Read(fileName)
	if err != nil {
		return 0, err
	}

	existing, err := m.store.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing keys: %w", err)
	}
	// Stale keys are only removed once every archived key is written.
	for _, k := range archive.Keys() {
		if err := m.store.Set(ctx, k, archive.Entries[k]); err != nil {
			return 0, fmt.Errorf("restoring %s: %w", k, err)
		}
	}
	for _, k := range existing {
		if _, keep := archive.Entries[k]; keep {
			continue
		}
		if err := m.store.Remove(ctx, k); err != nil {
			return 0, fmt.Errorf("removing %s: %w", k, err)
		}
	}

	m.logger.Info().Str("file", fileName).Int("keys", len(archive.Entries)).Time("created_at", archive.CreatedAt).Msg("snapshot restored")
	return len(archive.Entries), nil
}

func writeAtomic(fileName string, data []byte) error {
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return os.Rename(tmpFile, fileName)
}
