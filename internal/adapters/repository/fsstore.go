package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"

	"github.com/attrio/turnover/pkg/metrics"
)

// Artifact and manifest file layout inside the store directory.
const (
	bundleSuffix = ".bundle.json"
	manifestFile = "manifest.json"
	dirPerm      = 0o755
)

// manifest is the store's lifecycle bookkeeping, persisted separately from
// the immutable bundle artifacts.
type manifest struct {
	ActiveID string                 `json:"active_id"`
	States   map[string]BundleState `json:"states"`
}

// FSStore implements Store on a directory of JSON artifacts. Writes go
// through a temp file plus rename so readers never observe a partial
// bundle; the active bundle is swapped via a single atomic pointer.
type FSStore struct {
	dir string

	mu       sync.Mutex // guards manifest and writes
	manifest manifest

	active atomic.Pointer[Bundle]
}

// NewFSStore opens (or creates) a bundle store at dir and restores the
// previously active bundle, if any.
func NewFSStore(ctx context.Context, dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: create store dir: %v", ErrPersistence, err)
	}

	s := &FSStore{
		dir:      dir,
		manifest: manifest{States: map[string]BundleState{}},
	}

	if err := s.readManifest(); err != nil {
		return nil, err
	}
	if s.manifest.ActiveID != "" {
		b, err := s.Load(ctx, s.manifest.ActiveID)
		if err != nil {
			return nil, fmt.Errorf("restore active bundle %s: %w", s.manifest.ActiveID, err)
		}
		s.active.Store(b)
	}
	metrics.UpdateBundlesTracked(len(s.manifest.States))
	return s, nil
}

// Save persists the bundle artifact and records it as Trained.
func (s *FSStore) Save(ctx context.Context, b *Bundle) error {
	if b.ID == "" {
		return fmt.Errorf("%w: bundle without id", ErrPersistence)
	}

	data, err := json.Marshal(b)
	if err != nil {
		metrics.RecordBundleError("save")
		return fmt.Errorf("%w: marshal bundle: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeAtomic(b.ID+bundleSuffix, data); err != nil {
		metrics.RecordBundleError("save")
		return err
	}

	s.manifest.States[b.ID] = StateTrained
	if err := s.writeManifest(); err != nil {
		// Roll the artifact back so a failed save leaves no trace.
		_ = os.Remove(filepath.Join(s.dir, b.ID+bundleSuffix))
		delete(s.manifest.States, b.ID)
		metrics.RecordBundleError("save")
		return err
	}
	b.State = StateTrained

	metrics.RecordBundleSave()
	metrics.UpdateBundlesTracked(len(s.manifest.States))
	return nil
}

// Load reconstructs a bundle by identity, classifier included.
func (s *FSStore) Load(ctx context.Context, id string) (*Bundle, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id+bundleSuffix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		metrics.RecordBundleError("load")
		return nil, fmt.Errorf("%w: read bundle: %v", ErrPersistence, err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		metrics.RecordBundleError("load")
		return nil, fmt.Errorf("%w: decode bundle: %v", ErrPersistence, err)
	}

	// Reconstruct the classifier eagerly so the returned bundle is fully
	// formed and safe for concurrent read-only use.
	if _, err := b.Classifier(); err != nil {
		metrics.RecordBundleError("load")
		return nil, fmt.Errorf("%w: rebuild classifier: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	if state, ok := s.manifest.States[b.ID]; ok {
		b.State = state
	} else {
		b.State = StateTrained
	}
	s.mu.Unlock()

	metrics.RecordBundleLoad()
	return &b, nil
}

// Activate transitions the bundle to Active, retiring the previous active
// bundle, and swaps the in-memory active pointer last so readers always
// see a fully-formed bundle.
func (s *FSStore) Activate(ctx context.Context, id string) (*Bundle, error) {
	b, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.manifest.States[id] {
	case StateTrained, StateRetired:
		// Trained bundles activate normally; re-activating a retired
		// bundle is allowed because it is an explicit call.
	case StateActive:
		return b, nil // already active
	default:
		return nil, fmt.Errorf("%w: %s is %q", ErrInvalidState, id, s.manifest.States[id])
	}

	previous := s.manifest.ActiveID
	previousState := s.manifest.States[previous]
	ownState := s.manifest.States[id]

	if previous != "" && previous != id {
		s.manifest.States[previous] = StateRetired
	}
	s.manifest.States[id] = StateActive
	s.manifest.ActiveID = id

	if err := s.writeManifest(); err != nil {
		// Restore bookkeeping; the pointer was never swapped.
		s.manifest.ActiveID = previous
		if previous != "" && previous != id {
			s.manifest.States[previous] = previousState
		}
		s.manifest.States[id] = ownState
		metrics.RecordBundleError("activate")
		return nil, err
	}

	b.State = StateActive
	s.active.Store(b)
	metrics.RecordBundleActivation()
	return b, nil
}

// Active returns the currently active bundle.
func (s *FSStore) Active(ctx context.Context) (*Bundle, error) {
	if b := s.active.Load(); b != nil {
		return b, nil
	}
	return nil, ErrNoActiveBundle
}

// Retire explicitly retires a bundle. Retiring the active bundle clears
// the active pointer.
func (s *FSStore) Retire(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.manifest.States[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if state == StateRetired {
		return nil
	}

	s.manifest.States[id] = StateRetired
	wasActive := s.manifest.ActiveID == id
	if wasActive {
		s.manifest.ActiveID = ""
	}
	if err := s.writeManifest(); err != nil {
		s.manifest.States[id] = state
		if wasActive {
			s.manifest.ActiveID = id
		}
		return err
	}
	if wasActive {
		s.active.Store(nil)
	}
	return nil
}

// List returns info rows for every stored bundle, newest first.
func (s *FSStore) List(ctx context.Context) ([]BundleInfo, error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.manifest.States))
	for id := range s.manifest.States {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	infos := make([]BundleInfo, 0, len(ids))
	for _, id := range ids {
		b, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, b.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt > infos[j].CreatedAt
	})
	return infos, nil
}

// writeAtomic writes data to name via a temp file in the same directory
// followed by rename.
func (s *FSStore) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write temp file: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close temp file: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: rename temp file: %v", ErrPersistence, err)
	}
	return nil
}

// writeManifest persists the lifecycle bookkeeping atomically.
// Must be called with s.mu held.
func (s *FSStore) writeManifest() error {
	data, err := json.Marshal(s.manifest)
	if err != nil {
		return fmt.Errorf("%w: marshal manifest: %v", ErrPersistence, err)
	}
	return s.writeAtomic(manifestFile, data)
}

// readManifest loads lifecycle bookkeeping; a missing manifest means an
// empty store.
func (s *FSStore) readManifest() error {
	data, err := os.ReadFile(filepath.Join(s.dir, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: read manifest: %v", ErrPersistence, err)
	}
	if err := json.Unmarshal(data, &s.manifest); err != nil {
		return fmt.Errorf("%w: decode manifest: %v", ErrPersistence, err)
	}
	if s.manifest.States == nil {
		s.manifest.States = map[string]BundleState{}
	}
	return nil
}
