package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"phpc/internal/observ"
)

// Current schema version - increment when Snapshot format changes
const snapshotSchemaVersion uint16 = 1

// ErrSnapshotSchema is returned for snapshots written by another version.
var ErrSnapshotSchema = errors.New("snapshot schema mismatch")

// Snapshot holds the converged types of a session in rendered form.
type Snapshot struct {
	Schema   uint16                 `msgpack:"schema"`
	Routines []RoutineSnapshot      `msgpack:"routines"`
	Counters observ.CounterSnapshot `msgpack:"counters"`
}

// RoutineSnapshot is the exit state and return type of one routine.
type RoutineSnapshot struct {
	Name      string            `msgpack:"name"`
	Kind      string            `msgpack:"kind"`
	Return    string            `msgpack:"return"`
	Reached   bool              `msgpack:"reached"`
	Variables map[string]string `msgpack:"variables,omitempty"`
}

// Routine finds a routine by name.
func (s *Snapshot) Routine(name string) (RoutineSnapshot, bool) {
	for _, r := range s.Routines {
		if r.Name == name {
			return r, true
		}
	}
	return RoutineSnapshot{}, false
}

// Snapshot captures the bound routines. Call it after Analyze.
func (s *Session) Snapshot() *Snapshot {
	snap := &Snapshot{Schema: snapshotSchemaVersion, Counters: s.Counters.Snapshot()}
	for _, r := range s.routinesWithGraph() {
		ctx := r.TypeCtx()
		rs := RoutineSnapshot{
			Name:   r.Name,
			Kind:   r.Kind.String(),
			Return: ctx.ToString(r.ReturnMask()),
		}
		if st := r.CFG.Exit.FlowState; st != nil {
			rs.Reached = true
			for slot, name := range r.Flow.Names() {
				if rs.Variables == nil {
					rs.Variables = make(map[string]string, r.Flow.Len())
				}
				rs.Variables[name] = ctx.ToString(st.Get(slot))
			}
		}
		snap.Routines = append(snap.Routines, rs)
	}
	return snap
}

// WriteSnapshot stores snap at path through a temporary file in the same
// directory.
func WriteSnapshot(path string, snap *Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// after a successful rename the temp file is gone
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", rmErr)
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(snap); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap Snapshot
	if err := msgpack.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("%s: %w: got %d, want %d", path, ErrSnapshotSchema, snap.Schema, snapshotSchemaVersion)
	}
	return &snap, nil
}
