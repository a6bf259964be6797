// Package statestore keeps a history of guest context snapshots in LevelDB so
// a frontend can roll the CPU back to an earlier frame.
package statestore

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/colorfulnotion/sh4core/log"
	"github.com/colorfulnotion/sh4core/sh4errors"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"golang.org/x/crypto/blake2b"
)

var (
	framePrefix = []byte("f/")
	headKey     = []byte("head")
)

// Digest is the blake2b-256 of a snapshot blob.
type Digest [32]byte

func Sum(blob []byte) Digest { return blake2b.Sum256(blob) }

func (d Digest) String() string { return hex.EncodeToString(d[:8]) }

// Snapshotter is implemented by driver.Driver.
type Snapshotter interface {
	SaveState() ([]byte, error)
	LoadState(blob []byte) error
}

// Store is safe for concurrent use; LevelDB does its own locking.
type Store struct {
	db *leveldb.DB
}

// Open opens or creates a store at path. An empty path keeps everything in memory.
func Open(path string) (*Store, error) {
	var db *leveldb.DB
	var err error
	if path == "" {
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open state store %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func frameKey(frame uint64) []byte {
	k := make([]byte, len(framePrefix)+8)
	copy(k, framePrefix)
	binary.BigEndian.PutUint64(k[len(framePrefix):], frame)
	return k
}

// Put records blob as the snapshot of frame and makes frame the head.
func (s *Store) Put(frame uint64, blob []byte) (Digest, error) {
	d := Sum(blob)
	val := make([]byte, 0, len(d)+len(blob))
	val = append(append(val, d[:]...), blob...)

	var head [8]byte
	binary.BigEndian.PutUint64(head[:], frame)
	batch := new(leveldb.Batch)
	batch.Put(frameKey(frame), val)
	batch.Put(headKey, head[:])
	if err := s.db.Write(batch, nil); err != nil {
		return d, fmt.Errorf("put frame %d: %w", frame, err)
	}
	log.Debug(log.StateStore, "put", "frame", frame, "digest", d, "bytes", len(blob))
	return d, nil
}

// Get returns the snapshot of frame after checking its digest.
func (s *Store) Get(frame uint64) ([]byte, error) {
	val, err := s.db.Get(frameKey(frame), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("frame %d: %w", frame, sh4errors.ErrSNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get frame %d: %w", frame, err)
	}
	if len(val) < len(Digest{}) {
		return nil, fmt.Errorf("frame %d: %w", frame, sh4errors.ErrSTruncated)
	}
	var want Digest
	copy(want[:], val)
	blob := val[len(want):]
	if got := Sum(blob); got != want {
		log.Warn(log.StateStore, "digest mismatch", "frame", frame, "want", want, "got", got)
		return nil, fmt.Errorf("frame %d: %w", frame, sh4errors.ErrSDigestMismatch)
	}
	return blob, nil
}

// Head returns the most recently recorded frame.
func (s *Store) Head() (uint64, error) {
	v, err := s.db.Get(headKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, sh4errors.ErrSNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get head: %w", err)
	}
	return binary.BigEndian.Uint64(v), nil
}

// Frames lists recorded frames in ascending order.
func (s *Store) Frames() ([]uint64, error) {
	iter := s.db.NewIterator(util.BytesPrefix(framePrefix), nil)
	defer iter.Release()
	var frames []uint64
	for iter.Next() {
		frames = append(frames, binary.BigEndian.Uint64(iter.Key()[len(framePrefix):]))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	return frames, nil
}

// Truncate drops every frame after frame and moves the head back to it.
// It returns the number of frames dropped.
func (s *Store) Truncate(frame uint64) (int, error) {
	if _, err := s.Get(frame); err != nil {
		return 0, err
	}
	iter := s.db.NewIterator(&util.Range{Start: frameKey(frame + 1), Limit: util.BytesPrefix(framePrefix).Limit}, nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("truncate after %d: %w", frame, err)
	}
	var head [8]byte
	binary.BigEndian.PutUint64(head[:], frame)
	batch.Put(headKey, head[:])
	n := batch.Len() - 1
	if err := s.db.Write(batch, nil); err != nil {
		return 0, fmt.Errorf("truncate after %d: %w", frame, err)
	}
	return n, nil
}

// Prune keeps the newest keep frames and deletes the rest.
func (s *Store) Prune(keep int) (int, error) {
	frames, err := s.Frames()
	if err != nil {
		return 0, err
	}
	if len(frames) <= keep {
		return 0, nil
	}
	batch := new(leveldb.Batch)
	for _, f := range frames[:len(frames)-keep] {
		batch.Delete(frameKey(f))
	}
	if err := s.db.Write(batch, nil); err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return batch.Len(), nil
}

// Checkpoint saves the state of src as frame.
func (s *Store) Checkpoint(src Snapshotter, frame uint64) (Digest, error) {
	blob, err := src.SaveState()
	if err != nil {
		return Digest{}, fmt.Errorf("save state: %w", err)
	}
	return s.Put(frame, blob)
}

// Rollback restores dst to frame and forgets every later frame.
func (s *Store) Rollback(dst Snapshotter, frame uint64) error {
	blob, err := s.Get(frame)
	if err != nil {
		return err
	}
	if err := dst.LoadState(blob); err != nil {
		return fmt.Errorf("load frame %d: %w", frame, err)
	}
	n, err := s.Truncate(frame)
	if err != nil {
		return err
	}
	log.Info(log.StateStore, "rollback", "frame", frame, "dropped", n)
	return nil
}
