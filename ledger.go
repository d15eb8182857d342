package indices

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Ledger stores the whole series of one index.
//
// WriteAll replaces the whole content; implementations must make that replacement atomic.
type Ledger interface {
	ReadAll(ctx context.Context) ([]*Record, error)
	WriteAll(ctx context.Context, records []*Record) error
}

// FileLedger is a Ledger stored in a JSON file.
type FileLedger struct {
	Path string
}

// ReadAll reads the file. A missing file is an empty ledger.
func (l *FileLedger) ReadAll(_ context.Context) ([]*Record, error) {
	f, err := os.Open(l.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := DecodeRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return records, nil
}

// WriteAll writes records to a temporary file next to the ledger, and renames it over
// the ledger.
func (l *FileLedger) WriteAll(_ context.Context, records []*Record) error {
	dir := filepath.Dir(l.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(l.Path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if err := EncodeRecords(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", l.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), l.Path)
}

func (l *FileLedger) String() string { return l.Path }

// MemoryLedger is a Ledger kept in memory. It stores a serialized copy, so callers never
// share records with it.
type MemoryLedger struct {
	data   []byte
	Writes int // number of WriteAll calls
}

// NewMemoryLedger returns a ledger initialized with records.
func NewMemoryLedger(records ...*Record) *MemoryLedger {
	l := new(MemoryLedger)
	if err := l.store(records); err != nil {
		panic(err)
	}
	return l
}

func (l *MemoryLedger) store(records []*Record) error {
	var buf bytes.Buffer
	if err := EncodeRecords(&buf, records); err != nil {
		return err
	}
	l.data = buf.Bytes()
	return nil
}

// ReadAll implements Ledger.
func (l *MemoryLedger) ReadAll(_ context.Context) ([]*Record, error) {
	return DecodeRecords(bytes.NewReader(l.data))
}

// WriteAll implements Ledger.
func (l *MemoryLedger) WriteAll(_ context.Context, records []*Record) error {
	l.Writes++
	return l.store(records)
}

// Bytes returns the serialized ledger.
func (l *MemoryLedger) Bytes() []byte { return l.data }
