// Package pkg provides small shared utilities for autodoc.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// FileSpill buffers items of type T in a temporary file so large runs stay
// bounded in memory. Append is safe for concurrent use; Range replays the
// items in insertion order.
type FileSpill[T any] interface {
	Len() uint64
	Append(item T) error
	Range(fn func(index uint64, item T) error) error
	Close() error
}

type fileSpill[T any] struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *gob.Encoder
	length  uint64
}

// NewFileSpill creates a FileSpill backed by a temp file created from
// pattern. Close removes the file.
func NewFileSpill[T any](pattern string) (FileSpill[T], error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}

	return &fileSpill[T]{
		path:    f.Name(),
		file:    f,
		encoder: gob.NewEncoder(f),
	}, nil
}

// Len returns the number of items appended so far.
func (s *fileSpill[T]) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.length
}

// Append encodes one item to the spill file.
func (s *fileSpill[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errors.New("spill is closed")
	}

	if err := s.encoder.Encode(item); err != nil {
		return fmt.Errorf("encode spill item %d: %w", s.length, err)
	}

	s.length++

	return nil
}

// Range decodes every item in insertion order and passes it to fn. It reads
// from a fresh handle so appends already flushed remain untouched.
func (s *fileSpill[T]) Range(fn func(index uint64, item T) error) error {
	s.mu.Lock()
	path := s.path
	length := s.length
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open spill file: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	decoder := gob.NewDecoder(f)

	for i := uint64(0); i < length; i++ {
		var item T

		if err := decoder.Decode(&item); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("decode spill item %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close releases and removes the spill file.
func (s *fileSpill[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	if removeErr := os.Remove(s.path); err == nil {
		err = removeErr
	}

	return err
}
