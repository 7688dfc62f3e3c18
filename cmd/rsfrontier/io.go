package main

import (
	"bytes"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// readInputFile reads path's full contents via mmap, the same
// technique the teacher uses for its own source-file reads. Asset
// files handled by this tool range up to hundreds of MB and the
// codecs only ever need read access. The mapped view is copied into a
// fresh slice before it is unmapped, so the returned buffer does not
// depend on the mapping; empty files are returned directly since
// mmap.Map refuses a zero-length mapping.
func readInputFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return []byte{}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer m.Unmap()

	out := make([]byte, len(m))
	copy(out, m)
	return out, nil
}

// writeOutputFile writes buf to path, creating parent directories as
// needed. The buffer is fully assembled in memory by the caller before
// this is reached, so a codec failure never leaves a partial file; an
// I/O error during the write itself is returned as is, and files
// written by earlier calls stay on disk.
func writeOutputFile(path string, buf []byte) error {
	if dir := dirOf(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf, 0o644)
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if os.IsPathSeparator(path[i]) {
			return path[:i]
		}
	}
	return ""
}

func writeOutputOrStdout(path string, buf []byte) error {
	if path == "" {
		_, err := io.Copy(os.Stdout, bytes.NewReader(buf))
		return err
	}
	return writeOutputFile(path, buf)
}
