// Package rsfrontier implements the recursive pack/unpack driver over
// the ECD cipher, JPK compression family, and the two archive
// containers: it is the glue that walks a nested asset buffer down to
// its content-addressable leaves, or walks a directory tree back up
// into one of those containers.
package rsfrontier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Paxlord/Rsfrontier/internal/archive"
	"github.com/Paxlord/Rsfrontier/internal/ecd"
	"github.com/Paxlord/Rsfrontier/internal/jpk"
	"github.com/Paxlord/Rsfrontier/internal/magic"
	"github.com/Paxlord/Rsfrontier/internal/peelcache"
)

// Leaf is one terminal (path, buffer) pair produced by an unpack: a
// buffer none of the container detectors recognize anymore.
type Leaf struct {
	Path string
	Data []byte
}

// UnpackBuffer recursively peels buf, starting at path, in the fixed
// detector order ECD -> JPK -> Simple Archive -> MHA, emitting one Leaf
// per terminal buffer. cache may be nil to disable peel memoization.
func UnpackBuffer(path string, buf []byte, cache *peelcache.Cache) ([]Leaf, error) {
	switch {
	case ecd.IsECD(buf):
		decoded, err := peel(cache, "ecd", buf, ecd.Decrypt)
		if err != nil {
			return nil, fmt.Errorf("rsfrontier: decrypting %s: %w", path, err)
		}
		return UnpackBuffer(path, decoded, cache)

	case jpk.IsJPK(buf):
		decoded, err := peel(cache, "jpk", buf, jpk.Decode)
		if err != nil {
			return nil, fmt.Errorf("rsfrontier: decoding jpk at %s: %w", path, err)
		}
		return UnpackBuffer(path, decoded, cache)

	case archive.DetectSimple(buf):
		files, err := archive.DecodeSimple(buf)
		if err != nil {
			return nil, fmt.Errorf("rsfrontier: decoding simple archive at %s: %w", path, err)
		}
		var leaves []Leaf
		for _, f := range files {
			sub, err := UnpackBuffer(filepath.Join(path, f.Name), f.Data, cache)
			if err != nil {
				return nil, err
			}
			leaves = append(leaves, sub...)
		}
		return leaves, nil

	case archive.DetectMHA(buf):
		files, err := archive.DecodeMHA(buf)
		if err != nil {
			return nil, fmt.Errorf("rsfrontier: decoding mha at %s: %w", path, err)
		}
		var leaves []Leaf
		for _, f := range files {
			childPath := filepath.Join(path, stripExt(f.Name))
			sub, err := UnpackBuffer(childPath, f.Data, cache)
			if err != nil {
				return nil, err
			}
			leaves = append(leaves, sub...)
		}
		return leaves, nil

	default:
		ext := magic.SniffBuffer(buf)
		return []Leaf{{Path: withExt(path, ext), Data: buf}}, nil
	}
}

func peel(cache *peelcache.Cache, kind string, buf []byte, decode func([]byte) ([]byte, error)) ([]byte, error) {
	if cache == nil {
		return decode(buf)
	}
	return cache.Peel(kind, buf, decode)
}

// stripExt removes a trailing ".ext" from name, except when the dot is
// the first character (a dotfile like ".metadata" has no extension to
// strip).
func stripExt(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name
	}
	return name[:dot]
}

// withExt appends ".ext" to path's final component, unless that
// component already begins with ".", in which case it is left bare.
func withExt(path, ext string) string {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return path
	}
	if ext == "" {
		return path
	}
	return path + "." + ext
}

// SingleOp selects a single-buffer pack operation: either ECD
// encryption, or wrapping in a JPK container of a given encoding.
type SingleOp struct {
	isECD  bool
	jpkOpt jpk.EncodeOption
}

// EcdOp selects ECD encryption for PackBuffer.
func EcdOp() SingleOp { return SingleOp{isECD: true} }

// JpkOp selects JPK encoding opt for PackBuffer.
func JpkOp(opt jpk.EncodeOption) SingleOp { return SingleOp{jpkOpt: opt} }

// PackBuffer applies a single pack step (ECD encryption, or a JPK
// container of the requested encoding) to buf.
func PackBuffer(buf []byte, op SingleOp) []byte {
	if op.isECD {
		return ecd.Encrypt(buf)
	}
	return jpk.Encode(buf, op.jpkOpt)
}

// FolderPackType selects how PackDir joins a directory's top-level
// entries into the final packed output.
type FolderPackType int

const (
	// FolderSimple wraps every top-level entry's body into one Simple
	// Archive buffer.
	FolderSimple FolderPackType = iota
	// FolderMHA emits one MHA archive from the top-level (name, body)
	// pairs, under the given base ID and capacity.
	FolderMHA
	// FolderEM ("monster archive") skips the outer Simple Archive wrap
	// entirely: top-level entries are returned as a flat list rather
	// than folded into one buffer. Nested subdirectories are still
	// individually wrapped in a Simple Archive, since the recursive
	// walk needs some container for them regardless of the top-level
	// mode.
	FolderEM
)

// FolderPackResult is PackDir's output: exactly one of Buffer (for
// FolderSimple/FolderMHA) or Entries (for FolderEM) is populated.
type FolderPackResult struct {
	Buffer  []byte
	Entries []archive.File
}

// PackDir walks dir recursively (skipping dotfiles), JPK-compressing
// loose files whose extension qualifies and wrapping subdirectories in
// a Simple Archive, then joins the top-level result per packType.
func PackDir(dir string, packType FolderPackType, baseID, capacity uint16) (FolderPackResult, error) {
	entries, err := packDirEntries(dir)
	if err != nil {
		return FolderPackResult{}, err
	}

	switch packType {
	case FolderSimple:
		return FolderPackResult{Buffer: archive.EncodeSimple(entries)}, nil
	case FolderMHA:
		return FolderPackResult{Buffer: archive.EncodeMHA(entries, baseID, capacity)}, nil
	case FolderEM:
		return FolderPackResult{Entries: entries}, nil
	default:
		return FolderPackResult{}, fmt.Errorf("rsfrontier: unknown FolderPackType %d", packType)
	}
}

func packDirEntries(dir string) ([]archive.File, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("rsfrontier: reading %s: %w", dir, err)
	}

	var out []archive.File
	for _, de := range dirEntries {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)

		if de.IsDir() {
			children, err := packDirEntries(full)
			if err != nil {
				return nil, err
			}
			wrapped := archive.EncodeSimple(children)
			ext := magic.SniffBuffer(wrapped)
			out = append(out, archive.File{Name: name + "." + ext, Data: wrapped})
			continue
		}

		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("rsfrontier: reading %s: %w", full, err)
		}
		ext := strings.TrimPrefix(filepath.Ext(name), ".")
		if magic.ShouldJPKCompress(ext) {
			data = jpk.Encode(data, jpk.EncodeHuffmanLz)
		}
		finalExt := magic.SniffBuffer(data)
		out = append(out, archive.File{Name: stripExt(name) + "." + finalExt, Data: data})
	}
	return out, nil
}
