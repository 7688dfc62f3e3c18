// Package magic sniffs a leaf buffer's leading bytes to recover a
// plausible file extension, either by an exact magic-number match or
// by one of two structural heuristics.
package magic

import "encoding/binary"

// entry pairs a little-endian leading uint32 with the extension it maps to.
type entry struct {
	magic uint32
	ext   string
}

// table is the static ordered list of known magics. Order does not
// matter for lookup (magics are unique) but is kept in the order the
// reference tool lists them.
var table = []entry{
	{0x20534444, "dds"},
	{0x000B0000, "ftxt"},
	{0x32786647, "gfx2"},
	{0x1A524B4A, "jkr"},
	{0x5367674F, "ogg"},
	{0x006F6D70, "pmo"},
	{0x474E5089, "png"},
	{0x484D542E, "tmh"},
}

const (
	fsklMagic = 0xC0000000
	fmodMagic = 1
)

// Extension returns the extension registered for magic, if any.
func Extension(magic uint32) (string, bool) {
	for _, e := range table {
		if e.magic == magic {
			return e.ext, true
		}
	}
	return "", false
}

// SniffBuffer determines a buffer's extension: an exact magic-number
// match first, then the fskl/fmod structural heuristics, then the
// "bin" default.
func SniffBuffer(buf []byte) string {
	if len(buf) < 4 {
		return "bin"
	}
	leading := binary.LittleEndian.Uint32(buf[0:4])
	if ext, ok := Extension(leading); ok {
		return ext
	}

	if len(buf) >= 12 {
		size := binary.LittleEndian.Uint32(buf[8:12])
		if leading == fsklMagic && uint64(size) == uint64(len(buf)) {
			return "fskl"
		}
		if leading == fmodMagic && uint64(size) == uint64(len(buf)) {
			return "fmod"
		}
	}

	return "bin"
}

// shouldJPKCompressExt is the set of extensions the recursive packer
// JPK-compresses before re-sniffing.
var shouldJPKCompressExt = map[string]bool{
	"bin":  true,
	"fmod": true,
	"fskl": true,
}

// ShouldJPKCompress reports whether a leaf file with the given
// extension (no leading dot) should be JPK-compressed on pack.
func ShouldJPKCompress(ext string) bool {
	return shouldJPKCompressExt[ext]
}
