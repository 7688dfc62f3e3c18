package magic

import (
	"encoding/binary"
	"testing"
)

func le32(v uint32) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:4], v)
	return b
}

func TestSniffKnownMagics(t *testing.T) {
	cases := map[uint32]string{
		0x20534444: "dds",
		0x000B0000: "ftxt",
		0x1A524B4A: "jkr",
		0x474E5089: "png",
	}
	for magic, want := range cases {
		got := SniffBuffer(le32(magic))
		if got != want {
			t.Errorf("SniffBuffer(%#x) = %q, want %q", magic, got, want)
		}
	}
}

func TestSniffFskl(t *testing.T) {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], 0xC0000000)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(buf)))
	if got := SniffBuffer(buf); got != "fskl" {
		t.Errorf("SniffBuffer(fskl-shaped) = %q, want fskl", got)
	}
}

func TestSniffFmod(t *testing.T) {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], 1)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(buf)))
	if got := SniffBuffer(buf); got != "fmod" {
		t.Errorf("SniffBuffer(fmod-shaped) = %q, want fmod", got)
	}
}

func TestSniffDefault(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C}
	if got := SniffBuffer(buf); got != "bin" {
		t.Errorf("SniffBuffer(unknown) = %q, want bin", got)
	}
	if got := SniffBuffer(nil); got != "bin" {
		t.Errorf("SniffBuffer(nil) = %q, want bin", got)
	}
}

func TestShouldJPKCompress(t *testing.T) {
	for _, ext := range []string{"bin", "fmod", "fskl"} {
		if !ShouldJPKCompress(ext) {
			t.Errorf("ShouldJPKCompress(%q) = false, want true", ext)
		}
	}
	if ShouldJPKCompress("png") {
		t.Error("ShouldJPKCompress(png) = true, want false")
	}
}
