package archive

import "testing"

func TestSimpleRoundTrip(t *testing.T) {
	files := []File{
		{Name: "0000", Data: []byte("alpha")},
		{Name: "0001", Data: []byte("beta beta beta")},
		{Name: "0002", Data: []byte{}},
	}
	encoded := EncodeSimple(files)

	if !DetectSimple(encoded) {
		t.Fatal("DetectSimple(encoded) = false")
	}

	got, err := DecodeSimple(encoded)
	if err != nil {
		t.Fatalf("DecodeSimple: %v", err)
	}
	if len(got) != len(files) {
		t.Fatalf("got %d files, want %d", len(got), len(files))
	}
	for i, f := range got {
		if f.Name != files[i].Name {
			t.Errorf("file %d name = %q, want %q", i, f.Name, files[i].Name)
		}
		if string(f.Data) != string(files[i].Data) {
			t.Errorf("file %d data = %q, want %q", i, f.Data, files[i].Data)
		}
	}
}

func TestSimpleNamesAreZeroPadded(t *testing.T) {
	files := make([]File, 12)
	for i := range files {
		files[i] = File{Data: []byte{byte(i)}}
	}
	got, err := DecodeSimple(EncodeSimple(files))
	if err != nil {
		t.Fatalf("DecodeSimple: %v", err)
	}
	if got[0].Name != "0000" || got[11].Name != "0011" {
		t.Errorf("unexpected names: %q, %q", got[0].Name, got[11].Name)
	}
}

func TestDetectSimpleRejectsGarbage(t *testing.T) {
	if DetectSimple(nil) {
		t.Error("DetectSimple(nil) = true")
	}
	if DetectSimple([]byte{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Error("DetectSimple(huge count) = true")
	}
	if DetectSimple([]byte("not an archive at all, just text")) {
		t.Error("DetectSimple(plain text) = true")
	}
}

func TestDecodeSimpleTruncated(t *testing.T) {
	encoded := EncodeSimple([]File{{Data: []byte("hello")}})
	short := encoded[:len(encoded)-1]
	if _, err := DecodeSimple(short); err == nil {
		t.Error("expected truncated payload error")
	}
}
