package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// MetadataName is the synthetic pseudo-entry DecodeMHA appends holding
// the original base_id and capacity as "{base_id},{capacity}", so a
// caller that wants to repack can recover them without guessing.
const MetadataName = ".metadata"

// Magic is the fixed little-endian magic value stored in the MHA header
// (the bytes "mha\x01", 23160941 in decimal).
const Magic uint32 = 0x0161686D

const (
	mhaHeaderSize = 24
	mhaRecordSize = 20
)

// mhaHeader is the fixed 24-byte MHA archive header. Layout on the
// wire, after the header, is data blobs, then the null-terminated name
// pool, then the metadata record table.
type mhaHeader struct {
	magic           uint32
	metadataOffset  uint32
	fileCount       uint32
	nameTableOffset uint32
	nameTableSize   uint32
	baseID          uint16
	capacity        uint16
}

func parseMHAHeader(buf []byte) (mhaHeader, error) {
	var h mhaHeader
	if len(buf) < mhaHeaderSize {
		return h, fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedHeader, mhaHeaderSize, len(buf))
	}
	h.magic = binary.LittleEndian.Uint32(buf[0:4])
	h.metadataOffset = binary.LittleEndian.Uint32(buf[4:8])
	h.fileCount = binary.LittleEndian.Uint32(buf[8:12])
	h.nameTableOffset = binary.LittleEndian.Uint32(buf[12:16])
	h.nameTableSize = binary.LittleEndian.Uint32(buf[16:20])
	h.baseID = binary.LittleEndian.Uint16(buf[20:22])
	h.capacity = binary.LittleEndian.Uint16(buf[22:24])
	if h.magic != Magic {
		return h, fmt.Errorf("%w: bad magic %#x", ErrMalformedHeader, h.magic)
	}
	return h, nil
}

// IsMHA reports whether buf begins with the little-endian MHA magic.
func IsMHA(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	return binary.LittleEndian.Uint32(buf[0:4]) == Magic
}

// mhaRecord is one 20-byte metadata table entry.
type mhaRecord struct {
	nameRelOff uint32
	dataAbsOff uint32
	size       uint32
	sizeDup    uint32
	fileID     uint32
}

func parseMHARecords(buf []byte, off, count uint32) ([]mhaRecord, error) {
	need := int(off) + int(count)*mhaRecordSize
	if len(buf) < need {
		return nil, fmt.Errorf("%w: mha metadata table needs %d bytes, have %d", ErrMalformedHeader, need, len(buf))
	}
	records := make([]mhaRecord, count)
	for i := range records {
		p := int(off) + i*mhaRecordSize
		records[i] = mhaRecord{
			nameRelOff: binary.LittleEndian.Uint32(buf[p : p+4]),
			dataAbsOff: binary.LittleEndian.Uint32(buf[p+4 : p+8]),
			size:       binary.LittleEndian.Uint32(buf[p+8 : p+12]),
			sizeDup:    binary.LittleEndian.Uint32(buf[p+12 : p+16]),
			fileID:     binary.LittleEndian.Uint32(buf[p+16 : p+20]),
		}
	}
	return records, nil
}

func readCString(buf []byte, off uint32) (string, error) {
	if int(off) > len(buf) {
		return "", fmt.Errorf("%w: name offset %d beyond buffer of %d", ErrTruncatedPayload, off, len(buf))
	}
	rest := buf[off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated name at offset %d", ErrMalformedHeader, off)
	}
	return string(rest[:end]), nil
}

// DetectMHA reports whether buf plausibly holds an MHA archive: the
// magic matches, the name table immediately precedes the metadata
// table, and the name table and every record stay in bounds.
func DetectMHA(buf []byte) bool {
	h, err := parseMHAHeader(buf)
	if err != nil {
		return false
	}
	if h.nameTableOffset+h.nameTableSize != h.metadataOffset {
		return false
	}
	if uint64(h.metadataOffset)+uint64(h.fileCount)*mhaRecordSize > uint64(len(buf)) {
		return false
	}
	records, err := parseMHARecords(buf, h.metadataOffset, h.fileCount)
	if err != nil {
		return false
	}
	for _, r := range records {
		if uint64(r.dataAbsOff)+uint64(r.size) > uint64(len(buf)) {
			return false
		}
	}
	return true
}

// DecodeMHA splits buf into its named files, plus a synthetic
// MetadataName pseudo-entry whose body is "{base_id},{capacity}" so a
// caller can repack with the original ID range.
func DecodeMHA(buf []byte) ([]File, error) {
	h, err := parseMHAHeader(buf)
	if err != nil {
		return nil, err
	}
	records, err := parseMHARecords(buf, h.metadataOffset, h.fileCount)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, h.fileCount+1)
	for i, r := range records {
		name, err := readCString(buf, h.nameTableOffset+r.nameRelOff)
		if err != nil {
			return nil, err
		}
		end := uint64(r.dataAbsOff) + uint64(r.size)
		if end > uint64(len(buf)) {
			return nil, fmt.Errorf("%w: record %d claims [%d:%d], buffer is %d bytes", ErrTruncatedPayload, i, r.dataAbsOff, end, len(buf))
		}
		data := make([]byte, r.size)
		copy(data, buf[r.dataAbsOff:end])
		files = append(files, File{Name: name, Data: data})
	}

	files = append(files, File{
		Name: MetadataName,
		Data: []byte(fmt.Sprintf("%d,%d", h.baseID, h.capacity)),
	})
	return files, nil
}

// EncodeMHA packs files into an MHA archive: data blobs, then the name
// pool, then the metadata record table, with file IDs assigned
// base_id, base_id+1, ... in input order. Any MetadataName entry in
// files is ignored (base_id/capacity are explicit parameters here,
// mirroring the reference encoder).
func EncodeMHA(files []File, baseID, capacity uint16) []byte {
	var real []File
	for _, f := range files {
		if f.Name == MetadataName {
			continue
		}
		real = append(real, f)
	}

	dataBase := uint32(mhaHeaderSize)
	dataOffsets := make([]uint32, len(real))
	off := dataBase
	for i, f := range real {
		dataOffsets[i] = off
		off += uint32(len(f.Data))
	}
	nameTableOffset := off

	namePool := &bytes.Buffer{}
	nameRelOffs := make([]uint32, len(real))
	for i, f := range real {
		nameRelOffs[i] = uint32(namePool.Len())
		namePool.WriteString(f.Name)
		namePool.WriteByte(0)
	}
	nameTableSize := uint32(namePool.Len())
	metadataOffset := nameTableOffset + nameTableSize

	total := int(metadataOffset) + len(real)*mhaRecordSize
	out := make([]byte, total)

	binary.LittleEndian.PutUint32(out[0:4], Magic)
	binary.LittleEndian.PutUint32(out[4:8], metadataOffset)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(real)))
	binary.LittleEndian.PutUint32(out[12:16], nameTableOffset)
	binary.LittleEndian.PutUint32(out[16:20], nameTableSize)
	binary.LittleEndian.PutUint16(out[20:22], baseID)
	binary.LittleEndian.PutUint16(out[22:24], capacity)

	for i, f := range real {
		copy(out[dataOffsets[i]:], f.Data)
	}
	copy(out[nameTableOffset:nameTableOffset+nameTableSize], namePool.Bytes())

	for i, f := range real {
		recOff := metadataOffset + uint32(i)*mhaRecordSize
		size := uint32(len(f.Data))
		binary.LittleEndian.PutUint32(out[recOff:recOff+4], nameRelOffs[i])
		binary.LittleEndian.PutUint32(out[recOff+4:recOff+8], dataOffsets[i])
		binary.LittleEndian.PutUint32(out[recOff+8:recOff+12], size)
		binary.LittleEndian.PutUint32(out[recOff+12:recOff+16], size)
		binary.LittleEndian.PutUint32(out[recOff+16:recOff+20], uint32(baseID)+uint32(i))
	}

	return out
}
