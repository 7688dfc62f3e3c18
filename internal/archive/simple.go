package archive

import (
	"encoding/binary"
	"fmt"
)

const (
	simpleRecordSize   = 8
	simpleMaxFileCount = 9999
)

// simpleRecord is one (offset, size) pair into the archive buffer.
type simpleRecord struct {
	offset uint32
	size   uint32
}

func readSimpleRecords(buf []byte, count uint32) ([]simpleRecord, error) {
	need := 4 + int(count)*simpleRecordSize
	if len(buf) < need {
		return nil, fmt.Errorf("%w: simple archive needs %d bytes of records, have %d", ErrMalformedHeader, need, len(buf))
	}
	records := make([]simpleRecord, count)
	for i := range records {
		off := 4 + i*simpleRecordSize
		records[i] = simpleRecord{
			offset: binary.LittleEndian.Uint32(buf[off : off+4]),
			size:   binary.LittleEndian.Uint32(buf[off+4 : off+8]),
		}
	}
	return records, nil
}

// DetectSimple reports whether buf plausibly holds a Simple Archive:
// a sane file count, every record in bounds, and the header size plus
// the sum of all record sizes equal to the buffer length.
func DetectSimple(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	count := binary.LittleEndian.Uint32(buf[0:4])
	if count == 0 || count >= simpleMaxFileCount {
		return false
	}
	records, err := readSimpleRecords(buf, count)
	if err != nil {
		return false
	}

	headerSize := uint64(4 + len(records)*simpleRecordSize)
	var totalSize uint64
	for _, r := range records {
		end := uint64(r.offset) + uint64(r.size)
		if end > uint64(len(buf)) {
			return false
		}
		totalSize += uint64(r.size)
	}
	return headerSize+totalSize == uint64(len(buf))
}

// DecodeSimple splits buf into its constituent files, named "0000",
// "0001", ... in record order.
func DecodeSimple(buf []byte) ([]File, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("%w: need 4 bytes, have %d", ErrMalformedHeader, len(buf))
	}
	count := binary.LittleEndian.Uint32(buf[0:4])
	records, err := readSimpleRecords(buf, count)
	if err != nil {
		return nil, err
	}

	files := make([]File, len(records))
	for i, r := range records {
		end := uint64(r.offset) + uint64(r.size)
		if end > uint64(len(buf)) {
			return nil, fmt.Errorf("%w: record %d claims [%d:%d], buffer is %d bytes", ErrTruncatedPayload, i, r.offset, end, len(buf))
		}
		data := make([]byte, r.size)
		copy(data, buf[r.offset:end])
		files[i] = File{Name: fmt.Sprintf("%04d", i), Data: data}
	}
	return files, nil
}

// EncodeSimple concatenates files into a Simple Archive in the order
// given, ignoring their Name fields (Simple Archives carry no names).
func EncodeSimple(files []File) []byte {
	headerSize := 4 + len(files)*simpleRecordSize
	total := headerSize
	for _, f := range files {
		total += len(f.Data)
	}

	out := make([]byte, total)
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(files)))

	dataOff := headerSize
	for i, f := range files {
		recOff := 4 + i*simpleRecordSize
		binary.LittleEndian.PutUint32(out[recOff:recOff+4], uint32(dataOff))
		binary.LittleEndian.PutUint32(out[recOff+4:recOff+8], uint32(len(f.Data)))
		copy(out[dataOff:], f.Data)
		dataOff += len(f.Data)
	}
	return out
}
