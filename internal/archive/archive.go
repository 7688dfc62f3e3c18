// Package archive implements the two flat container formats used to
// bundle sibling leaf files: the bare offset/size Simple Archive, and
// the named, ID-tagged MHA Archive.
package archive

import "errors"

// File is one entry recovered from (or to be written into) an archive.
type File struct {
	Name string
	Data []byte
}

// ErrMalformedHeader is returned when a buffer is too short or
// structurally inconsistent to be the archive format in question.
var ErrMalformedHeader = errors.New("archive: malformed header")

// ErrTruncatedPayload is returned when a record's offset/size claims
// bytes beyond the end of the buffer.
var ErrTruncatedPayload = errors.New("archive: truncated payload")
