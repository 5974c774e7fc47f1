package barrel

import (
	"encoding/binary"
	"fmt"

	"github.com/scisearch/engine/internal/docid"
	"github.com/scisearch/engine/internal/invertedindex"
)

// blockHeaderSize is the fixed size in bytes of a block's
// (lemmaID:i32, df:i32, numDocs:i32) header.
const blockHeaderSize = 4 + 4 + 4

// postingSize is the fixed size in bytes of one (docID:20, tf:i32) record.
const postingSize = docid.Width + 4

// Block is a decoded posting block read from a .bin file.
type Block struct {
	LemmaID  int32
	DF       int32
	Postings []invertedindex.Posting
}

// EncodeBlock serializes a posting list into the on-disk block layout:
// (lemmaID:i32, df:i32, numDocs:i32) followed by numDocs * (docID:20,
// tf:i32), all little-endian.
func EncodeBlock(list *invertedindex.PostingList) ([]byte, error) {
	numDocs := len(list.Postings)
	buf := make([]byte, blockHeaderSize+numDocs*postingSize)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(list.LemmaID))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(list.DF()))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(numDocs))

	off := blockHeaderSize
	for _, p := range list.Postings {
		encoded, err := docid.Encode(p.DocID)
		if err != nil {
			return nil, fmt.Errorf("barrel: encoding block for lemma %d: %w", list.LemmaID, err)
		}
		copy(buf[off:off+docid.Width], encoded[:])
		binary.LittleEndian.PutUint32(buf[off+docid.Width:off+postingSize], uint32(p.TF))
		off += postingSize
	}
	return buf, nil
}

// DecodeBlock parses a byte slice into a Block, treating the slice as a
// contiguous, typed, bounds-checked buffer rather than ad-hoc pointer
// arithmetic (spec.md §9 design note). It never panics on malformed input;
// every length mismatch becomes a returned error, so a corrupt block fails
// only the lemma being decoded, not the caller's query.
func DecodeBlock(buf []byte) (*Block, error) {
	if len(buf) < blockHeaderSize {
		return nil, fmt.Errorf("barrel: block too short for header: %d bytes", len(buf))
	}
	lemmaID := int32(binary.LittleEndian.Uint32(buf[0:4]))
	df := int32(binary.LittleEndian.Uint32(buf[4:8]))
	numDocs := int32(binary.LittleEndian.Uint32(buf[8:12]))

	if numDocs < 0 {
		return nil, fmt.Errorf("barrel: lemma %d has negative numDocs %d", lemmaID, numDocs)
	}

	want := blockHeaderSize + int(numDocs)*postingSize
	if len(buf) != want {
		return nil, fmt.Errorf("barrel: lemma %d block length mismatch: have %d bytes, want %d for %d postings", lemmaID, len(buf), want, numDocs)
	}

	postings := make([]invertedindex.Posting, numDocs)
	off := blockHeaderSize
	for i := int32(0); i < numDocs; i++ {
		docBytes := buf[off : off+docid.Width]
		tf := int32(binary.LittleEndian.Uint32(buf[off+docid.Width : off+postingSize]))
		postings[i] = invertedindex.Posting{
			DocID: docid.DecodeSlice(docBytes),
			TF:    tf,
		}
		off += postingSize
	}

	return &Block{LemmaID: lemmaID, DF: df, Postings: postings}, nil
}
