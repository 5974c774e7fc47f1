package barrel

import (
	"testing"

	"github.com/scisearch/engine/internal/invertedindex"
)

func TestEncodeDecodeBlockRoundTrip(t *testing.T) {
	list := &invertedindex.PostingList{
		LemmaID: 42,
		Postings: []invertedindex.Posting{
			{DocID: "doc1", TF: 3},
			{DocID: "doc2", TF: 7},
		},
	}

	buf, err := EncodeBlock(list)
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}

	decoded, err := DecodeBlock(buf)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if decoded.LemmaID != list.LemmaID {
		t.Errorf("LemmaID = %d, want %d", decoded.LemmaID, list.LemmaID)
	}
	if int(decoded.DF) != list.DF() {
		t.Errorf("DF = %d, want %d", decoded.DF, list.DF())
	}
	if len(decoded.Postings) != len(list.Postings) {
		t.Fatalf("got %d postings, want %d", len(decoded.Postings), len(list.Postings))
	}
	for i, p := range list.Postings {
		if decoded.Postings[i].DocID != p.DocID || decoded.Postings[i].TF != p.TF {
			t.Errorf("posting %d = %+v, want %+v", i, decoded.Postings[i], p)
		}
	}
}

func TestEncodeBlockEmptyPostingList(t *testing.T) {
	list := &invertedindex.PostingList{LemmaID: 1}
	buf, err := EncodeBlock(list)
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	decoded, err := DecodeBlock(buf)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if len(decoded.Postings) != 0 {
		t.Errorf("got %d postings for empty list, want 0", len(decoded.Postings))
	}
}

func TestDecodeBlockRejectsTruncatedHeader(t *testing.T) {
	if _, err := DecodeBlock([]byte{1, 2, 3}); err == nil {
		t.Fatal("DecodeBlock on a too-short buffer should error, not panic")
	}
}

func TestDecodeBlockRejectsLengthMismatch(t *testing.T) {
	list := &invertedindex.PostingList{
		LemmaID:  1,
		Postings: []invertedindex.Posting{{DocID: "doc1", TF: 1}},
	}
	buf, err := EncodeBlock(list)
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	truncated := buf[:len(buf)-5]
	if _, err := DecodeBlock(truncated); err == nil {
		t.Fatal("DecodeBlock on a truncated block body should error, not panic")
	}
}

func TestDecodeBlockRejectsNegativeNumDocs(t *testing.T) {
	buf := make([]byte, blockHeaderSize)
	// numDocs field set to -1 (0xFFFFFFFF).
	buf[8], buf[9], buf[10], buf[11] = 0xFF, 0xFF, 0xFF, 0xFF
	if _, err := DecodeBlock(buf); err == nil {
		t.Fatal("DecodeBlock with negative numDocs should error, not panic")
	}
}
