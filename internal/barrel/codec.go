package barrel

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/scisearch/engine/internal/invertedindex"
)

// idxEntry is one (lemmaID, offset, length) record from a .idx file.
type idxEntry struct {
	LemmaID int32
	Offset  int64
	Length  int64
}

// WriteBarrel emits the .bin/.idx pair for a set of posting lists. Write
// order need not match lemma-ID order (spec.md §4.F); this implementation
// writes in the order provided by lemmaIDs. Both files are fsynced before
// return, satisfying "implementations must flush both files and fsync if
// durability is required by the host."
func WriteBarrel(binPath, idxPath string, postings map[int32]*invertedindex.PostingList, lemmaIDs []int32) error {
	binFile, err := os.Create(binPath)
	if err != nil {
		return fmt.Errorf("barrel: creating %s: %w", binPath, err)
	}
	defer binFile.Close()

	idxFile, err := os.Create(idxPath)
	if err != nil {
		return fmt.Errorf("barrel: creating %s: %w", idxPath, err)
	}
	defer idxFile.Close()

	binWriter := bufio.NewWriter(binFile)
	idxWriter := bufio.NewWriter(idxFile)

	if err := binary.Write(idxWriter, binary.LittleEndian, int32(len(lemmaIDs))); err != nil {
		return fmt.Errorf("barrel: writing idx header for %s: %w", idxPath, err)
	}

	var offset int64
	for _, lemmaID := range lemmaIDs {
		list := postings[lemmaID]
		if list == nil {
			continue
		}
		block, err := EncodeBlock(list)
		if err != nil {
			return fmt.Errorf("barrel: encoding lemma %d for %s: %w", lemmaID, binPath, err)
		}
		if _, err := binWriter.Write(block); err != nil {
			return fmt.Errorf("barrel: writing block for lemma %d: %w", lemmaID, err)
		}

		entry := idxEntry{LemmaID: lemmaID, Offset: offset, Length: int64(len(block))}
		if err := writeIdxEntry(idxWriter, entry); err != nil {
			return fmt.Errorf("barrel: writing idx entry for lemma %d: %w", lemmaID, err)
		}
		offset += int64(len(block))
	}

	if err := binWriter.Flush(); err != nil {
		return fmt.Errorf("barrel: flushing %s: %w", binPath, err)
	}
	if err := idxWriter.Flush(); err != nil {
		return fmt.Errorf("barrel: flushing %s: %w", idxPath, err)
	}
	if err := binFile.Sync(); err != nil {
		return fmt.Errorf("barrel: fsyncing %s: %w", binPath, err)
	}
	if err := idxFile.Sync(); err != nil {
		return fmt.Errorf("barrel: fsyncing %s: %w", idxPath, err)
	}
	return nil
}

func writeIdxEntry(w *bufio.Writer, e idxEntry) error {
	if err := binary.Write(w, binary.LittleEndian, e.LemmaID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.Offset); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, e.Length)
}

// ReadIdx loads the complete (lemmaID -> offset,length) offset map from a
// .idx file. A missing file returns a nil map and no error — the caller
// treats the barrel as empty (spec.md §4.F failure semantics).
func ReadIdx(idxPath string) (map[int32]idxEntry, error) {
	f, err := os.Open(idxPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("barrel: opening %s: %w", idxPath, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var numEntries int32
	if err := binary.Read(r, binary.LittleEndian, &numEntries); err != nil {
		return nil, fmt.Errorf("barrel: reading header of %s: %w", idxPath, err)
	}
	if numEntries < 0 {
		return nil, fmt.Errorf("barrel: %s declares negative entry count %d", idxPath, numEntries)
	}

	entries := make(map[int32]idxEntry, numEntries)
	for i := int32(0); i < numEntries; i++ {
		var e idxEntry
		if err := binary.Read(r, binary.LittleEndian, &e.LemmaID); err != nil {
			return nil, fmt.Errorf("barrel: reading idx entry %d of %s: %w", i, idxPath, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &e.Offset); err != nil {
			return nil, fmt.Errorf("barrel: reading idx entry %d of %s: %w", i, idxPath, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &e.Length); err != nil {
			return nil, fmt.Errorf("barrel: reading idx entry %d of %s: %w", i, idxPath, err)
		}
		entries[e.LemmaID] = e
	}
	return entries, nil
}

const idxEntrySize = 4 + 8 + 8 // lemmaID + offset + length

// AppendBlock appends a single lemma's posting-list block to an existing
// (or not-yet-created) delta barrel .bin/.idx pair, used by the incremental
// indexer (spec.md §4.J steps 5 and 7). The on-disk header count is only
// updated after the new block and its idx entry are both durably written,
// so a crash between the two leaves the files in their pre-append state:
// "either the delta idx entry exists and points at valid data, or neither
// does."
func AppendBlock(binPath, idxPath string, list *invertedindex.PostingList) (idxEntry, error) {
	block, err := EncodeBlock(list)
	if err != nil {
		return idxEntry{}, fmt.Errorf("barrel: encoding delta block for lemma %d: %w", list.LemmaID, err)
	}

	binFile, err := os.OpenFile(binPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return idxEntry{}, fmt.Errorf("barrel: opening %s for append: %w", binPath, err)
	}
	defer binFile.Close()

	offset, err := binFile.Seek(0, io.SeekEnd)
	if err != nil {
		return idxEntry{}, fmt.Errorf("barrel: seeking end of %s: %w", binPath, err)
	}
	if _, err := binFile.Write(block); err != nil {
		return idxEntry{}, fmt.Errorf("barrel: appending block to %s: %w", binPath, err)
	}
	if err := binFile.Sync(); err != nil {
		return idxEntry{}, fmt.Errorf("barrel: fsyncing %s: %w", binPath, err)
	}

	entry := idxEntry{LemmaID: list.LemmaID, Offset: offset, Length: int64(len(block))}

	idxFile, err := os.OpenFile(idxPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return idxEntry{}, fmt.Errorf("barrel: opening %s for append: %w", idxPath, err)
	}
	defer idxFile.Close()

	count, err := readIdxHeader(idxFile)
	if err != nil {
		return idxEntry{}, fmt.Errorf("barrel: reading header of %s: %w", idxPath, err)
	}

	entryOffset := int64(4) + int64(count)*idxEntrySize
	if _, err := idxFile.Seek(entryOffset, io.SeekStart); err != nil {
		return idxEntry{}, fmt.Errorf("barrel: seeking entry slot in %s: %w", idxPath, err)
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, entry.LemmaID); err != nil {
		return idxEntry{}, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, entry.Offset); err != nil {
		return idxEntry{}, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, entry.Length); err != nil {
		return idxEntry{}, err
	}
	if _, err := idxFile.Write(buf.Bytes()); err != nil {
		return idxEntry{}, fmt.Errorf("barrel: writing entry to %s: %w", idxPath, err)
	}
	if err := idxFile.Sync(); err != nil {
		return idxEntry{}, fmt.Errorf("barrel: fsyncing %s: %w", idxPath, err)
	}

	if _, err := idxFile.Seek(0, io.SeekStart); err != nil {
		return idxEntry{}, fmt.Errorf("barrel: seeking header of %s: %w", idxPath, err)
	}
	if err := binary.Write(idxFile, binary.LittleEndian, count+1); err != nil {
		return idxEntry{}, fmt.Errorf("barrel: updating header of %s: %w", idxPath, err)
	}
	if err := idxFile.Sync(); err != nil {
		return idxEntry{}, fmt.Errorf("barrel: fsyncing %s: %w", idxPath, err)
	}

	return entry, nil
}

// readIdxHeader reads the numEntries header from an open .idx file,
// treating a zero-length (freshly created) file as a count of zero and
// leaving the file positioned after the header on success.
func readIdxHeader(f *os.File) (int32, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.Size() == 0 {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return 0, err
		}
		if err := binary.Write(f, binary.LittleEndian, int32(0)); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	var count int32
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// ReadLatestBlock returns the most recently appended block for lemmaID from
// the .bin/.idx pair at binPath/idxPath, or nil if the lemma has no entry
// yet (including when idxPath does not exist). Callers that append more
// postings for a lemma already present in a delta barrel must union them
// with this block first: AppendBlock's idx entries are last-write-wins by
// lemma-ID, so a bare append without merging would make every earlier
// document's postings for that lemma unreachable.
func ReadLatestBlock(binPath, idxPath string, lemmaID int32) (*Block, error) {
	entries, err := ReadIdx(idxPath)
	if err != nil {
		return nil, err
	}
	entry, ok := entries[lemmaID]
	if !ok {
		return nil, nil
	}
	raw, err := ReadBlockAt(binPath, entry.Offset, entry.Length)
	if err != nil {
		return nil, fmt.Errorf("barrel: reading existing block for lemma %d: %w", lemmaID, err)
	}
	return DecodeBlock(raw)
}

// ReadBlockAt opens binPath, seeks to offset, and reads length bytes,
// returning the raw block bytes for DecodeBlock. It opens and closes the
// file per call; the serving path in index.go (barrelFile) reads through
// its own held-open handle instead.
func ReadBlockAt(binPath string, offset, length int64) ([]byte, error) {
	f, err := os.Open(binPath)
	if err != nil {
		return nil, fmt.Errorf("barrel: opening %s: %w", binPath, err)
	}
	defer f.Close()
	buf := make([]byte, length)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("barrel: reading %d bytes at offset %d of %s: %w", length, offset, binPath, err)
	}
	return buf, nil
}
