package store

// FileIDIterator is a forward-only cursor over file ids.
// Next advances and reports whether an element is available; the end of the sequence
// is signalled only by Next returning false, never by an empty id.
type FileIDIterator interface {
	Next() bool
	FileID() string
	Err() error
	Close() error
}

// sliceIterator iterates a snapshot taken before the iterator was handed out.
type sliceIterator struct {
	ids     []string
	pos     int
	current string
	closed  bool
}

// NewSliceIterator returns an iterator over a snapshot of ids.
func NewSliceIterator(ids []string) FileIDIterator {
	return &sliceIterator{ids: ids}
}

func (it *sliceIterator) Next() bool {
	if it.closed || it.pos >= len(it.ids) {
		it.closed = true
		it.current = ""
		return false
	}
	it.current = it.ids[it.pos]
	it.pos++
	return true
}

func (it *sliceIterator) FileID() string { return it.current }

func (it *sliceIterator) Err() error { return nil }

func (it *sliceIterator) Close() error {
	it.closed = true
	it.ids = nil
	return nil
}

// Drain collects up to limit ids from it (all of them when limit <= 0) and closes it.
func Drain(it FileIDIterator, limit int) ([]string, error) {
	defer it.Close()
	ids := []string{}
	for it.Next() {
		ids = append(ids, it.FileID())
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, it.Err()
}

// Count exhausts it, returning the number of ids seen and up to keep of them.
func Count(it FileIDIterator, keep int) (int64, []string, error) {
	defer it.Close()
	var n int64
	kept := []string{}
	for it.Next() {
		if keep > 0 && len(kept) < keep {
			kept = append(kept, it.FileID())
		}
		n++
	}
	return n, kept, it.Err()
}
