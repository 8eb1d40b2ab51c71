// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Bucket provides a logical key space within a kv store by prefixing all keys.
type Bucket string

type bucketStore struct {
	prefix []byte
	src    GetPutter
}

// NewStore creates a bucketed store from the source store.
func (b Bucket) NewStore(src GetPutter) GetPutter {
	return &bucketStore{[]byte(b), src}
}

func (s *bucketStore) key(key []byte) []byte {
	return append(append(make([]byte, 0, len(s.prefix)+len(key)), s.prefix...), key...)
}

func (s *bucketStore) Get(key []byte) ([]byte, error) {
	return s.src.Get(s.key(key))
}

func (s *bucketStore) Has(key []byte) (bool, error) {
	return s.src.Has(s.key(key))
}

func (s *bucketStore) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *bucketStore) Put(key, value []byte) error {
	return s.src.Put(s.key(key), value)
}

func (s *bucketStore) Delete(key []byte) error {
	return s.src.Delete(s.key(key))
}

func (s *bucketStore) NewBatch() Batch {
	return &bucketBatch{s.prefix, s.src.NewBatch()}
}

func (s *bucketStore) NewIterator(r Range) Iterator {
	from := append(append([]byte(nil), s.prefix...), r.From...)
	var to []byte
	if r.To != nil {
		to = append(append([]byte(nil), s.prefix...), r.To...)
	} else {
		// advance the last prefix byte to bound the bucket
		to = append([]byte(nil), s.prefix...)
		for i := len(to) - 1; i >= 0; i-- {
			to[i]++
			if to[i] != 0 {
				break
			}
		}
	}
	return &bucketIterator{len(s.prefix), s.src.NewIterator(Range{From: from, To: to})}
}

type bucketBatch struct {
	prefix []byte
	src    Batch
}

func (b *bucketBatch) key(key []byte) []byte {
	return append(append(make([]byte, 0, len(b.prefix)+len(key)), b.prefix...), key...)
}

func (b *bucketBatch) Put(key, value []byte) error {
	return b.src.Put(b.key(key), value)
}

func (b *bucketBatch) Delete(key []byte) error {
	return b.src.Delete(b.key(key))
}

func (b *bucketBatch) NewBatch() Batch {
	return &bucketBatch{b.prefix, b.src.NewBatch()}
}

func (b *bucketBatch) Len() int { return b.src.Len() }

func (b *bucketBatch) Write() error { return b.src.Write() }

type bucketIterator struct {
	prefixLen int
	src       Iterator
}

func (i *bucketIterator) Next() bool { return i.src.Next() }

func (i *bucketIterator) Release() { i.src.Release() }

func (i *bucketIterator) Error() error { return i.src.Error() }

func (i *bucketIterator) Key() []byte { return i.src.Key()[i.prefixLen:] }

func (i *bucketIterator) Value() []byte { return i.src.Value() }
