package rtrie

import "bytes"
import mrand "math/rand"
import "sort"
import "testing"

import set3 "github.com/TomTonic/Set3"


// TestIterateOrdered materializes a large random population and checks the traversal against the
// sorted key list: ascending byte lexicographic order, every stored key exactly once.
func TestIterateOrdered(t *testing.T) {
	enumInst := openTestEnumeration(t, RTrieOpts{ PointerSize: 4, Aridity: 16, KeySize: 4, ValueSize: 2 })
	defer enumInst.Remove()

	rng := mrand.New(mrand.NewSource(2048))
	inserted := set3.Empty[string]()

	var keys [][]byte
	for len(keys) < 2048 {
		key := make([]byte, 4)
		rng.Read(key)
		if inserted.Contains(string(key)) { continue }

		inserted.Add(string(key))
		keys = append(keys, key)

		_, addErr := enumInst.Add(key, []byte{ key[0], key[1] })
		if addErr != nil { t.Fatal(addErr.Error()) }
	}

	sortedKeys := make([][]byte, len(keys))
	copy(sortedKeys, keys)
	sort.Slice(sortedKeys, func(i, j int) bool { return bytes.Compare(sortedKeys[i], sortedKeys[j]) < 0 })

	t.Run("Test Forward Order", func(t *testing.T) {
		iter, iterErr := enumInst.Entries()
		if iterErr != nil { t.Fatal(iterErr.Error()) }

		yielded := set3.Empty[string]()
		i := 0
		for pair := iter.Next(); pair != nil; pair = iter.Next() {
			if i >= len(sortedKeys) { t.Fatal("iterator yielded more entries than stored") }
			if ! bytes.Equal(pair.Key, sortedKeys[i]) { t.Fatalf("entry %d out of order: %x != %x", i, pair.Key, sortedKeys[i]) }
			if yielded.Contains(string(pair.Key)) { t.Fatalf("key %x yielded twice", pair.Key) }

			yielded.Add(string(pair.Key))
			i++
		}

		if i != len(sortedKeys) { t.Fatalf("iterator yielded %d of %d entries", i, len(sortedKeys)) }
		if ! yielded.Equals(inserted) { t.Fatal("yielded key set differs from the inserted key set") }
	})

	t.Run("Test Reverse Is The Mirror", func(t *testing.T) {
		forward, forwardErr := enumInst.trieInst.pairs(false)
		if forwardErr != nil { t.Fatal(forwardErr.Error()) }

		backward, backwardErr := enumInst.trieInst.pairs(true)
		if backwardErr != nil { t.Fatal(backwardErr.Error()) }

		if len(forward) != len(backward) { t.Fatalf("forward and reverse lengths differ: %d != %d", len(forward), len(backward)) }

		for i := range forward {
			mirror := backward[len(backward) - 1 - i]
			if ! bytes.Equal(forward[i].Key, mirror.Key) { t.Fatalf("reverse mismatch at %d: %x != %x", i, forward[i].Key, mirror.Key) }
			if ! bytes.Equal(forward[i].Value, mirror.Value) { t.Fatalf("reverse value mismatch at %d", i) }
		}
	})

	t.Run("Test Keys And Vals", func(t *testing.T) {
		allKeys, keysErr := enumInst.Keys()
		if keysErr != nil { t.Fatal(keysErr.Error()) }
		if len(allKeys) != len(sortedKeys) { t.Fatalf("expected %d keys, got %d", len(sortedKeys), len(allKeys)) }
		if ! bytes.Equal(allKeys[0], sortedKeys[0]) { t.Error("keys do not start at the smallest key") }

		allVals, valsErr := enumInst.Vals()
		if valsErr != nil { t.Fatal(valsErr.Error()) }
		if len(allVals) != len(sortedKeys) { t.Fatalf("expected %d vals, got %d", len(sortedKeys), len(allVals)) }

		for i, value := range allVals {
			if value[0] != sortedKeys[i][0] || value[1] != sortedKeys[i][1] {
				t.Fatalf("value %d does not belong to its key", i)
			}
		}
	})
}

// TestIterateSparseRoot covers a wide root with a handful of occupied slots and a root fanout
// larger than the interior fanout.
func TestIterateSparseRoot(t *testing.T) {
	enumInst := openTestEnumeration(t, RTrieOpts{ PointerSize: 4, Aridity: 4, RootAridity: 256, KeySize: 3, ValueSize: 1 })
	defer enumInst.Remove()

	keys := [][]byte{
		{ 0xF0, 0x00, 0x01 },
		{ 0x01, 0x00, 0x02 },
		{ 0x80, 0x00, 0x03 },
		{ 0x80, 0x00, 0x04 },
	}

	for _, key := range keys {
		enumInst.MustAdd(key, []byte{ key[2] })
	}

	allPairs, pairsErr := enumInst.trieInst.pairs(false)
	if pairsErr != nil { t.Fatal(pairsErr.Error()) }

	expected := [][]byte{ keys[1], keys[2], keys[3], keys[0] }
	if len(allPairs) != len(expected) { t.Fatalf("expected %d entries, got %d", len(expected), len(allPairs)) }

	for i, pair := range allPairs {
		if ! bytes.Equal(pair.Key, expected[i]) { t.Fatalf("entry %d out of order: %x != %x", i, pair.Key, expected[i]) }
	}
}

func TestIterateEmpty(t *testing.T) {
	enumInst := openTestEnumeration(t, RTrieOpts{ PointerSize: 2, Aridity: 2, KeySize: 2, ValueSize: 1 })
	defer enumInst.Remove()

	iter, iterErr := enumInst.Entries()
	if iterErr != nil { t.Fatal(iterErr.Error()) }
	if iter.Next() != nil { t.Error("expected an empty traversal") }

	reverse, reverseErr := enumInst.EntriesRev()
	if reverseErr != nil { t.Fatal(reverseErr.Error()) }
	if reverse.Next() != nil { t.Error("expected an empty reverse traversal") }
}
