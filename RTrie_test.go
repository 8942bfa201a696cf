package rtrie

import "errors"
import "os"
import "path/filepath"
import "testing"


func openTestEnumeration(t *testing.T, opts RTrieOpts) *RTrieEnumeration {
	if opts.Filepath == "" { opts.Filepath = t.TempDir() }
	if opts.FileName == "" { opts.FileName = "testrtrie" }

	enumInst, openErr := OpenEnumeration(opts)
	if openErr != nil { t.Fatal(openErr.Error()) }

	return enumInst
}

func openTestMap(t *testing.T, opts RTrieOpts) *RTrieMap {
	if opts.Filepath == "" { opts.Filepath = t.TempDir() }
	if opts.FileName == "" { opts.FileName = "testrtrie" }

	mapInst, openErr := OpenMap(opts)
	if openErr != nil { t.Fatal(openErr.Error()) }

	return mapInst
}


func TestConfigValidation(t *testing.T) {
	invalid := []RTrieOpts{
		{ PointerSize: 3, Aridity: 2, KeySize: 2, ValueSize: 1 },
		{ PointerSize: 2, Aridity: 8, KeySize: 2, ValueSize: 1 },
		{ PointerSize: 2, Aridity: 4, RootAridity: 2, KeySize: 2, ValueSize: 1 },
		{ PointerSize: 2, Aridity: 2, RootAridity: 3, KeySize: 2, ValueSize: 1 },
		{ PointerSize: 2, Aridity: 16, RootAridity: 32, KeySize: 2, ValueSize: 1 },
		{ PointerSize: 2, Aridity: 2, KeySize: 0, ValueSize: 1 },
		{ PointerSize: 2, Aridity: 2, RootAridity: 512, KeySize: 1, ValueSize: 1 },
		{ PointerSize: 2, Aridity: 2, KeySize: 40000, ValueSize: 30000 },
	}

	for i, opts := range invalid {
		opts.Filepath = t.TempDir()
		opts.FileName = "testconfig"

		_, openErr := OpenEnumeration(opts)
		if ! errors.Is(openErr, ErrConfiguration) { t.Errorf("case %d: expected configuration error, got %v", i, openErr) }
	}

	t.Run("Test Map Entry Smaller Than Pointer", func(t *testing.T) {
		opts := RTrieOpts{
			Filepath: t.TempDir(),
			FileName: "testconfig",
			PointerSize: 8,
			Aridity: 2,
			KeySize: 2,
			ValueSize: 1,
		}

		_, openErr := OpenMap(opts)
		if ! errors.Is(openErr, ErrConfiguration) { t.Errorf("expected configuration error, got %v", openErr) }

		// the same shape is fine for the enumeration, which has no free lists
		_, openErr = OpenEnumeration(opts)
		if openErr != nil { t.Errorf("expected enumeration to accept the configuration, got %v", openErr) }
	})
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	opts := RTrieOpts{
		Filepath: dir,
		FileName: "testreopen",
		PointerSize: 4,
		Aridity: 16,
		KeySize: 3,
		ValueSize: 2,
	}

	enumInst, openErr := OpenEnumeration(opts)
	if openErr != nil { t.Fatal(openErr.Error()) }

	keys := [][]byte{
		{ 0x01, 0x02, 0x03 },
		{ 0x01, 0x02, 0x04 },
		{ 0xFF, 0x00, 0x10 },
	}

	for i, key := range keys {
		index, addErr := enumInst.Add(key, []byte{ byte(i), byte(i) })
		if addErr != nil { t.Fatal(addErr.Error()) }
		if index != uint64(i) { t.Errorf("expected index %d, got %d", i, index) }
	}

	nodeCount, leafCount, countErr := enumInst.trieInst.counters()
	if countErr != nil { t.Fatal(countErr.Error()) }

	closeErr := enumInst.Close()
	if closeErr != nil { t.Fatal(closeErr.Error()) }

	reopened, reopenErr := OpenEnumeration(opts)
	if reopenErr != nil { t.Fatal(reopenErr.Error()) }
	defer reopened.Remove()

	for i, key := range keys {
		value, index, found, lookupErr := reopened.Lookup(key)
		if lookupErr != nil { t.Fatal(lookupErr.Error()) }
		if ! found { t.Errorf("key %x missing after reopen", key) }
		if index != uint64(i) { t.Errorf("expected index %d after reopen, got %d", i, index) }
		if len(value) != 2 || value[0] != byte(i) { t.Errorf("unexpected value after reopen: %x", value) }
	}

	newNodeCount, newLeafCount, newCountErr := reopened.trieInst.counters()
	if newCountErr != nil { t.Fatal(newCountErr.Error()) }
	if newNodeCount != nodeCount || newLeafCount != leafCount {
		t.Errorf("counters changed across reopen: %d/%d != %d/%d", newNodeCount, newLeafCount, nodeCount, leafCount)
	}
}

func TestShareUnshare(t *testing.T) {
	dir := t.TempDir()
	opts := RTrieOpts{
		Filepath: dir,
		FileName: "testshare",
		PointerSize: 4,
		Aridity: 4,
		KeySize: 4,
		ValueSize: 4,
	}

	mapInst, openErr := OpenMap(opts)
	if openErr != nil { t.Fatal(openErr.Error()) }

	putErr := mapInst.Put([]byte("abcd"), []byte("1234"))
	if putErr != nil { t.Fatal(putErr.Error()) }
	putErr = mapInst.Put([]byte("abce"), []byte("5678"))
	if putErr != nil { t.Fatal(putErr.Error()) }

	removeErr := mapInst.Delete([]byte("abce"))
	if removeErr != nil { t.Fatal(removeErr.Error()) }

	snapshot, shareErr := mapInst.Share()
	if shareErr != nil { t.Fatal(shareErr.Error()) }

	closeErr := mapInst.Close()
	if closeErr != nil { t.Fatal(closeErr.Error()) }

	// drop the persisted header so the snapshot is the only way back in
	metaRemoveErr := os.Remove(filepath.Join(dir, opts.FileName + MetaFileSuffix))
	if metaRemoveErr != nil { t.Fatal(metaRemoveErr.Error()) }

	resumed, resumeErr := OpenMap(opts)
	if resumeErr != nil { t.Fatal(resumeErr.Error()) }
	defer resumed.Drop()

	unshareErr := resumed.Unshare(snapshot)
	if unshareErr != nil { t.Fatal(unshareErr.Error()) }

	value, _, found, lookupErr := resumed.Lookup([]byte("abcd"))
	if lookupErr != nil { t.Fatal(lookupErr.Error()) }
	if ! found || string(value) != "1234" { t.Errorf("expected abcd -> 1234 after unshare, got %q found=%v", value, found) }

	_, _, found, lookupErr = resumed.Lookup([]byte("abce"))
	if lookupErr != nil { t.Fatal(lookupErr.Error()) }
	if found { t.Error("deleted key resurfaced after unshare") }

	// the freed slots must be reusable, so the free list lengths were rebuilt
	stats, statsErr := resumed.MemoryStats()
	if statsErr != nil { t.Fatal(statsErr.Error()) }
	if stats.LeavesInUse != 1 { t.Errorf("expected 1 leaf in use after unshare, got %d", stats.LeavesInUse) }

	unshareErr = resumed.Unshare(snapshot)
	if ! errors.Is(unshareErr, ErrAlreadyInitialized) { t.Errorf("expected ErrAlreadyInitialized, got %v", unshareErr) }
}

func TestUnshareAfterUse(t *testing.T) {
	enumInst := openTestEnumeration(t, RTrieOpts{ PointerSize: 2, Aridity: 2, KeySize: 2, ValueSize: 1 })
	defer enumInst.Remove()

	_, addErr := enumInst.Add([]byte("ab"), []byte("X"))
	if addErr != nil { t.Fatal(addErr.Error()) }

	unshareErr := enumInst.Unshare(RTrieSnapshot{ NodeCount: 1, EmptyNodesHead: ^uint64(0), EmptyLeavesHead: ^uint64(0) })
	if ! errors.Is(unshareErr, ErrAlreadyInitialized) { t.Errorf("expected ErrAlreadyInitialized, got %v", unshareErr) }
}
