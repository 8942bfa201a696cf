package rtrie


//============================================= RTrie Enumeration


// RTrieEnumeration is the append only facade over the trie engine.
//	Leaves are numbered in insertion order and never freed, so the index returned by Add is
//	stable for the life of the store and doubles as a handle for O(1) reads through Get.
type RTrieEnumeration struct {
	trieInst *RTrie
}

// OpenEnumeration
//	Opens or creates an enumeration over the region files derived from the options.
func OpenEnumeration(opts RTrieOpts) (*RTrieEnumeration, error) {
	trieInst, openErr := openEngine(opts, false)
	if openErr != nil { return nil, openErr }

	return &RTrieEnumeration{ trieInst: trieInst }, nil
}

// Add
//	Inserts the key value pair and returns the leaf index. If the key is already present its
//	value is overwritten and the original index is returned. Indices for distinct keys are
//	assigned monotonically from 0.
func (enumInst *RTrieEnumeration) Add(key, value []byte) (uint64, error) {
	trieInst := enumInst.trieInst

	checkErr := trieInst.checkEntry(key, value)
	if checkErr != nil { return 0, checkErr }

	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return 0, initErr }

	_, index, putErr := trieInst.putLeaf(key)
	if putErr != nil { return 0, putErr }

	writeErr := trieInst.writeLeafValue(index, value)
	if writeErr != nil { return 0, writeErr }

	return index, nil
}

// MustAdd
//	Unchecked Add. A capacity or precondition failure is fatal.
func (enumInst *RTrieEnumeration) MustAdd(key, value []byte) uint64 {
	index, addErr := enumInst.Add(key, value)
	if addErr != nil { panic(addErr.Error()) }

	return index
}

// Lookup
//	Point lookup returning a copy of the stored value and the insertion index of the key.
func (enumInst *RTrieEnumeration) Lookup(key []byte) ([]byte, uint64, bool, error) {
	return enumInst.trieInst.lookupCopy(key)
}

// Get
//	Reads the leaf at the given insertion index directly, O(1). The second return is false when
//	the index has not been assigned yet.
func (enumInst *RTrieEnumeration) Get(index uint64) (*KeyValuePair, bool, error) {
	trieInst := enumInst.trieInst

	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return nil, false, initErr }

	if index >= trieInst.leafCount { return nil, false, nil }

	pair, pairErr := trieInst.leafPair(index)
	if pairErr != nil { return nil, false, pairErr }

	return pair, true, nil
}

// Slice
//	Reads the contiguous leaf range [left, right) in insertion order. Fails with ErrBounds when
//	right exceeds the leaf count or the range is inverted.
func (enumInst *RTrieEnumeration) Slice(left, right uint64) ([]*KeyValuePair, error) {
	trieInst := enumInst.trieInst

	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return nil, initErr }

	if right > trieInst.leafCount || left > right { return nil, ErrBounds }

	pairs := make([]*KeyValuePair, 0, right - left)
	for index := left; index < right; index++ {
		pair, pairErr := trieInst.leafPair(index)
		if pairErr != nil { return nil, pairErr }

		pairs = append(pairs, pair)
	}

	return pairs, nil
}

// Entries
//	A lazy iterator over all pairs in ascending key order.
func (enumInst *RTrieEnumeration) Entries() (*RTrieIterator, error) {
	return enumInst.trieInst.iterator(false)
}

// EntriesRev
//	A lazy iterator over all pairs in descending key order.
func (enumInst *RTrieEnumeration) EntriesRev() (*RTrieIterator, error) {
	return enumInst.trieInst.iterator(true)
}

// Keys
//	All keys in ascending order.
func (enumInst *RTrieEnumeration) Keys() ([][]byte, error) {
	return keysOf(enumInst.trieInst, false)
}

// KeysRev
//	All keys in descending order.
func (enumInst *RTrieEnumeration) KeysRev() ([][]byte, error) {
	return keysOf(enumInst.trieInst, true)
}

// Vals
//	All values in ascending key order.
func (enumInst *RTrieEnumeration) Vals() ([][]byte, error) {
	return valsOf(enumInst.trieInst, false)
}

// ValsRev
//	All values in descending key order.
func (enumInst *RTrieEnumeration) ValsRev() ([][]byte, error) {
	return valsOf(enumInst.trieInst, true)
}

// Size
//	The number of stored entries. Equal to LeafCount since the enumeration never frees leaves.
func (enumInst *RTrieEnumeration) Size() (uint64, error) {
	return enumInst.trieInst.size()
}

// LeafCount
//	The number of allocated leaf slots.
func (enumInst *RTrieEnumeration) LeafCount() (uint64, error) {
	_, leafCount, countErr := enumInst.trieInst.counters()
	return leafCount, countErr
}

// NodeCount
//	The number of allocated node slots, including the root.
func (enumInst *RTrieEnumeration) NodeCount() (uint64, error) {
	nodeCount, _, countErr := enumInst.trieInst.counters()
	return nodeCount, countErr
}

// MemoryStats
//	Pool occupancy and region sizes.
func (enumInst *RTrieEnumeration) MemoryStats() (RTrieMemoryStats, error) {
	return enumInst.trieInst.memoryStats()
}

// Share
//	Snapshots the header record.
func (enumInst *RTrieEnumeration) Share() (RTrieSnapshot, error) {
	return enumInst.trieInst.share()
}

// Unshare
//	Resumes over existing region files from a snapshot. Must be the first call on the store.
func (enumInst *RTrieEnumeration) Unshare(snapshot RTrieSnapshot) error {
	return enumInst.trieInst.unshare(snapshot)
}

// PrintChildren
//	Debugging helper that dumps every reachable leaf.
func (enumInst *RTrieEnumeration) PrintChildren() error {
	return enumInst.trieInst.printChildren()
}

// FileSize
//	The combined byte size of the two region files.
func (enumInst *RTrieEnumeration) FileSize() (int64, error) {
	return enumInst.trieInst.fileSize()
}

// Close
//	Persists the header, flushes the regions and closes the backing files.
func (enumInst *RTrieEnumeration) Close() error {
	return enumInst.trieInst.close()
}

// Remove
//	Closes the store and deletes the backing files.
func (enumInst *RTrieEnumeration) Remove() error {
	return enumInst.trieInst.remove()
}


// keysOf / valsOf materialize one side of the traversal.
func keysOf(trieInst *RTrie, reverse bool) ([][]byte, error) {
	allPairs, pairsErr := trieInst.pairs(reverse)
	if pairsErr != nil { return nil, pairsErr }

	keys := make([][]byte, len(allPairs))
	for i, pair := range allPairs { keys[i] = pair.Key }

	return keys, nil
}

func valsOf(trieInst *RTrie, reverse bool) ([][]byte, error) {
	allPairs, pairsErr := trieInst.pairs(reverse)
	if pairsErr != nil { return nil, pairsErr }

	vals := make([][]byte, len(allPairs))
	for i, pair := range allPairs { vals[i] = pair.Value }

	return vals, nil
}
