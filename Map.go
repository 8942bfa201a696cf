package rtrie


//============================================= RTrie Map


// RTrieMap is the mutable facade over the trie engine.
//	It supports deletion with in place slot reuse: freed leaves and internal nodes are threaded
//	onto LIFO free lists and handed out again before the regions grow.
type RTrieMap struct {
	trieInst *RTrie
}

// OpenMap
//	Opens or creates a map over the region files derived from the options. On top of the shared
//	configuration domain, a map entry must be at least pointer size bytes so a freed leaf can
//	hold its free list link.
func OpenMap(opts RTrieOpts) (*RTrieMap, error) {
	trieInst, openErr := openEngine(opts, true)
	if openErr != nil { return nil, openErr }

	return &RTrieMap{ trieInst: trieInst }, nil
}

// Put
//	Inserts the key value pair, overwriting the value when the key is already present.
func (mapInst *RTrieMap) Put(key, value []byte) error {
	_, putErr := mapInst.trieInst.upsert(key, value, true)
	return putErr
}

// MustPut
//	Unchecked Put. A capacity or precondition failure is fatal.
func (mapInst *RTrieMap) MustPut(key, value []byte) {
	putErr := mapInst.Put(key, value)
	if putErr != nil { panic(putErr.Error()) }
}

// Replace
//	Inserts the key value pair and returns the previous value when the key was present, nil when
//	it was added.
func (mapInst *RTrieMap) Replace(key, value []byte) ([]byte, error) {
	return mapInst.trieInst.upsert(key, value, true)
}

// MustReplace
//	Unchecked Replace.
func (mapInst *RTrieMap) MustReplace(key, value []byte) []byte {
	previous, replaceErr := mapInst.Replace(key, value)
	if replaceErr != nil { panic(replaceErr.Error()) }

	return previous
}

// GetOrPut
//	Inserts the key value pair only when the key is absent. Returns the stored value when the key
//	was already present, nil when the pair was added.
func (mapInst *RTrieMap) GetOrPut(key, value []byte) ([]byte, error) {
	return mapInst.trieInst.upsert(key, value, false)
}

// MustGetOrPut
//	Unchecked GetOrPut.
func (mapInst *RTrieMap) MustGetOrPut(key, value []byte) []byte {
	existing, getOrPutErr := mapInst.GetOrPut(key, value)
	if getOrPutErr != nil { panic(getOrPutErr.Error()) }

	return existing
}

// Remove
//	Removes the key and returns a copy of its value, or nil when the key was absent. The leaf and
//	any internal nodes left on a single leaf path go back on the free lists.
func (mapInst *RTrieMap) Remove(key []byte) ([]byte, error) {
	trieInst := mapInst.trieInst

	keyErr := trieInst.checkKey(key)
	if keyErr != nil { return nil, keyErr }

	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return nil, initErr }

	value, removed, removeErr := trieInst.removeLeaf(key)
	if removeErr != nil { return nil, removeErr }
	if ! removed { return nil, nil }

	return value, nil
}

// Delete
//	Remove, discarding the value.
func (mapInst *RTrieMap) Delete(key []byte) error {
	_, removeErr := mapInst.Remove(key)
	return removeErr
}

// Lookup
//	Point lookup returning a copy of the stored value and the leaf index currently holding the key.
func (mapInst *RTrieMap) Lookup(key []byte) ([]byte, uint64, bool, error) {
	return mapInst.trieInst.lookupCopy(key)
}

// Entries
//	A lazy iterator over all pairs in ascending key order.
func (mapInst *RTrieMap) Entries() (*RTrieIterator, error) {
	return mapInst.trieInst.iterator(false)
}

// EntriesRev
//	A lazy iterator over all pairs in descending key order.
func (mapInst *RTrieMap) EntriesRev() (*RTrieIterator, error) {
	return mapInst.trieInst.iterator(true)
}

// Keys
//	All keys in ascending order.
func (mapInst *RTrieMap) Keys() ([][]byte, error) {
	return keysOf(mapInst.trieInst, false)
}

// KeysRev
//	All keys in descending order.
func (mapInst *RTrieMap) KeysRev() ([][]byte, error) {
	return keysOf(mapInst.trieInst, true)
}

// Vals
//	All values in ascending key order.
func (mapInst *RTrieMap) Vals() ([][]byte, error) {
	return valsOf(mapInst.trieInst, false)
}

// ValsRev
//	All values in descending key order.
func (mapInst *RTrieMap) ValsRev() ([][]byte, error) {
	return valsOf(mapInst.trieInst, true)
}

// Size
//	The number of live entries: allocated leaves minus the freed ones.
func (mapInst *RTrieMap) Size() (uint64, error) {
	return mapInst.trieInst.size()
}

// LeafCount
//	The number of allocated leaf slots, including the ones on the free list.
func (mapInst *RTrieMap) LeafCount() (uint64, error) {
	_, leafCount, countErr := mapInst.trieInst.counters()
	return leafCount, countErr
}

// NodeCount
//	The number of allocated node slots, including the root and the ones on the free list.
func (mapInst *RTrieMap) NodeCount() (uint64, error) {
	nodeCount, _, countErr := mapInst.trieInst.counters()
	return nodeCount, countErr
}

// MemoryStats
//	Pool occupancy and region sizes.
func (mapInst *RTrieMap) MemoryStats() (RTrieMemoryStats, error) {
	return mapInst.trieInst.memoryStats()
}

// Share
//	Snapshots the header record, counts and free list heads included.
func (mapInst *RTrieMap) Share() (RTrieSnapshot, error) {
	return mapInst.trieInst.share()
}

// Unshare
//	Resumes over existing region files from a snapshot. Must be the first call on the store.
func (mapInst *RTrieMap) Unshare(snapshot RTrieSnapshot) error {
	return mapInst.trieInst.unshare(snapshot)
}

// PrintChildren
//	Debugging helper that dumps every reachable leaf.
func (mapInst *RTrieMap) PrintChildren() error {
	return mapInst.trieInst.printChildren()
}

// FileSize
//	The combined byte size of the two region files.
func (mapInst *RTrieMap) FileSize() (int64, error) {
	return mapInst.trieInst.fileSize()
}

// Close
//	Persists the header, flushes the regions and closes the backing files.
func (mapInst *RTrieMap) Close() error {
	return mapInst.trieInst.close()
}

// Drop
//	Closes the store and deletes the backing files. Named Drop since Remove is taken by key removal.
func (mapInst *RTrieMap) Drop() error {
	return mapInst.trieInst.remove()
}
