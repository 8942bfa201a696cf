package rtrie

import "fmt"
import "math/bits"
import "os"
import "path/filepath"

import "github.com/sirgallo/utils"


//============================================= RTrie


// openEngine
//	Validates the configuration and opens the region and meta files. Region creation itself is
//	lazy: the first reading or mutating call maps the regions and allocates the root, or resumes
//	over a non empty meta file from a previous run.
func openEngine(opts RTrieOpts, supportsDelete bool) (*RTrie, error) {
	validateErr := validateOpts(opts, supportsDelete)
	if validateErr != nil { return nil, validateErr }

	rootAridity := opts.RootAridity
	if rootAridity == 0 { rootAridity = opts.Aridity }

	trieInst := &RTrie{
		filepath: opts.Filepath,
		fileName: opts.FileName,
		opened: true,
		supportsDelete: supportsDelete,
		pointerSize: uint64(opts.PointerSize),
		aridity: uint64(opts.Aridity),
		rootAridity: uint64(rootAridity),
		keySize: uint64(opts.KeySize),
		valueSize: uint64(opts.ValueSize),
	}

	trieInst.bitStep = uint64(bits.TrailingZeros64(trieInst.aridity))
	trieInst.rootBits = uint64(bits.TrailingZeros64(trieInst.rootAridity))
	trieInst.nodeSize = trieInst.aridity * trieInst.pointerSize
	trieInst.rootSize = trieInst.rootAridity * trieInst.pointerSize
	trieInst.leafSize = trieInst.keySize + trieInst.valueSize

	if trieInst.pointerSize == 8 {
		trieInst.loadMask = ^uint64(0)
	} else { trieInst.loadMask = (uint64(1) << (8 * trieInst.pointerSize)) - 1 }

	trieInst.maxAddress = uint64(1) << (8 * trieInst.pointerSize - 1)
	trieInst.emptyNodesHead = trieInst.loadMask
	trieInst.emptyLeavesHead = trieInst.loadMask

	flag := os.O_RDWR | os.O_CREATE
	tailPad := 8 - trieInst.pointerSize

	nodesFile, nodesErr := os.OpenFile(filepath.Join(opts.Filepath, opts.FileName + NodesFileSuffix), flag, 0600)
	if nodesErr != nil { return nil, nodesErr }

	leavesFile, leavesErr := os.OpenFile(filepath.Join(opts.Filepath, opts.FileName + LeavesFileSuffix), flag, 0600)
	if leavesErr != nil {
		nodesFile.Close()
		return nil, leavesErr
	}

	metaFile, metaErr := os.OpenFile(filepath.Join(opts.Filepath, opts.FileName + MetaFileSuffix), flag, 0600)
	if metaErr != nil {
		nodesFile.Close()
		leavesFile.Close()
		return nil, metaErr
	}

	trieInst.nodes = newRegion(nodesFile, tailPad)
	trieInst.leaves = newRegion(leavesFile, tailPad)
	trieInst.metaFile = metaFile

	return trieInst, nil
}

// validateOpts
//	Construction fails on any configuration outside the valid domain.
func validateOpts(opts RTrieOpts, supportsDelete bool) error {
	switch opts.PointerSize {
		case 2, 4, 5, 6, 8:
		default:
			return fmt.Errorf("%w: pointer size must be one of 2, 4, 5, 6, 8", ErrConfiguration)
	}

	switch opts.Aridity {
		case 2, 4, 16, 256:
		default:
			return fmt.Errorf("%w: aridity must be one of 2, 4, 16, 256", ErrConfiguration)
	}

	rootAridity := opts.RootAridity
	if rootAridity == 0 { rootAridity = opts.Aridity }

	if rootAridity < opts.Aridity || bits.OnesCount64(uint64(rootAridity)) != 1 {
		return fmt.Errorf("%w: root aridity must be a power of two of at least the aridity", ErrConfiguration)
	}

	if opts.KeySize < 1 { return fmt.Errorf("%w: key size must be at least 1", ErrConfiguration) }
	if opts.ValueSize < 0 { return fmt.Errorf("%w: value size cannot be negative", ErrConfiguration) }

	if opts.KeySize + opts.ValueSize > MaxEntrySize {
		return fmt.Errorf("%w: key plus value cannot exceed %d bytes", ErrConfiguration, MaxEntrySize)
	}

	bitStep := bits.TrailingZeros64(uint64(opts.Aridity))
	rootBits := bits.TrailingZeros64(uint64(rootAridity))

	if rootBits == 0 || rootBits % bitStep != 0 || rootBits > 8 * opts.KeySize {
		return fmt.Errorf("%w: root bits must be a non zero multiple of the bit step within the key", ErrConfiguration)
	}

	if supportsDelete && opts.KeySize + opts.ValueSize < opts.PointerSize {
		return fmt.Errorf("%w: map entries must be at least pointer size bytes to thread the free list", ErrConfiguration)
	}

	return nil
}

// ensureInit
//	Lazily creates the regions on the first reading or mutating call. A meta file from a previous
//	run means the engine resumes over the already initialized regions instead. Fresh region bytes
//	come zeroed from truncation, so the root starts with every child slot null.
func (trieInst *RTrie) ensureInit() error {
	if ! trieInst.opened { return ErrClosed }
	if trieInst.initialized { return nil }

	stat, statErr := trieInst.metaFile.Stat()
	if statErr != nil { return statErr }

	if stat.Size() >= MetaSize {
		readErr := trieInst.readMeta()
		if readErr != nil { return readErr }

		restoreErr := trieInst.restoreRegions(trieInst.nodeCount, trieInst.leafCount)
		if restoreErr != nil { return restoreErr }

		trieInst.initialized = true
		return nil
	}

	allocErr := trieInst.nodes.allocate(trieInst.rootSize)
	if allocErr != nil { return allocErr }

	growErr := trieInst.leaves.grow(1)
	if growErr != nil { return growErr }

	trieInst.nodeCount = 1
	trieInst.leafCount = 0
	trieInst.emptyNodesHead = trieInst.loadMask
	trieInst.emptyLeavesHead = trieInst.loadMask

	trieInst.initialized = true
	return nil
}

// close
//	Persists the header, flushes both regions and closes the backing files.
func (trieInst *RTrie) close() error {
	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	if ! trieInst.opened { return nil }
	trieInst.opened = false

	if trieInst.initialized {
		writeMetaErr := trieInst.writeMeta()
		if writeMetaErr != nil { return writeMetaErr }

		flushErr := trieInst.nodes.flush()
		if flushErr != nil { return flushErr }

		flushErr = trieInst.leaves.flush()
		if flushErr != nil { return flushErr }

		unmapErr := trieInst.nodes.munmap()
		if unmapErr != nil { return unmapErr }

		unmapErr = trieInst.leaves.munmap()
		if unmapErr != nil { return unmapErr }
	}

	for _, file := range []*os.File{ trieInst.nodes.file, trieInst.leaves.file, trieInst.metaFile } {
		if file != nil {
			closeErr := file.Close()
			if closeErr != nil { return closeErr }
		}
	}

	trieInst.filepath = utils.GetZero[string]()
	trieInst.fileName = utils.GetZero[string]()

	return nil
}

// remove
//	Closes the engine and deletes the backing files.
func (trieInst *RTrie) remove() error {
	nodesName := trieInst.nodes.file.Name()
	leavesName := trieInst.leaves.file.Name()
	metaName := trieInst.metaFile.Name()

	closeErr := trieInst.close()
	if closeErr != nil { return closeErr }

	for _, name := range []string{ nodesName, leavesName, metaName } {
		removeErr := os.Remove(name)
		if removeErr != nil { return removeErr }
	}

	return nil
}

// fileSize
//	The combined byte size of the two region files.
func (trieInst *RTrie) fileSize() (int64, error) {
	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	if ! trieInst.opened { return 0, ErrClosed }

	var total int64
	for _, file := range []*os.File{ trieInst.nodes.file, trieInst.leaves.file } {
		stat, statErr := file.Stat()
		if statErr != nil { return 0, statErr }
		total += stat.Size()
	}

	return total, nil
}


//============================================= Shared facade operations


// upsert
//	Inserts the key if absent. When the key is already present the previous value is returned and
//	the stored value is overwritten only if overwrite is set, which is the difference between the
//	put/replace family and getOrPut.
func (trieInst *RTrie) upsert(key, value []byte, overwrite bool) ([]byte, error) {
	checkErr := trieInst.checkEntry(key, value)
	if checkErr != nil { return nil, checkErr }

	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return nil, initErr }

	added, index, putErr := trieInst.putLeaf(key)
	if putErr != nil { return nil, putErr }

	if added {
		writeErr := trieInst.writeLeafValue(index, value)
		if writeErr != nil { return nil, writeErr }

		return nil, nil
	}

	stored, valueErr := trieInst.leafValue(index)
	if valueErr != nil { return nil, valueErr }
	previous := append(make([]byte, 0, trieInst.valueSize), stored...)

	if overwrite {
		writeErr := trieInst.writeLeafValue(index, value)
		if writeErr != nil { return nil, writeErr }
	}

	return previous, nil
}

// lookupCopy
//	Point lookup returning a copy of the stored value and the leaf index.
func (trieInst *RTrie) lookupCopy(key []byte) ([]byte, uint64, bool, error) {
	keyErr := trieInst.checkKey(key)
	if keyErr != nil { return nil, 0, false, keyErr }

	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return nil, 0, false, initErr }

	index, found, lookupErr := trieInst.lookupLeaf(key)
	if lookupErr != nil { return nil, 0, false, lookupErr }
	if ! found { return nil, 0, false, nil }

	stored, valueErr := trieInst.leafValue(index)
	if valueErr != nil { return nil, 0, false, valueErr }

	return append(make([]byte, 0, trieInst.valueSize), stored...), index, true, nil
}

// iterator
//	Creates an in order (or reverse) iterator, initializing the regions first if needed.
func (trieInst *RTrie) iterator(reverse bool) (*RTrieIterator, error) {
	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return nil, initErr }

	return trieInst.newIterator(reverse), nil
}

// pairs
//	Materializes the full traversal.
func (trieInst *RTrie) pairs(reverse bool) ([]*KeyValuePair, error) {
	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return nil, initErr }

	return trieInst.collectPairs(reverse), nil
}

// size
//	The number of live entries: allocated leaves minus the freed ones.
func (trieInst *RTrie) size() (uint64, error) {
	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return 0, initErr }

	return trieInst.leafCount - trieInst.emptyLeaves, nil
}

// counters
//	The allocated slot counts for both pools.
func (trieInst *RTrie) counters() (uint64, uint64, error) {
	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return 0, 0, initErr }

	return trieInst.nodeCount, trieInst.leafCount, nil
}

// memoryStats
//	Pool occupancy and region sizes.
func (trieInst *RTrie) memoryStats() (RTrieMemoryStats, error) {
	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return RTrieMemoryStats{}, initErr }

	return RTrieMemoryStats{
		NodesAllocated: trieInst.nodeCount,
		LeavesAllocated: trieInst.leafCount,
		NodesInUse: trieInst.nodeCount - trieInst.emptyNodes,
		LeavesInUse: trieInst.leafCount - trieInst.emptyLeaves,
		NodesRegionSize: trieInst.nodes.size,
		LeavesRegionSize: trieInst.leaves.size,
	}, nil
}
