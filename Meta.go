package rtrie

import "encoding/binary"
import "errors"


//============================================= RTrie Metadata


// serializeMeta
//	Serialize the header record: the slot counts, the free list heads and the free list lengths,
//	8 bytes each little endian.
func (trieInst *RTrie) serializeMeta() []byte {
	meta := make([]byte, MetaSize)

	binary.LittleEndian.PutUint64(meta[MetaNodeCountIdx:], trieInst.nodeCount)
	binary.LittleEndian.PutUint64(meta[MetaLeafCountIdx:], trieInst.leafCount)
	binary.LittleEndian.PutUint64(meta[MetaEmptyNodesHeadIdx:], trieInst.emptyNodesHead)
	binary.LittleEndian.PutUint64(meta[MetaEmptyLeavesHeadIdx:], trieInst.emptyLeavesHead)
	binary.LittleEndian.PutUint64(meta[MetaEmptyNodesIdx:], trieInst.emptyNodes)
	binary.LittleEndian.PutUint64(meta[MetaEmptyLeavesIdx:], trieInst.emptyLeaves)

	return meta
}

// writeMeta
//	Persists the header record to the meta file.
func (trieInst *RTrie) writeMeta() error {
	_, writeErr := trieInst.metaFile.WriteAt(trieInst.serializeMeta(), 0)
	if writeErr != nil { return writeErr }

	return trieInst.metaFile.Sync()
}

// readMeta
//	Loads the header record back from the meta file.
func (trieInst *RTrie) readMeta() error {
	meta := make([]byte, MetaSize)

	_, readErr := trieInst.metaFile.ReadAt(meta, 0)
	if readErr != nil { return readErr }

	trieInst.nodeCount = binary.LittleEndian.Uint64(meta[MetaNodeCountIdx:])
	trieInst.leafCount = binary.LittleEndian.Uint64(meta[MetaLeafCountIdx:])
	trieInst.emptyNodesHead = binary.LittleEndian.Uint64(meta[MetaEmptyNodesHeadIdx:])
	trieInst.emptyLeavesHead = binary.LittleEndian.Uint64(meta[MetaEmptyLeavesHeadIdx:])
	trieInst.emptyNodes = binary.LittleEndian.Uint64(meta[MetaEmptyNodesIdx:])
	trieInst.emptyLeaves = binary.LittleEndian.Uint64(meta[MetaEmptyLeavesIdx:])

	if trieInst.nodeCount == 0 { return errors.New("meta record missing the root node") }
	return nil
}

// share
//	Snapshots the counters and free list heads. The snapshot plus the two region files is
//	everything a later engine needs to resume.
func (trieInst *RTrie) share() (RTrieSnapshot, error) {
	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	initErr := trieInst.ensureInit()
	if initErr != nil { return RTrieSnapshot{}, initErr }

	return RTrieSnapshot{
		NodeCount: trieInst.nodeCount,
		LeafCount: trieInst.leafCount,
		EmptyNodesHead: trieInst.emptyNodesHead,
		EmptyLeavesHead: trieInst.emptyLeavesHead,
	}, nil
}

// unshare
//	Resumes the engine over existing region files from a snapshot. Must be the first call on the
//	engine, fails with ErrAlreadyInitialized once the regions have been created or resumed.
//	The free list length counters are rebuilt by walking the lists.
func (trieInst *RTrie) unshare(snapshot RTrieSnapshot) error {
	trieInst.opLock.Lock()
	defer trieInst.opLock.Unlock()

	if ! trieInst.opened { return ErrClosed }
	if trieInst.initialized { return ErrAlreadyInitialized }
	if snapshot.NodeCount == 0 { return errors.New("snapshot missing the root node") }

	restoreErr := trieInst.restoreRegions(snapshot.NodeCount, snapshot.LeafCount)
	if restoreErr != nil { return restoreErr }

	trieInst.nodeCount = snapshot.NodeCount
	trieInst.leafCount = snapshot.LeafCount
	trieInst.emptyNodesHead = snapshot.EmptyNodesHead
	trieInst.emptyLeavesHead = snapshot.EmptyLeavesHead
	trieInst.emptyNodes = 0
	trieInst.emptyLeaves = 0

	if trieInst.supportsDelete {
		emptyNodes, nodesErr := trieInst.freeListLength(trieInst.emptyNodesHead, trieInst.nodes, trieInst.nodeOffset)
		if nodesErr != nil { return nodesErr }

		emptyLeaves, leavesErr := trieInst.freeListLength(trieInst.emptyLeavesHead, trieInst.leaves, trieInst.leafOffset)
		if leavesErr != nil { return leavesErr }

		trieInst.emptyNodes = emptyNodes
		trieInst.emptyLeaves = emptyLeaves
	}

	trieInst.initialized = true
	return nil
}

// restoreRegions
//	Maps both region files and rebuilds their free space counters from the slot counts.
func (trieInst *RTrie) restoreRegions(nodeCount, leafCount uint64) error {
	nodesUsed := trieInst.rootSize + (nodeCount - 1) * trieInst.nodeSize
	nodesErr := trieInst.nodes.resume(nodesUsed)
	if nodesErr != nil { return nodesErr }

	leavesErr := trieInst.leaves.resume(leafCount * trieInst.leafSize)
	if leavesErr != nil { return leavesErr }

	return nil
}
