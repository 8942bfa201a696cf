package rtrie

import "errors"


//============================================= RTrie Node Pool


// newInternalNode
//	Hands out a node pointer, preferring the free list before bump allocating at the tail of the
//	nodes region. Returns ErrLimitExceeded once every addressable node index is taken.
func (trieInst *RTrie) newInternalNode() (uint64, error) {
	if trieInst.supportsDelete {
		index, ok, popErr := trieInst.popFreeNode()
		if popErr != nil { return 0, popErr }
		if ok { return nodePointer(index), nil }
	}

	if trieInst.nodeCount == trieInst.maxAddress { return 0, ErrLimitExceeded }

	allocErr := trieInst.nodes.allocate(trieInst.nodeSize)
	if allocErr != nil { return 0, allocErr }

	index := trieInst.nodeCount
	trieInst.nodeCount++

	return nodePointer(index), nil
}

// newLeaf
//	Hands out a leaf pointer with the key written into the leaf's storage. The value bytes are
//	left for the caller, who always writes them right after.
func (trieInst *RTrie) newLeaf(key []byte) (uint64, error) {
	if trieInst.supportsDelete {
		index, ok, popErr := trieInst.popFreeLeaf()
		if popErr != nil { return 0, popErr }

		if ok {
			writeErr := trieInst.leaves.storeBlob(trieInst.leafOffset(index), key)
			if writeErr != nil { return 0, writeErr }

			return leafPointer(index), nil
		}
	}

	if trieInst.leafCount == trieInst.maxAddress { return 0, ErrLimitExceeded }

	allocErr := trieInst.leaves.allocate(trieInst.leafSize)
	if allocErr != nil { return 0, allocErr }

	index := trieInst.leafCount
	trieInst.leafCount++

	writeErr := trieInst.leaves.storeBlob(trieInst.leafOffset(index), key)
	if writeErr != nil { return 0, writeErr }

	return leafPointer(index), nil
}


//============================================= RTrie Free Lists


// pushFreeNode
//	Threads a freed node onto the LIFO node free list through slot 0 of its own storage.
func (trieInst *RTrie) pushFreeNode(index uint64) error {
	storeErr := trieInst.storePointer(trieInst.nodes, trieInst.nodeOffset(index), trieInst.emptyNodesHead)
	if storeErr != nil { return storeErr }

	trieInst.emptyNodesHead = index
	trieInst.emptyNodes++

	return nil
}

// popFreeNode
//	Pops the most recently freed node and zeroes its slots before handing it out.
func (trieInst *RTrie) popFreeNode() (uint64, bool, error) {
	if trieInst.emptyNodesHead == trieInst.loadMask { return 0, false, nil }

	index := trieInst.emptyNodesHead
	link, loadErr := trieInst.loadPointer(trieInst.nodes, trieInst.nodeOffset(index))
	if loadErr != nil { return 0, false, loadErr }

	trieInst.emptyNodesHead = link
	trieInst.emptyNodes--

	zeroErr := trieInst.zeroNode(index)
	if zeroErr != nil { return 0, false, zeroErr }

	return index, true, nil
}

// pushFreeLeaf
//	Threads a freed leaf onto the LIFO leaf free list through the first pointerSize bytes of its
//	own storage. The configuration guarantees a leaf is large enough to hold the link.
func (trieInst *RTrie) pushFreeLeaf(index uint64) error {
	storeErr := trieInst.storePointer(trieInst.leaves, trieInst.leafOffset(index), trieInst.emptyLeavesHead)
	if storeErr != nil { return storeErr }

	trieInst.emptyLeavesHead = index
	trieInst.emptyLeaves++

	return nil
}

// popFreeLeaf
//	Pops the most recently freed leaf. The stale key and value bytes are overwritten by the
//	caller, so no zeroing is needed.
func (trieInst *RTrie) popFreeLeaf() (uint64, bool, error) {
	if trieInst.emptyLeavesHead == trieInst.loadMask { return 0, false, nil }

	index := trieInst.emptyLeavesHead
	link, loadErr := trieInst.loadPointer(trieInst.leaves, trieInst.leafOffset(index))
	if loadErr != nil { return 0, false, loadErr }

	trieInst.emptyLeavesHead = link
	trieInst.emptyLeaves--

	return index, true, nil
}

// freeListLength
//	Walks a free list to rebuild its length counter when resuming from a snapshot.
func (trieInst *RTrie) freeListLength(head uint64, reg *rtrieRegion, offsetOf func(uint64) uint64) (uint64, error) {
	var count uint64

	current := head
	for current != trieInst.loadMask {
		count++
		if count > trieInst.maxAddress { return 0, errors.New("free list cycle detected") }

		link, loadErr := trieInst.loadPointer(reg, offsetOf(current))
		if loadErr != nil { return 0, loadErr }

		current = link
	}

	return count, nil
}
