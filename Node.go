package rtrie


//============================================= RTrie Node Layout


// slotOffset
//	Computes the absolute offset of a child slot inside the nodes region.
//	Slot 0 of the root occupies the very first offset, non root node i starts at
//	rootSize + (i - 1) * nodeSize so node index 0 stays reserved as null.
func (trieInst *RTrie) slotOffset(nodePtr, idx uint64) uint64 {
	if nodePtr == rootPointer { return idx * trieInst.pointerSize }
	return (trieInst.rootSize - trieInst.nodeSize) + pointerIndex(nodePtr) * trieInst.nodeSize + idx * trieInst.pointerSize
}

// nodeOffset
//	The start of a non root node's storage, which is also its slot 0 and its free list link field.
func (trieInst *RTrie) nodeOffset(index uint64) uint64 {
	return trieInst.rootSize + (index - 1) * trieInst.nodeSize
}

// leafOffset
//	The start of a leaf's storage: keySize key bytes immediately followed by valueSize value bytes.
func (trieInst *RTrie) leafOffset(index uint64) uint64 {
	return index * trieInst.leafSize
}

// leafKey
//	A window into the leaf's key bytes. Valid until the leaves region grows.
func (trieInst *RTrie) leafKey(index uint64) ([]byte, error) {
	return trieInst.leaves.loadBlob(trieInst.leafOffset(index), trieInst.keySize)
}

// leafValue
//	A window into the leaf's value bytes. Valid until the leaves region grows.
func (trieInst *RTrie) leafValue(index uint64) ([]byte, error) {
	return trieInst.leaves.loadBlob(trieInst.leafOffset(index) + trieInst.keySize, trieInst.valueSize)
}

// writeLeafValue
//	Overwrites the value bytes of a leaf in place.
func (trieInst *RTrie) writeLeafValue(index uint64, value []byte) error {
	return trieInst.leaves.storeBlob(trieInst.leafOffset(index) + trieInst.keySize, value)
}

// leafPair
//	Copies a leaf's key and value out of the region into a KeyValuePair.
func (trieInst *RTrie) leafPair(index uint64) (*KeyValuePair, error) {
	blob, blobErr := trieInst.leaves.loadBlob(trieInst.leafOffset(index), trieInst.leafSize)
	if blobErr != nil { return nil, blobErr }

	key := append(make([]byte, 0, trieInst.keySize), blob[:trieInst.keySize]...)
	value := append(make([]byte, 0, trieInst.valueSize), blob[trieInst.keySize:]...)

	return &KeyValuePair{ Key: key, Value: value }, nil
}

// zeroNode
//	Clears every child slot of a non root node. Nodes handed back from the free list must be
//	zeroed before reuse since collapse inspects all slots.
func (trieInst *RTrie) zeroNode(index uint64) error {
	return trieInst.nodes.storeBlob(trieInst.nodeOffset(index), make([]byte, trieInst.nodeSize))
}
