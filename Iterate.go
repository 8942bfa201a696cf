package rtrie


//============================================= RTrie Iterate


// iterFrame holds one level of the traversal: the node being scanned and the next child index to inspect.
type iterFrame struct {
	node uint64
	idx int
}

// RTrieIterator is a lazy traversal over every stored key value pair in unsigned big endian key
// order, ascending or descending. Child indices correspond to consecutive key prefixes, which is
// what makes the slot order the byte lexicographic order.
//	The frame stack is preallocated once since the trie depth is bounded by the key length in bit
//	steps. Mutating the engine while an iterator is in flight is undefined.
type RTrieIterator struct {
	trieInst *RTrie
	frames []iterFrame
	reverse bool
}

// newIterator
//	Builds an iterator positioned before the first (or last, for reverse) leaf.
func (trieInst *RTrie) newIterator(reverse bool) *RTrieIterator {
	maxFrames := 1 + (trieInst.keySize * 8 - trieInst.rootBits) / trieInst.bitStep
	frames := make([]iterFrame, 0, maxFrames)

	start := 0
	if reverse { start = int(trieInst.rootAridity) - 1 }
	frames = append(frames, iterFrame{ node: rootPointer, idx: start })

	return &RTrieIterator{ trieInst: trieInst, frames: frames, reverse: reverse }
}

// Next
//	Yields the next key value pair, or nil once the traversal is done. The returned slices are
//	copies and stay valid across later region growth.
func (iter *RTrieIterator) Next() *KeyValuePair {
	trieInst := iter.trieInst

	for len(iter.frames) > 0 {
		top := len(iter.frames) - 1
		frame := &iter.frames[top]

		fanout := int(trieInst.aridity)
		if top == 0 { fanout = int(trieInst.rootAridity) }

		if frame.idx < 0 || frame.idx >= fanout {
			iter.frames = iter.frames[:top]
			continue
		}

		child, loadErr := trieInst.loadPointer(trieInst.nodes, trieInst.slotOffset(frame.node, uint64(frame.idx)))
		if loadErr != nil { return nil }

		if iter.reverse { frame.idx-- } else { frame.idx++ }

		switch {
			case child == nullPointer:
			case isLeafPointer(child):
				pair, pairErr := trieInst.leafPair(pointerIndex(child))
				if pairErr != nil { return nil }
				return pair
			default:
				start := 0
				if iter.reverse { start = int(trieInst.aridity) - 1 }
				iter.frames = append(iter.frames, iterFrame{ node: child, idx: start })
		}
	}

	return nil
}

// collectPairs
//	Materializes a full traversal into a slice.
func (trieInst *RTrie) collectPairs(reverse bool) []*KeyValuePair {
	var pairs []*KeyValuePair

	iter := trieInst.newIterator(reverse)
	for pair := iter.Next(); pair != nil; pair = iter.Next() {
		pairs = append(pairs, pair)
	}

	return pairs
}
