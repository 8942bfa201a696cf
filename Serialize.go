package rtrie

import "encoding/binary"
import "errors"


//============================================= RTrie Serialization


// serializePointer
//	Packs a pointer into its little endian fixed width representation.
//	Each supported width has a specialized encoder so exactly pointerSize bytes are written,
//	the 5 and 6 byte widths have no direct encoding/binary helper.
func serializePointer(buf []byte, v, width uint64) {
	switch width {
		case 2:
			binary.LittleEndian.PutUint16(buf, uint16(v))
		case 4:
			binary.LittleEndian.PutUint32(buf, uint32(v))
		case 5:
			buf[0] = byte(v)
			buf[1] = byte(v >> 8)
			buf[2] = byte(v >> 16)
			buf[3] = byte(v >> 24)
			buf[4] = byte(v >> 32)
		case 6:
			binary.LittleEndian.PutUint32(buf, uint32(v))
			binary.LittleEndian.PutUint16(buf[4:], uint16(v >> 32))
		case 8:
			binary.LittleEndian.PutUint64(buf, v)
	}
}

// storePointer
//	Writes a pointer value into a region at the given offset.
func (trieInst *RTrie) storePointer(reg *rtrieRegion, offset, v uint64) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = errors.New("error writing pointer to region")
		}
	}()

	serializePointer(reg.data[offset:offset + trieInst.pointerSize], v, trieInst.pointerSize)
	return nil
}

// loadPointer
//	Loads a full 64 bit little endian word at the offset and masks it down to the configured
//	pointer width. The tail padding kept by every region makes the 8 byte load of the last
//	pointer safe.
func (trieInst *RTrie) loadPointer(reg *rtrieRegion, offset uint64) (uint64, error) {
	word, loadErr := reg.loadUint64(offset)
	if loadErr != nil { return 0, loadErr }

	return word & trieInst.loadMask, nil
}


//============================================= Tagged pointer helpers


// leafPointer
//	Tags a leaf index with the leaf selector bit.
func leafPointer(index uint64) uint64 {
	return (index << 1) | 1
}

// nodePointer
//	Tags an internal node index. Node indices are 1 based so the packed value is never 0.
func nodePointer(index uint64) uint64 {
	return index << 1
}

// isLeafPointer
//	The low bit of a non null pointer selects the pool, 1 for leaves.
func isLeafPointer(ptr uint64) bool {
	return ptr & 1 == 1
}

// pointerIndex
//	Strips the pool selector bit, leaving the index into the pool.
func pointerIndex(ptr uint64) uint64 {
	return ptr >> 1
}
