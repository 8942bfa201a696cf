package rtrie

import "encoding/binary"
import "errors"
import "os"


//============================================= RTrie IO Utils


// rtrieRegion owns one of the two linearly grown byte regions.
//	The region is a memory mapped file grown in 64KiB pages with a free space counter for the
//	unused bytes at the tail. Object offsets are derived by the engine from its slot counts, the
//	region only accounts for reserved bytes and keeps the mapping fresh across growth.
type rtrieRegion struct {
	file *os.File
	data MMap
	size uint64
	// FreeSpace: unused bytes at the tail of the region
	freeSpace uint64
	// TailPad: bytes kept reserved past the last allocation so a full 64 bit load of the last pointer stays in bounds
	tailPad uint64
}

// newRegion
//	Wraps an opened region file. Nothing is mapped until the first growth or resume.
func newRegion(file *os.File, tailPad uint64) *rtrieRegion {
	return &rtrieRegion{ file: file, data: MMap{}, tailPad: tailPad }
}

// mMap
//	Helper to memory map the region file into the buffer.
func (reg *rtrieRegion) mMap() error {
	mapped, mmapErr := Map(reg.file, RDWR, 0)
	if mmapErr != nil { return mmapErr }

	reg.data = mapped
	return nil
}

// munmap
//	Unmaps the region buffer from RAM.
func (reg *rtrieRegion) munmap() error {
	if len(reg.data) == 0 { return nil }

	unmapErr := reg.data.Unmap()
	if unmapErr != nil { return unmapErr }

	reg.data = MMap{}
	return nil
}

// grow
//	Extends the region file by the given number of pages and remaps it.
//	Bytes gained through truncation are zeroed by the filesystem, which is what guarantees
//	fresh nodes come with null child slots. Growth fails hard on truncate or mmap failure.
func (reg *rtrieRegion) grow(pages uint64) error {
	if len(reg.data) > 0 {
		flushErr := reg.file.Sync()
		if flushErr != nil { return flushErr }

		unmapErr := reg.munmap()
		if unmapErr != nil { return unmapErr }
	}

	reg.size += pages * PageSize
	truncateErr := reg.file.Truncate(int64(reg.size))
	if truncateErr != nil { return truncateErr }

	mmapErr := reg.mMap()
	if mmapErr != nil { return mmapErr }

	reg.freeSpace += pages * PageSize
	return nil
}

// allocate
//	Reserves n bytes at the tail of the region, growing a page at a time until they fit.
//	The tail padding stays reserved past every allocation.
func (reg *rtrieRegion) allocate(n uint64) error {
	for reg.freeSpace < n + reg.tailPad {
		growErr := reg.grow(1)
		if growErr != nil { return growErr }
	}

	reg.freeSpace -= n
	return nil
}

// resume
//	Maps an already initialized region file and rebuilds the free space counter from the used byte count.
func (reg *rtrieRegion) resume(used uint64) error {
	stat, statErr := reg.file.Stat()
	if statErr != nil { return statErr }

	reg.size = uint64(stat.Size())
	if reg.size < used + reg.tailPad { return errors.New("region file smaller than its used byte count") }

	mmapErr := reg.mMap()
	if mmapErr != nil { return mmapErr }

	reg.freeSpace = reg.size - used
	return nil
}

// flush
//	Synchronously flushes the whole mapping to disk.
func (reg *rtrieRegion) flush() error {
	if len(reg.data) == 0 { return nil }
	return reg.data.Flush()
}

// loadUint64
//	Loads a full 64 bit little endian word at the offset.
func (reg *rtrieRegion) loadUint64(offset uint64) (v uint64, err error) {
	defer func() {
		r := recover()
		if r != nil {
			v = 0
			err = errors.New("error reading word from region")
		}
	}()

	v = binary.LittleEndian.Uint64(reg.data[offset:offset + 8])
	return v, nil
}

// loadBlob
//	Returns a window into the mapped region. The window is only valid until the next growth,
//	callers that hold bytes across an allocation must copy them first.
func (reg *rtrieRegion) loadBlob(offset, n uint64) (blob []byte, err error) {
	defer func() {
		r := recover()
		if r != nil {
			blob = nil
			err = errors.New("error reading blob from region")
		}
	}()

	blob = reg.data[offset:offset + n]
	return blob, nil
}

// storeBlob
//	Copies bytes into the mapped region at the offset.
func (reg *rtrieRegion) storeBlob(offset uint64, blob []byte) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = errors.New("error writing blob to region")
		}
	}()

	copy(reg.data[offset:offset + uint64(len(blob))], blob)
	return nil
}
