package rtrie

import "os"

import "golang.org/x/sys/unix"


//============================================= RTrie MMap


// MMap
//	The byte array representation of a memory mapped region file in memory.
type MMap []byte

// Map
//	Memory maps the entire file with the requested protection mode and flags.
//	A zero length file maps to an empty buffer since mmap rejects zero length mappings.
func Map(file *os.File, prot, flags int) (MMap, error) {
	stat, statErr := file.Stat()
	if statErr != nil { return nil, statErr }

	size := stat.Size()
	if size == 0 { return MMap{}, nil }

	mmapProt := unix.PROT_READ
	if prot & RDWR != 0 { mmapProt |= unix.PROT_WRITE }
	if prot & EXEC != 0 { mmapProt |= unix.PROT_EXEC }

	mmapFlags := unix.MAP_SHARED
	if prot & COPY != 0 { mmapFlags = unix.MAP_PRIVATE }
	if flags & ANON != 0 { mmapFlags |= unix.MAP_ANON }

	mapped, mmapErr := unix.Mmap(int(file.Fd()), 0, int(size), mmapProt, mmapFlags)
	if mmapErr != nil { return nil, mmapErr }

	return MMap(mapped), nil
}

// Flush
//	Synchronously flushes the mapped buffer to the underlying file.
func (mMap MMap) Flush() error {
	return unix.Msync(mMap, unix.MS_SYNC)
}

// Unmap
//	Unmaps the buffer from RAM.
func (mMap MMap) Unmap() error {
	return unix.Munmap(mMap)
}
