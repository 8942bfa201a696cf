package rtrie

import "errors"
import "os"
import "sync"


// RTrieOpts initialize the RTrie engine
type RTrieOpts struct {
	// Filepath: the path to the directory where the region files live
	Filepath string
	// FileName: the base name for the region files. <FileName>.nodes, <FileName>.leaves and <FileName>.meta are derived from it
	FileName string
	// PointerSize: the width in bytes of every pointer stored in the regions. One of 2, 4, 5, 6 or 8
	PointerSize int
	// Aridity: the number of child slots per non-root internal node. One of 2, 4, 16 or 256
	Aridity int
	// RootAridity: the number of child slots of the root node. A power of two of at least Aridity, defaults to Aridity when 0
	RootAridity int
	// KeySize: the fixed byte length of every key. At least 1
	KeySize int
	// ValueSize: the fixed byte length of every value. 0 turns the store into a set
	ValueSize int
}

// RTrieSnapshot is the O(1) header record that lets an engine resume over an existing region pair.
type RTrieSnapshot struct {
	// NodeCount: the number of allocated node slots, including the root
	NodeCount uint64
	// LeafCount: the number of allocated leaf slots
	LeafCount uint64
	// EmptyNodesHead: the head of the node free list, or the load mask sentinel when the list is empty
	EmptyNodesHead uint64
	// EmptyLeavesHead: the head of the leaf free list, or the load mask sentinel when the list is empty
	EmptyLeavesHead uint64
}

// KeyValuePair is one stored entry. Key and Value are copies and stay valid across region growth.
type KeyValuePair struct {
	// Key: the fixed length key in byte array representation
	Key []byte
	// Value: the fixed length value associated with the key
	Value []byte
}

// RTrieMemoryStats reports pool occupancy and region sizes.
type RTrieMemoryStats struct {
	// NodesAllocated: node slots handed out over the lifetime of the store, including the root and freed slots
	NodesAllocated uint64
	// LeavesAllocated: leaf slots handed out over the lifetime of the store, including freed slots
	LeavesAllocated uint64
	// NodesInUse: allocated node slots minus the ones threaded on the free list
	NodesInUse uint64
	// LeavesInUse: allocated leaf slots minus the ones threaded on the free list
	LeavesInUse uint64
	// NodesRegionSize: the byte size of the nodes region file
	NodesRegionSize uint64
	// LeavesRegionSize: the byte size of the leaves region file
	LeavesRegionSize uint64
}

// RTrie is the shared trie engine under both facades: two linearly grown byte regions addressed
// through a single tagged pointer space. All public operations live on RTrieEnumeration and RTrieMap.
type RTrie struct {
	// OpLock: public operations run under a single exclusive lock, the engine has no finer grained locking
	opLock sync.Mutex
	// Filepath: path to the directory holding the region files
	filepath string
	// FileName: base name the region file names derive from
	fileName string
	// Opened: flag indicating if the backing files are open
	opened bool
	// Initialized: flag indicating if the regions have been created or resumed. Initialization is lazy
	initialized bool
	// SupportsDelete: true on the Map facade, enables the free lists
	supportsDelete bool

	pointerSize uint64
	aridity uint64
	rootAridity uint64
	keySize uint64
	valueSize uint64

	// BitStep: log2 of the aridity, the number of key bits consumed per trie level below the root
	bitStep uint64
	// RootBits: log2 of the root aridity, the number of key bits the root consumes
	rootBits uint64
	nodeSize uint64
	rootSize uint64
	leafSize uint64
	// LoadMask: masks a full 64 bit load down to the configured pointer width. Doubles as the free list sentinel
	loadMask uint64
	// MaxAddress: the capacity of each pool, half the pointer space since the low bit selects the pool
	maxAddress uint64

	nodes *rtrieRegion
	leaves *rtrieRegion
	metaFile *os.File

	nodeCount uint64
	leafCount uint64
	emptyNodesHead uint64
	emptyLeavesHead uint64
	// EmptyNodes/EmptyLeaves: free list lengths, read back from the meta file on reopen and rebuilt by walking the lists on unshare
	emptyNodes uint64
	emptyLeaves uint64
}


var ErrLimitExceeded = errors.New("pointer address space exhausted for pool")
var ErrKeySize = errors.New("key length does not match configured key size")
var ErrValueSize = errors.New("value length does not match configured value size")
var ErrBounds = errors.New("slice bounds out of range")
var ErrAlreadyInitialized = errors.New("unshare must precede any other operation")
var ErrClosed = errors.New("engine is closed")
var ErrConfiguration = errors.New("invalid configuration")


const (
	// PageSize: regions grow in pages of this many bytes
	PageSize = 65536
	// MaxEntrySize: upper bound on key size plus value size
	MaxEntrySize = 65536
	// NullPointer is the null child reference
	nullPointer = uint64(0)
	// RootPointer addresses the root node, which occupies the very first offset of the nodes region
	rootPointer = uint64(0)
	// Suffixes for the three backing files
	NodesFileSuffix = ".nodes"
	LeavesFileSuffix = ".leaves"
	MetaFileSuffix = ".meta"
	// Offsets of the header fields in the serialized meta record
	MetaNodeCountIdx = 0
	MetaLeafCountIdx = 8
	MetaEmptyNodesHeadIdx = 16
	MetaEmptyLeavesHeadIdx = 24
	MetaEmptyNodesIdx = 32
	MetaEmptyLeavesIdx = 40
	// MetaSize: the serialized header record size
	MetaSize = 48
)

const (
	// RDONLY: maps the memory read-only. Attempts to write to the MMap object will result in undefined behavior.
	RDONLY = 0
	// RDWR: maps the memory as read-write. Writes to the MMap object will update the underlying file.
	RDWR = 1 << iota
	// COPY: maps the memory as copy-on-write. Writes to the MMap object will affect memory, but the underlying file will remain unchanged.
	COPY
	// EXEC: marks the mapped memory as executable.
	EXEC
)

const (
	// If the ANON flag is set, the mapped memory will not be backed by a file.
	ANON = 1 << iota
)

/*
	Layout explained:

	Pointer (pointerSize bytes, little endian):
		0 -> null child
		low bit 1 -> leaf reference, leaf index is value >> 1
		low bit 0, value != 0 -> internal node reference, node index is value >> 1

	Nodes region:
		0 Root node - rootAridity * pointerSize bytes
		then packed internal nodes, each aridity * pointerSize bytes, in allocation order.
		Non root node i starts at rootSize + (i - 1) * nodeSize, so node index 0 stays reserved as null.
		At least 8 - pointerSize bytes of tail padding follow the last pointer so a full
		64 bit load of it never crosses the end of the mapping.

	Leaves region:
		packed leaves of keySize + valueSize bytes each, in allocation order.
		A leaf stores its key immediately followed by its value. On the Map facade a freed
		leaf threads the next free index through its first pointerSize bytes, which is why
		keySize + valueSize must be at least pointerSize.

	Meta file (48 bytes, little endian):
		0 NodeCount - 8 bytes
		8 LeafCount - 8 bytes
		16 EmptyNodesHead - 8 bytes
		24 EmptyLeavesHead - 8 bytes
		32 EmptyNodes - 8 bytes
		40 EmptyLeaves - 8 bytes
*/
