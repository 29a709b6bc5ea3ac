// Package mmap provides read-only memory-mapped files.
//
// A Mapping lets a memory collection serve records straight out of the
// page cache: the data file is mapped once and every Get returns a slice of
// the mapping without copying.
//
//	m, err := mmap.Open("records.dat")
//	if err != nil { ... }
//	defer m.Close()
//
//	region, _ := m.Region(int(header.StartPosition), int(header.Length))
//	region.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix: mmap(2) with madvise(2) hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// Mapping and Region are safe for concurrent reads. Close is idempotent, but
// callers must ensure no slice obtained from Bytes is used after Close.
package mmap
