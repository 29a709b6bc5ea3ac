// Package fs provides the read-only filesystem abstraction used to open data
// files, plus fault injection for tests.
//
//   - [File]: an open data file (positioned reads, stat, close)
//   - [FileSystem]: opens and stats data files
//   - [LocalFS]: production implementation on the os package
//   - [FaultyFS]: wraps a FileSystem and fails reads on demand
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.Open(path)
//
// Tests inject FaultyFS to make the file collection observe I/O errors:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("records.dat", fs.Fault{FailAfterReads: 2})
//
// Filesystem calls take no context.Context. Local reads are not interruptible
// at the syscall level; remote sources go through blobstore instead.
package fs
