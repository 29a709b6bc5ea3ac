package fs

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected fault error")

// Fault defines specific failure behavior.
type Fault struct {
	// FailAfterReads lets this many reads succeed, then fails every read.
	// -1 disables read faults.
	FailAfterReads int64
	// FailAtOffset fails reads that touch this byte offset. -1 disables.
	FailAtOffset int64
	// ShortReads truncates every successful ReadAt by one byte.
	ShortReads  bool
	FailOnOpen  bool
	FailOnClose bool
	Err         error
}

// NoFault is a Fault that never triggers.
var NoFault = Fault{FailAfterReads: -1, FailAtOffset: -1}

// FaultyFS is a FileSystem wrapper that can inject errors.
type FaultyFS struct {
	FS      FileSystem
	mu      sync.Mutex
	rules   map[string]Fault // filename substring -> Fault
	Default Fault
	reads   atomic.Int64
}

// NewFaultyFS creates a new FaultyFS wrapping fs (or Default if nil).
func NewFaultyFS(fs FileSystem) *FaultyFS {
	if fs == nil {
		fs = Default
	}
	return &FaultyFS{
		FS:      fs,
		rules:   make(map[string]Fault),
		Default: NoFault,
	}
}

// AddRule adds a fault injection rule for files whose name contains pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// Reads returns the number of reads attempted through files opened by f.
func (f *FaultyFS) Reads() int64 {
	return f.reads.Load()
}

func (f *FaultyFS) faultFor(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()

	fault := f.Default
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
		}
	}
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	return fault
}

func (f *FaultyFS) Open(name string) (File, error) {
	fault := f.faultFor(name)
	if fault.FailOnOpen {
		return nil, fault.Err
	}
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fs: f, fault: fault}, nil
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	return f.FS.Stat(name)
}

type faultyFile struct {
	File
	fs    *FaultyFS
	fault Fault
	reads atomic.Int64
}

func (ff *faultyFile) check(off int64, n int) error {
	ff.fs.reads.Add(1)
	count := ff.reads.Add(1)
	if ff.fault.FailAfterReads >= 0 && count > ff.fault.FailAfterReads {
		return ff.fault.Err
	}
	if ff.fault.FailAtOffset >= 0 && off >= 0 &&
		ff.fault.FailAtOffset >= off && ff.fault.FailAtOffset < off+int64(n) {
		return ff.fault.Err
	}
	return nil
}

func (ff *faultyFile) Read(p []byte) (int, error) {
	pos, err := ff.File.Seek(0, io.SeekCurrent)
	if err != nil {
		pos = -1
	}
	if err := ff.check(pos, len(p)); err != nil {
		return 0, err
	}
	return ff.File.Read(p)
}

func (ff *faultyFile) ReadAt(p []byte, off int64) (int, error) {
	if err := ff.check(off, len(p)); err != nil {
		return 0, err
	}
	if ff.fault.ShortReads && len(p) > 0 {
		n, err := ff.File.ReadAt(p[:len(p)-1], off)
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return n, err
	}
	return ff.File.ReadAt(p, off)
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		_ = ff.File.Close()
		return ff.fault.Err
	}
	return ff.File.Close()
}
