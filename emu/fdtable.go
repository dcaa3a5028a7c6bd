package emu

import (
	"io"
	"os"
	"sync"
	"time"
)

// fileDescriptor is one entry in a FDTable. fd 0-2 carry a reader/writer
// instead of a hostFile so kPrintf (and any future read trap) can share
// the same table slot the CLI wired its stdio streams into, rather than
// reopening /dev/stdout by path.
type fileDescriptor struct {
	hostFile *os.File
	reader   io.Reader
	writer   io.Writer
	path     string
	isOpen   bool
}

// FDTable maps descriptors to host streams and files: fd 0-2 are the
// stdio streams given to NewFDTable, and Open adds real host files.
// kPrintf (fd 1) is the only host trap that uses it; there are no
// guest open/close/read/write traps.
type FDTable struct {
	fds    map[uint64]*fileDescriptor
	nextFD uint64
	mu     sync.Mutex
}

// NewFDTable returns a table with stdin/stdout/stderr pre-opened against
// the given streams (typically os.Stdin/os.Stdout/os.Stderr, or the
// Simulator's configured WithStdout/WithStderr writers).
func NewFDTable(stdin io.Reader, stdout, stderr io.Writer) *FDTable {
	t := &FDTable{
		fds:    make(map[uint64]*fileDescriptor),
		nextFD: 3,
	}
	t.fds[0] = &fileDescriptor{path: "stdin", isOpen: true, reader: stdin}
	t.fds[1] = &fileDescriptor{path: "stdout", isOpen: true, writer: stdout}
	t.fds[2] = &fileDescriptor{path: "stderr", isOpen: true, writer: stderr}
	return t
}

func (t *FDTable) Open(path string, flags int, mode os.FileMode) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	hostFile, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return 0, err
	}
	fd := t.nextFD
	t.nextFD++
	t.fds[fd] = &fileDescriptor{hostFile: hostFile, path: path, isOpen: true}
	return fd, nil
}

func (t *FDTable) Close(fd uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.fds[fd]
	if !exists || !entry.isOpen {
		return os.ErrInvalid
	}
	if fd <= 2 {
		entry.isOpen = false
		return nil
	}
	if entry.hostFile != nil {
		if err := entry.hostFile.Close(); err != nil {
			return err
		}
	}
	entry.hostFile = nil
	entry.isOpen = false
	return nil
}

func (t *FDTable) IsOpen(fd uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, exists := t.fds[fd]
	return exists && entry.isOpen
}

func (t *FDTable) Read(fd uint64, buf []byte) (int, error) {
	t.mu.Lock()
	entry, exists := t.fds[fd]
	t.mu.Unlock()
	if !exists || !entry.isOpen {
		return 0, os.ErrInvalid
	}
	if entry.hostFile != nil {
		return entry.hostFile.Read(buf)
	}
	if entry.reader != nil {
		return entry.reader.Read(buf)
	}
	return 0, os.ErrInvalid
}

func (t *FDTable) Write(fd uint64, buf []byte) (int, error) {
	t.mu.Lock()
	entry, exists := t.fds[fd]
	t.mu.Unlock()
	if !exists || !entry.isOpen {
		return 0, os.ErrInvalid
	}
	if entry.hostFile != nil {
		return entry.hostFile.Write(buf)
	}
	if entry.writer != nil {
		return entry.writer.Write(buf)
	}
	return 0, os.ErrInvalid
}

func (t *FDTable) Stat(fd uint64) (os.FileInfo, error) {
	t.mu.Lock()
	entry, exists := t.fds[fd]
	t.mu.Unlock()
	if !exists || !entry.isOpen {
		return nil, os.ErrInvalid
	}
	if fd <= 2 {
		return &stdioFileInfo{name: entry.path}, nil
	}
	if entry.hostFile == nil {
		return nil, os.ErrInvalid
	}
	return entry.hostFile.Stat()
}

type stdioFileInfo struct{ name string }

func (f *stdioFileInfo) Name() string       { return f.name }
func (f *stdioFileInfo) Size() int64        { return 0 }
func (f *stdioFileInfo) Mode() os.FileMode  { return os.ModeCharDevice | 0666 }
func (f *stdioFileInfo) ModTime() time.Time { return time.Time{} }
func (f *stdioFileInfo) IsDir() bool        { return false }
func (f *stdioFileInfo) Sys() interface{}   { return nil }
