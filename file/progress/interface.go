/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package progress provides file I/O operations with real-time progress tracking and callbacks.
//
// This package wraps standard file operations with integrated progress monitoring capabilities,
// enabling applications to track and respond to file I/O events through registered callbacks.
// It implements all standard Go I/O interfaces while adding progress tracking functionality.
//
// Key features:
//   - Progress tracking with callbacks (increment, reset, EOF)
//   - Full io.Reader, io.Writer, io.Seeker interface implementation
//   - Configurable buffer sizes for optimal performance
//   - Temporary and unique file creation
//   - File position tracking (BOF/EOF)
//   - Thread-safe atomic operations
//
// Example usage:
//
//	import (
//	    "io"
//	    "github.com/nabbar/wsio/file/progress"
//	)
//
//	// Open file with progress tracking
//	p, err := progress.Open("largefile.dat")
//	if err != nil {
//	    panic(err)
//	}
//	defer p.Close()
//
//	// Register progress callback
//	p.RegisterFctIncrement(func(bytes int64) {
//	    fmt.Printf("Progress: %d bytes\n", bytes)
//	})
//
//	// Register EOF callback
//	p.RegisterFctEOF(func() {
//	    fmt.Println("Reading complete!")
//	})
//
//	// Read file - callbacks will be invoked
//	io.Copy(io.Discard, p)
package progress

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
)

const DefaultBuffSize = 32 * 1024 // see io.copyBuffer

type FctIncrement func(size int64)
type FctReset func(size, current int64)
type FctEOF func()

type GenericIO interface {
	io.ReadCloser
	io.ReadSeeker
	io.ReadWriteCloser
	io.ReadWriteSeeker
	io.WriteCloser
	io.WriteSeeker
	io.Reader
	io.ReaderFrom
	io.ReaderAt
	io.Writer
	io.WriterAt
	io.WriterTo
	io.Seeker
	io.StringWriter
	io.Closer
	io.ByteReader
	io.ByteWriter
}

type File interface {
	// CloseDelete closes the file and then removes it by its path.
	//
	// It returns the error of the close or of the removal. On a file that is
	// already closed it does nothing and returns nil.
	CloseDelete() error

	// Path returns the path of the file.
	Path() string
	// Stat returns the file information of the open file as os.FileInfo.
	//
	// It returns an error if the file is closed or if the information cannot be retrieved.
	Stat() (os.FileInfo, error)

	// SizeBOF returns the current offset in the file, that is the number of bytes
	// between the beginning of the file (BOF) and the current position.
	//
	// It returns an error if the file is closed or if the offset cannot be read.
	SizeBOF() (size int64, err error)
	// SizeEOF returns the number of bytes from the current position to the end of the file (EOF).
	// The current position is left unchanged.
	//
	// It returns an error if the file is closed or if one of its seeks fails.
	SizeEOF() (size int64, err error)

	// Truncate changes the size of the file to the given size, then calls the
	// reset function (see RegisterFctReset) with the new file size.
	//
	// It returns an error if the file is closed or cannot be truncated.
	Truncate(size int64) error
	// Sync commits the content of the file to stable storage.
	//
	// It returns an error if the file is closed or if the sync fails.
	Sync() error
}

type TempFile interface {
	IsTemp() bool
}

type Progress interface {
	GenericIO
	File
	TempFile

	// RegisterFctIncrement registers a function to be called after each read or
	// write that transfers bytes: Read, ReadAt, Write, WriteAt, WriteString and
	// the writes done by ReadFrom. The function receives the number of bytes of
	// that single operation, not a running total. WriteTo, ReadByte and
	// WriteByte do not call it, and neither does Close.
	//
	// The function is called with the following signature:
	//
	// func(size int64)
	//
	// If the function is nil, a no-op function replaces the registered one.
	RegisterFctIncrement(fct FctIncrement)
	// RegisterFctReset registers a function to be called by Reset, which
	// Truncate and every successful Seek also trigger. The function receives the
	// maximum (the value given to Reset, or the file size when that value is
	// below 1) and the current offset in the file.
	//
	// The function is called with the following signature:
	//
	// func(size, current int64)
	//
	// If the function is nil, a no-op function replaces the registered one.
	RegisterFctReset(fct FctReset)
	// RegisterFctEOF registers a function to be called with no arguments when a
	// read returns io.EOF (Read, ReadAt, and the reads done by WriteTo), and when
	// ReadFrom reaches the end of its source.
	//
	// If the function is nil, a no-op function replaces the registered one.
	RegisterFctEOF(fct FctEOF)
	// SetBufferSize sets the size of the buffer used by ReadFrom and WriteTo.
	//
	// A size below 1024 selects DefaultBuffSize. ReadFrom uses a smaller buffer
	// when its source is an io.LimitedReader with fewer bytes left.
	SetBufferSize(size int32)
	// SetRegisterProgress registers on f the increment, reset and EOF functions
	// registered on this instance, so that f calls the same functions.
	//
	// A function that was never registered on this instance is left unchanged
	// on f. A nil f causes a panic when any function is registered on this instance.
	SetRegisterProgress(f Progress)

	// Reset calls the reset function (see RegisterFctReset) with max and the
	// current offset in the file. When max is below 1, the current file size
	// is used instead.
	//
	// Nothing is called when no reset function is registered, or when the file
	// size or offset cannot be read (for example after Close).
	Reset(max int64)
}

// New opens a file with the given name, flags and permissions and returns a Progress interface.
//
// The Progress interface is used to track the progress of the file when it is being read from or written to.
//
// The function returns an error if the file cannot be opened.
func New(name string, flags int, perm os.FileMode) (Progress, error) {
	r, e := os.OpenRoot(filepath.Dir(name))
	if e != nil {
		return nil, e
	}

	f, e := r.OpenFile(filepath.Base(name), flags, perm)
	if e != nil {
		return nil, e
	}

	return &progress{
		r:  r,
		f:  f,
		t:  false,
		b:  new(atomic.Int32),
		fi: new(atomic.Value),
		fe: new(atomic.Value),
		fr: new(atomic.Value),
	}, nil
}

// Unique creates a new unique file in the given base path with the given pattern.
//
// The pattern should follow the rules of the os.CreateTemp function.
//
// The function returns a Progress interface and an error. The Progress interface is used to track the
// progress of the file when it is being read from or written to.
//
// The function returns an error if the file cannot be created.
func Unique(basePath, pattern string) (Progress, error) {
	f, e := os.CreateTemp(basePath, pattern)

	if e != nil {
		return nil, e
	}

	return &progress{
		r:  nil,
		f:  f,
		t:  false,
		b:  new(atomic.Int32),
		fi: new(atomic.Value),
		fe: new(atomic.Value),
		fr: new(atomic.Value),
	}, nil
}

// Temp creates a new temporary file with the given pattern and returns a Progress interface.
//
// The pattern should follow the rules of the os.CreateTemp function.
//
// The function returns an error if the file cannot be created.
//
// The Progress interface is used to track the progress of the file when it is being read from or written to.
//
// The function returns an error if the progress cannot be set.
//
// The function is used to create temporary files that are automatically deleted when they are closed.
func Temp(pattern string) (Progress, error) {
	f, e := os.CreateTemp("", pattern)

	if e != nil {
		return nil, e
	}

	return &progress{
		r:  nil,
		f:  f,
		t:  true,
		b:  new(atomic.Int32),
		fi: new(atomic.Value),
		fe: new(atomic.Value),
		fr: new(atomic.Value),
	}, nil
}

// Open opens the file with the given name and returns a Progress interface.
//
// The function returns an error if the file cannot be opened.
//
// The Progress interface is used to track the progress of the file when it is being read from or written to.
//
// The function returns an error if the progress cannot be set.
//
// The function is used to open existing files. If the file does not exist, the function will return an error.
func Open(name string) (Progress, error) {
	r, e := os.OpenRoot(filepath.Dir(name))
	if e != nil {
		return nil, e
	}

	f, e := r.Open(filepath.Base(name))
	if e != nil {
		return nil, e
	}

	return &progress{
		r:  r,
		f:  f,
		t:  false,
		b:  new(atomic.Int32),
		fi: new(atomic.Value),
		fe: new(atomic.Value),
		fr: new(atomic.Value),
	}, nil
}

// Create creates a new file with the given name and returns a Progress interface.
//
// The function returns an error if the file cannot be created.
//
// The Progress interface is used to track the progress of the file when it is being read from or written to.
//
// The function returns an error if the progress cannot be set.
//
// The function is used to create new files. If the file already exists, it is truncated.
func Create(name string) (Progress, error) {
	r, e := os.OpenRoot(filepath.Dir(name))
	if e != nil {
		return nil, e
	}

	f, e := r.Create(filepath.Base(name))
	if e != nil {
		return nil, e
	}

	return &progress{
		r:  r,
		f:  f,
		t:  false,
		b:  new(atomic.Int32),
		fi: new(atomic.Value),
		fe: new(atomic.Value),
		fr: new(atomic.Value),
	}, nil
}
