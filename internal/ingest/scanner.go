package ingest

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/booruoss/booru/internal/core/library"
)

// ScannedFile is one file discovered under a library root, identified and
// ready for comparison against the existing snapshot.
type ScannedFile struct {
	RelativePath string
	AbsolutePath string
	Size         int64
	ModTime      time.Time
	Identity     FileIdentity
	HasIdentity  bool
}

// semaphore bounds concurrent directory reads, mirroring a simple counting
// semaphore built on a buffered channel.
type semaphore chan struct{}

func newSemaphore(n int) semaphore {
	if n < 1 {
		n = 1
	}
	return make(semaphore, n)
}

func (s semaphore) acquire() { s <- struct{}{} }
func (s semaphore) release() { <-s }

// Scan walks root using up to `workers` concurrent directory readers
// (fan-out), skipping any relative path matching an ignored prefix, and
// returns every regular file whose extension is a supported media type.
// It is the filesystem-traversal half of the library synchronizer (§4.2
// steps 1 and 3) and records each file's device/inode identity; content
// hashing is left to the caller.
func Scan(root string, lib *library.Library, workers int) (files []ScannedFile, ignored int, errs []error) {
	sem := newSemaphore(workers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var results []ScannedFile
	var ignoredCount int

	record := func(f ScannedFile) {
		mu.Lock()
		results = append(results, f)
		mu.Unlock()
	}
	recordErr := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}
	recordIgnored := func() {
		mu.Lock()
		ignoredCount++
		mu.Unlock()
	}

	var walk func(dir string)
	walk = func(dir string) {
		defer wg.Done()

		sem.acquire()
		entries, err := readDir(dir)
		sem.release()
		if err != nil {
			recordErr(err)
			return
		}

		var subdirs []string
		for _, entry := range entries {
			fullPath := filepath.Join(dir, entry.Name())
			relPath, err := filepath.Rel(root, fullPath)
			if err != nil {
				recordErr(err)
				continue
			}
			relPath = filepath.ToSlash(relPath)

			if entry.IsDir() {
				if lib.IsIgnored(relPath) {
					recordIgnored()
					continue
				}
				subdirs = append(subdirs, fullPath)
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}
			if lib.IsIgnored(relPath) {
				recordIgnored()
				continue
			}
			if !IsSupportedMedia(relPath) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				recordErr(err)
				continue
			}
			identity, hasIdentity := identityOf(info)
			record(ScannedFile{
				RelativePath: relPath,
				AbsolutePath: fullPath,
				Size:         info.Size(),
				ModTime:      info.ModTime(),
				Identity:     identity,
				HasIdentity:  hasIdentity,
			})
		}

		for _, sub := range subdirs {
			wg.Add(1)
			go walk(sub)
		}
	}

	wg.Add(1)
	go walk(root)
	wg.Wait()

	return results, ignoredCount, errs
}

// readDir reads directory entries in batches of batchSize and returns the
// complete listing.
func readDir(dir string) ([]os.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	const batchSize = 1000
	var all []os.DirEntry
	for {
		batch, err := f.ReadDir(batchSize)
		all = append(all, batch...)
		if err != nil {
			if err == io.EOF {
				break
			}
			return all, err
		}
		if len(batch) == 0 {
			break
		}
	}
	return all, nil
}
