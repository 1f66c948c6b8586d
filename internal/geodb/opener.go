package geodb

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Files opens a fresh handle on every call. Closing the handle releases the
// underlying mapping.
type Files struct{}

func (Files) Open(path string) (Handle, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Pool shares one read-only reader per path between callers. maxminddb
// readers are safe for concurrent lookups. When the file on disk changes
// (size or modification time) the next Open loads the new file; the old
// reader is closed once its last handle is released.
type Pool struct {
	mu      sync.Mutex
	readers map[string]*pooled
	logger  *zap.Logger
}

type pooled struct {
	db      *DB
	modTime time.Time
	size    int64
	refs    int
	retired bool
	closed  bool
}

func NewPool(logger *zap.Logger) *Pool {
	return &Pool{
		readers: make(map[string]*pooled),
		logger:  logger,
	}
}

// Open returns a handle on the shared reader for path. The file must still
// exist at call time even when a reader is already loaded.
func (p *Pool) Open(path string) (Handle, error) {
	info, err := stat(path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.readers[path]
	if ok && (!entry.modTime.Equal(info.ModTime()) || entry.size != info.Size()) {
		p.logger.Info("Geo database changed on disk, reloading", zap.String("path", path))
		delete(p.readers, path)
		p.retire(path, entry)
		ok = false
	}

	if !ok {
		db, err := Open(path)
		if err != nil {
			return nil, err
		}
		entry = &pooled{db: db, modTime: info.ModTime(), size: info.Size()}
		p.readers[path] = entry

		p.logger.Info("Loaded geo database", zap.String("path", path))
	}

	entry.refs++
	return &shared{DB: entry.db, pool: p, entry: entry}, nil
}

// Close releases every loaded reader, including ones still held by callers.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for path, entry := range p.readers {
		delete(p.readers, path)
		entry.retired = true
		if err := p.closeEntry(path, entry); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// retire marks entry as replaced and closes it when nobody holds it.
// Callers hold p.mu.
func (p *Pool) retire(path string, entry *pooled) {
	entry.retired = true
	if entry.refs == 0 {
		p.closeEntry(path, entry)
	}
}

func (p *Pool) closeEntry(path string, entry *pooled) error {
	if entry.closed {
		return nil
	}
	entry.closed = true

	err := entry.db.Close()
	if err != nil {
		p.logger.Error("failed to close geo database",
			zap.String("path", path),
			zap.Error(err))
	}
	return err
}

func (p *Pool) release(entry *pooled) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry.refs--
	if entry.retired && entry.refs == 0 {
		p.closeEntry(entry.db.Path(), entry)
	}
}

// shared is a pooled handle. Close gives the reader back to the pool.
type shared struct {
	*DB
	pool     *Pool
	entry    *pooled
	released sync.Once
}

func (s *shared) Close() error {
	s.released.Do(func() {
		s.pool.release(s.entry)
	})
	return nil
}
