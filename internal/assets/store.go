// Package assets reads the protocol glue script and module bundles shipped
// alongside the gateway.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Default asset locations, relative to the asset root.
const (
	GluePath      = "public/assets/native/isolated_modules/isolated-protocol.script.js"
	ModulePattern = "public/assets/libs/airgap-%s.browserify.js"
)

// Store reads assets from a file system. Plain files win over their .gz and
// .zst variants.
type Store struct {
	fsys          fs.FS
	gluePath      string
	modulePattern string
}

// New creates a store over fsys using the default layout.
func New(fsys fs.FS) *Store {
	return &Store{
		fsys:          fsys,
		gluePath:      GluePath,
		modulePattern: ModulePattern,
	}
}

// NewDir creates a store rooted at a directory on disk.
func NewDir(dir string) *Store {
	return New(os.DirFS(dir))
}

// Glue returns the shared protocol glue script.
func (s *Store) Glue() ([]byte, error) {
	return s.read(s.gluePath)
}

// Module returns the bundled source of one module.
func (s *Store) Module(name modules.ModuleName) ([]byte, error) {
	return s.read(s.ModulePath(name))
}

// ModulePath returns where the bundle of name is expected.
func (s *Store) ModulePath(name modules.ModuleName) string {
	return fmt.Sprintf(s.modulePattern, name)
}

// Has reports whether a bundle exists for name in any supported encoding.
func (s *Store) Has(name modules.ModuleName) bool {
	p := s.ModulePath(name)
	for _, candidate := range []string{p, p + ".gz", p + ".zst"} {
		if _, err := fs.Stat(s.fsys, candidate); err == nil {
			return true
		}
	}
	return false
}

func (s *Store) read(name string) ([]byte, error) {
	name = path.Clean(name)

	data, err := fs.ReadFile(s.fsys, name)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read asset %s: %w", name, err)
	}

	if data, err := s.readCompressed(name+".gz", gunzip); !errors.Is(err, fs.ErrNotExist) {
		return data, err
	}
	if data, err := s.readCompressed(name+".zst", unzstd); !errors.Is(err, fs.ErrNotExist) {
		return data, err
	}
	return nil, fmt.Errorf("asset %s: %w", name, fs.ErrNotExist)
}

func (s *Store) readCompressed(name string, decode func(io.Reader) ([]byte, error)) ([]byte, error) {
	file, err := s.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("decompress asset %s: %w", name, err)
	}
	return data, nil
}

func gunzip(r io.Reader) ([]byte, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gzReader.Close()
	return io.ReadAll(gzReader)
}

func unzstd(r io.Reader) ([]byte, error) {
	zstdReader, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zstdReader.Close()
	return io.ReadAll(zstdReader)
}
