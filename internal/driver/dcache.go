package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"

	"shadeweave/internal/codegen"
	"shadeweave/internal/provenance"
	"shadeweave/internal/shader"
	"shadeweave/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 2

// Digest is a SHA-256 sum.
type Digest [32]byte

// DigestOf hashes data.
func DigestOf(data []byte) Digest {
	return sha256.Sum256(data)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// DiskCache keeps the last generated document of each scene on disk, keyed by
// the scene's absolute path. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// FragmentRecord is the cached form of one authored fragment.
type FragmentRecord struct {
	ID   provenance.ID
	Name string
	Text string
}

// DiskPayload is one cached generation pass.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	ScenePath string
	// SceneHash is the digest of the scene file the document was generated from.
	SceneHash Digest
	// GeneratorHash is the codegen.Generator fingerprint the document was laid
	// out with.
	GeneratorHash string

	Code      string
	Index     []provenance.Entry
	Fragments []FragmentRecord

	Vertex   string
	Uniforms []shader.Uniform
	Textures []string

	GeneratedAt time.Time
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache returns a cache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// KeyFor returns the cache key of the scene at path.
func KeyFor(path string) Digest {
	if abs, err := source.AbsolutePath(path); err == nil {
		path = abs
	}
	return DigestOf([]byte(path))
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "docs", key.String()+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// atomic replace
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. Payloads written by
// another schema version are reported as missing.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, errors.Wrap(err, "decode cached document")
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// PayloadFromOutput converts a generation pass into its cached form.
func PayloadFromOutput(path string, sceneHash Digest, out *codegen.Output) *DiskPayload {
	p := &DiskPayload{
		Schema:        diskCacheSchemaVersion,
		ScenePath:     path,
		SceneHash:     sceneHash,
		GeneratorHash: out.Generator,
		Code:          out.Code,
		Index:         out.Index.Entries(),
		GeneratedAt:   time.Now().UTC(),
	}
	if out.Program != nil {
		p.Vertex = out.Program.Vertex
		p.Uniforms = out.Program.Uniforms
		p.Textures = out.Program.Textures
	}
	for _, id := range out.Fragments.IDs() {
		f, _ := out.Fragments.Get(id)
		p.Fragments = append(p.Fragments, FragmentRecord{ID: id, Name: f.Name, Text: f.Text})
	}
	return p
}

// Output rebuilds the generation pass from a cached payload.
func (p *DiskPayload) Output() (*codegen.Output, error) {
	index, err := provenance.NewIndex(p.Index)
	if err != nil {
		return nil, errors.Wrap(err, "cached provenance index")
	}
	frags := source.NewFragmentSet(p.ScenePath)
	for _, f := range p.Fragments {
		frags.Add(f.ID, f.Name, f.Text)
	}
	return &codegen.Output{
		Code:  p.Code,
		Index: index,
		Program: &shader.Program{
			Vertex:   p.Vertex,
			Fragment: p.Code,
			Uniforms: p.Uniforms,
			Textures: p.Textures,
		},
		Fragments: frags,
		Generator: p.GeneratorHash,
	}, nil
}
