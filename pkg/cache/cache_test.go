package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/masktower/pkg/errors"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit || data != nil {
		t.Errorf("Get() = %q, %v, want miss", data, hit)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatal("Get() on empty cache should miss")
	}
	if err := c.Set(ctx, "k", []byte("gds"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "gds" {
		t.Fatalf("Get() = %q, %v, %v, want gds hit", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl entry should hit")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get() = %v, %v, want quiet miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	keep := filepath.Join(dir, "README")
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get() after Clear should miss")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("Clear() removed a foreign file: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash()) = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	opts := ArtifactKeyOpts{Format: "gds", Version: "v1"}

	gds := k.ArtifactKey("h", opts)
	if !strings.HasPrefix(gds, "masktower:artifact:gds:") {
		t.Errorf("ArtifactKey() = %s", gds)
	}
	if gds != k.ArtifactKey("h", opts) {
		t.Error("ArtifactKey should be deterministic")
	}

	tests := []struct {
		name string
		key  string
	}{
		{"format", k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg", Version: "v1"})},
		{"version", k.ArtifactKey("h", ArtifactKeyOpts{Format: "gds", Version: "v2"})},
		{"strict", k.ArtifactKey("h", ArtifactKeyOpts{Format: "gds", Version: "v1", StrictNames: true})},
		{"layout", k.ArtifactKey("other", opts)},
		{"summary", k.SummaryKey("h", opts)},
	}
	for _, tt := range tests {
		if tt.key == gds {
			t.Errorf("changing %s should change the key", tt.name)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "run7:")
	key := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "pdf"})
	if !strings.HasPrefix(key, "masktower:run7:artifact:pdf:") {
		t.Errorf("ArtifactKey() = %s", key)
	}
	plain := NewDefaultKeyer().SummaryKey("h", ArtifactKeyOpts{})
	if got := scoped.SummaryKey("h", ArtifactKeyOpts{}); got != "masktower:run7:"+strings.TrimPrefix(plain, "masktower:") {
		t.Errorf("SummaryKey() = %s", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, "", t.TempDir())
	if err != nil {
		t.Fatalf("Open(\"\") error = %v", err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("Open(\"\") = %T, want *FileCache", c)
	}

	c, err = Open(ctx, "none", "")
	if err != nil {
		t.Fatalf("Open(none) error = %v", err)
	}
	if _, ok := c.(*NullCache); !ok {
		t.Errorf("Open(none) = %T, want *NullCache", c)
	}

	_, err = Open(ctx, "memcached://localhost", "")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open(memcached) error = %v, want INVALID_INPUT", err)
	}
}

func TestRedisOptions(t *testing.T) {
	opts, err := RedisOptions("redis://:secret@cache.local:6380/2")
	if err != nil {
		t.Fatalf("RedisOptions() error = %v", err)
	}
	if opts.Addr != "cache.local:6380" || opts.DB != 2 || opts.Password != "secret" {
		t.Errorf("RedisOptions() = %s db=%d", opts.Addr, opts.DB)
	}

	if _, err := RedisOptions("redis://host/notanumber"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("RedisOptions(bad db) error = %v", err)
	}
}

func TestMongoDatabase(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"mongodb://localhost:27017", "masktower"},
		{"mongodb://localhost:27017/", "masktower"},
		{"mongodb://user:pw@db1,db2/masks?replicaSet=rs0", "masks"},
	}
	for _, tt := range tests {
		got, err := MongoDatabase(tt.url)
		if err != nil {
			t.Errorf("MongoDatabase(%q) error = %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("MongoDatabase(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
