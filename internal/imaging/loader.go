package imaging

import (
	"bytes"
	"container/list"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"
	"sync"
	"time"
)

// ErrDecode is returned when card image bytes cannot be decoded.
var ErrDecode = errors.New("cannot decode card image")

// DefaultCacheEntries is the number of decoded images NewImageCache keeps.
const DefaultCacheEntries = 32

// ImageCache provides thread-safe caching of decoded card images keyed by
// file path.
//
// The MCP server is long-lived and clients often re-run extraction on the
// same scan after adjusting options, so decoded images are kept until they
// fall out of the least-recently-used window. An entry is only reused while
// the file's size and modification time match what was decoded. Cached
// images are never mutated; preprocessing always produces a new image.
type ImageCache struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List // front is most recently used
	entries    map[string]*list.Element
}

type cacheEntry struct {
	path    string
	size    int64
	modTime time.Time
	img     image.Image
}

// NewImageCache creates an empty cache holding up to DefaultCacheEntries
// images.
func NewImageCache() *ImageCache {
	return NewImageCacheSize(DefaultCacheEntries)
}

// NewImageCacheSize creates an empty cache holding up to maxEntries images.
// Values below 1 are treated as 1.
func NewImageCacheSize(maxEntries int) *ImageCache {
	return &ImageCache{
		maxEntries: max(maxEntries, 1),
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// Load returns the cached image for path, decoding it from disk on a miss or
// when the file changed since it was cached.
//
// The exact path string is the key; a relative and an absolute path to the
// same file are cached separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card image: %w", err)
	}

	c.mu.Lock()
	if el, ok := c.entries[path]; ok {
		e := el.Value.(*cacheEntry)
		if e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
			c.order.MoveToFront(el)
			c.mu.Unlock()
			return e.img, nil
		}
	}
	c.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card image: %w", err)
	}
	img, _, err := Decode(data)
	if err != nil {
		c.Evict(path)
		return nil, err
	}

	c.store(&cacheEntry{path: path, size: info.Size(), modTime: info.ModTime(), img: img})
	return img, nil
}

func (c *ImageCache) store(e *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[e.path]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return
	}
	c.entries[e.path] = c.order.PushFront(e)
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).path)
	}
}

// Len reports how many images are cached.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
	c.mu.Unlock()
}

// Evict removes the image cached for path, if any.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	if el, ok := c.entries[path]; ok {
		c.order.Remove(el)
		delete(c.entries, path)
	}
	c.mu.Unlock()
}

// Decode decodes PNG, JPEG or GIF bytes and returns the image with its
// format name.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty input", ErrDecode)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// DecodeBase64 decodes a base64 image payload. A data-URL prefix such as
// "data:image/png;base64," is accepted and ignored.
func DecodeBase64(payload string) (image.Image, error) {
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrDecode, err)
	}
	img, _, err := Decode(data)
	return img, err
}
