package pptxjson

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strconv"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// Scope selects the relationship table used to resolve media references.
type Scope string

const (
	ScopeSlide     Scope = "slide"
	ScopeSlideBg   Scope = "slideBg"
	ScopeLayoutBg  Scope = "slideLayoutBg"
	ScopeMasterBg  Scope = "slideMasterBg"
	ScopeThemeBg   Scope = "themeBg"
	ScopeDiagramBg Scope = "diagramBg"
)

// PictureFill is a resolved a:blipFill.
type PictureFill struct {
	PicBase64 string  `json:"picBase64"`
	Opacity   float64 `json:"opacity"`
}

// inlineMedia is a cached media entry.
type inlineMedia struct {
	URI string
	// Width and Height are the intrinsic pixel size for decodable raster
	// images and 0 otherwise.
	Width, Height int
}

// mediaCache memoizes inlined media by archive path for one conversion.
// Concurrent requests for the same path share a single archive read.
type mediaCache struct {
	mu      sync.RWMutex
	entries map[string]inlineMedia
	group   singleflight.Group
	metrics *Metrics
}

func newMediaCache(metrics *Metrics) *mediaCache {
	return &mediaCache{entries: make(map[string]inlineMedia), metrics: metrics}
}

// load returns the inline form of the entry at name, reading it on first use.
func (c *mediaCache) load(a *archive, name string) (inlineMedia, error) {
	c.mu.RLock()
	m, ok := c.entries[name]
	c.mu.RUnlock()
	if ok {
		c.metrics.recordImageCacheHit()
		return m, nil
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.RLock()
		m, ok := c.entries[name]
		c.mu.RUnlock()
		if ok {
			return m, nil
		}
		data, err := a.readEntry(name)
		if err != nil {
			return inlineMedia{}, err
		}
		m = encodeMedia(name, data)
		c.mu.Lock()
		c.entries[name] = m
		c.mu.Unlock()
		c.metrics.recordImageLoad()
		return m, nil
	})
	if err != nil {
		return inlineMedia{}, err
	}
	return v.(inlineMedia), nil
}

func encodeMedia(name string, data []byte) inlineMedia {
	m := inlineMedia{
		URI: "data:" + guessMimeType(name) + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		m.Width, m.Height = cfg.Width, cfg.Height
	}
	return m
}

func guessMimeType(name string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "svg":
		return "image/svg+xml"
	case "wmf":
		return "image/x-wmf"
	case "emf":
		return "image/x-emf"
	case "tiff", "tif":
		return "image/tiff"
	case "webp":
		return "image/webp"
	case "wdp":
		return "image/vnd.ms-photo"
	case "mp4":
		return "video/mp4"
	case "webm":
		return "video/webm"
	case "ogg":
		return "video/ogg"
	case "avi":
		return "video/avi"
	case "mpg":
		return "video/mpg"
	case "wmv":
		return "video/wmv"
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	default:
		return "image/png"
	}
}

// relsFor returns the relationship table that media references in scope
// resolve against.
func (s *SlideContext) relsFor(scope Scope) relTable {
	switch scope {
	case ScopeLayoutBg:
		return s.layoutRels
	case ScopeMasterBg:
		return s.masterRels
	case ScopeThemeBg:
		if s.themeData == nil {
			return nil
		}
		return s.themeData.rels
	case ScopeDiagramBg:
		return s.diagramRels
	default:
		return s.slideRels
	}
}

// loadMedia resolves a relationship id in scope to inline media. It reports
// false when the id has no usable target: unknown id, external link, or a
// target that is itself an XML part.
func (s *SlideContext) loadMedia(rid string, scope Scope) (inlineMedia, bool, error) {
	rel, ok := s.relsFor(scope)[rid]
	if !ok || rel.Target == "" || rel.External {
		return inlineMedia{}, false, nil
	}
	if strings.EqualFold(path.Ext(rel.Target), ".xml") {
		return inlineMedia{}, false, nil
	}
	m, err := s.conv.media.load(s.conv.archive, rel.Target)
	if err != nil {
		return inlineMedia{}, false, err
	}
	return m, true, nil
}

// pictureFill resolves a:blipFill. A nil result with a nil error means the
// blip has no image.
func (s *SlideContext) pictureFill(blipFill *Node, scope Scope) (*PictureFill, error) {
	blip := blipFill.Child("blip")
	m, ok, err := s.loadMedia(blip.Attr("r:embed"), scope)
	if err != nil || !ok {
		return nil, err
	}
	return &PictureFill{PicBase64: m.URI, Opacity: blipOpacity(blip)}, nil
}

// blipOpacity reads a:alphaModFix/@amt. Absent or malformed values mean
// fully opaque.
func blipOpacity(blip *Node) float64 {
	amt, ok := blip.Child("alphaModFix").LookupAttr("amt")
	if !ok || amt == "" {
		return 1
	}
	v, err := strconv.ParseInt(amt, 10, 64)
	if err != nil {
		return 1
	}
	return clamp01(float64(v) / modifierScale)
}
