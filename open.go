package pptxjson

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const presentationPath = "ppt/presentation.xml"

// Options configures a conversion.
type Options struct {
	// RenderMode selects how shapes with an explicit "no fill" are reported.
	RenderMode RenderMode
	// LayoutElements includes the decorative shapes of each slide's layout
	// and master in Slide.LayoutElements.
	LayoutElements bool
	// Concurrency is the number of slides resolved in parallel.
	Concurrency int
	// PartCacheSize bounds the number of parsed XML parts kept in memory.
	PartCacheSize int
	// Logger receives conversion diagnostics. nil discards them.
	Logger *slog.Logger
	// Metrics records conversion telemetry. nil disables it.
	Metrics *Metrics
}

// DefaultOptions returns the default conversion options.
func DefaultOptions() *Options {
	return &Options{
		RenderMode:     RenderHTML,
		LayoutElements: true,
		Concurrency:    1,
		PartCacheSize:  defaultPartCacheSize,
	}
}

func (o *Options) withDefaults() Options {
	if o == nil {
		o = DefaultOptions()
	}
	out := *o
	if out.Concurrency <= 0 {
		out.Concurrency = 1
	}
	if out.PartCacheSize <= 0 {
		out.PartCacheSize = defaultPartCacheSize
	}
	if out.Logger == nil {
		out.Logger = discardLogger()
	}
	return out
}

// converter is the state shared by every slide of one conversion.
type converter struct {
	archive *archive
	media   *mediaCache
	opts    Options
	log     *slog.Logger

	// presentationTheme is the theme referenced from presentation.xml, used
	// when a master has none of its own.
	presentationTheme string

	themesMu sync.Mutex
	themes   map[string]*Theme
}

// theme returns the parsed theme at themePath, loading it once per
// conversion. A theme that cannot be read resolves to nil.
func (c *converter) theme(themePath string) *Theme {
	c.themesMu.Lock()
	defer c.themesMu.Unlock()
	if t, ok := c.themes[themePath]; ok {
		return t
	}
	t, err := loadTheme(c.archive, themePath)
	if err != nil {
		c.partFailed(themePath, err)
		t = nil
	}
	c.themes[themePath] = t
	return t
}

// ConvertFile converts the package at path.
func ConvertFile(ctx context.Context, path string, opts *Options) (*Presentation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return Convert(ctx, f, info.Size(), opts)
}

// Convert converts a package read from r. It fails when the archive or
// presentation.xml cannot be read, when a slide part is missing or
// malformed, or when ctx is cancelled. Failures confined to one element
// (an unreadable image, a missing relationship target) degrade that
// element and are logged instead.
func Convert(ctx context.Context, r io.ReaderAt, size int64, opts *Options) (*Presentation, error) {
	o := opts.withDefaults()
	start := time.Now()
	pres, err := convert(ctx, r, size, o)
	if err != nil {
		o.Metrics.recordConversionError()
		o.Logger.Error("conversion failed", "error", err)
		return nil, err
	}
	o.Logger.Info("converted presentation", "slides", len(pres.Slides), "duration", time.Since(start))
	return pres, nil
}

func convert(ctx context.Context, r io.ReaderAt, size int64, o Options) (*Presentation, error) {
	a, err := openArchive(r, size, o.PartCacheSize)
	if err != nil {
		return nil, err
	}
	root, err := a.readPart(presentationPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read presentation.xml: %w", err)
	}
	rels, order, err := a.readRelationships(presentationPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read presentation relationships: %w", err)
	}

	c := &converter{
		archive:           a,
		media:             newMediaCache(o.Metrics),
		opts:              o,
		log:               o.Logger,
		presentationTheme: rels.firstOfType(relTypeTheme, order),
		themes:            make(map[string]*Theme),
	}

	pres := &Presentation{
		Size:        slideSize(root),
		ThemeColors: []string{},
		Properties:  c.readDocumentProperties(),
	}
	if c.presentationTheme != "" {
		if colors := c.theme(c.presentationTheme).AccentColors(); colors != nil {
			pres.ThemeColors = colors
		}
	}

	paths := slidePaths(root, rels, a)
	pres.Slides = make([]Slide, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Concurrency)
	for i, slidePath := range paths {
		i, slidePath := i, slidePath
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			sc, err := c.loadSlideContext(slidePath)
			if err != nil {
				c.log.Warn("slide degraded", "slide", slidePath, "index", i, "error", err)
				o.Metrics.recordElementFailure(ScopeSlide)
				pres.Slides[i] = emptySlide()
				return nil
			}
			pres.Slides[i] = *sc.resolve()
			o.Metrics.recordSlide(time.Since(started))
			c.log.Debug("converted slide", "slide", slidePath, "index", i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pres, nil
}

// slidePaths lists the slide parts in presentation order: p:sldIdLst
// resolved through the presentation relationships. Packages without a
// usable list fall back to the slide parts in the archive, ordered by the
// number in their name.
func slidePaths(root *Node, rels relTable, a *archive) []string {
	var paths []string
	for _, id := range root.Path("sldIdLst").ChildrenNamed("sldId") {
		rel, ok := rels[id.Attr("r:id")]
		if !ok || rel.Type != relTypeSlide || rel.External {
			continue
		}
		paths = append(paths, rel.Target)
	}
	if len(paths) > 0 {
		return paths
	}

	type numbered struct {
		path string
		n    int
	}
	var found []numbered
	for name := range a.files {
		m := slidePartPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		found = append(found, numbered{name, n})
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].n != found[j].n {
			return found[i].n < found[j].n
		}
		return path.Base(found[i].path) < path.Base(found[j].path)
	})
	for _, f := range found {
		paths = append(paths, f.path)
	}
	return paths
}

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
