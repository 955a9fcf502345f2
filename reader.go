package pptxjson

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// XML namespace and relationship type constants.
const (
	nsOfficeDocRels = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relTypeSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypeNotesSlide     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	relTypeDiagramDrawing = "http://schemas.microsoft.com/office/2007/relationships/diagramDrawing"
)

// maxZipEntrySize is the maximum allowed size for a single file extracted from a ZIP.
// This prevents zip bomb attacks. 50 MB is generous for any legitimate PPTX part.
const maxZipEntrySize = 50 << 20 // 50 MB

// maxZipTotalSize is the cumulative limit for the archive itself.
const maxZipTotalSize = 200 << 20 // 200 MB

// maxZipEntries is the maximum number of files allowed in a ZIP archive.
const maxZipEntries = 10000

// defaultPartCacheSize bounds the number of parsed XML parts kept per conversion.
const defaultPartCacheSize = 128

// archive gives read access to the entries of one presentation package.
// It is safe for concurrent use.
type archive struct {
	files map[string]*zip.File
	parts *lru.Cache[string, *Node]
}

// zipIndex builds a map from file name to *zip.File for O(1) lookups.
func zipIndex(zr *zip.Reader) map[string]*zip.File {
	m := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		m[f.Name] = f
	}
	return m
}

func openArchive(reader io.ReaderAt, size int64, partCacheSize int) (*archive, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid reader size: %d", size)
	}
	if size > int64(maxZipTotalSize) {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed (%d bytes)", size, maxZipTotalSize)
	}

	zr, err := zip.NewReader(reader, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	if len(zr.File) > maxZipEntries {
		return nil, fmt.Errorf("zip archive contains too many entries (%d > %d)", len(zr.File), maxZipEntries)
	}

	if partCacheSize <= 0 {
		partCacheSize = defaultPartCacheSize
	}
	parts, err := lru.New[string, *Node](partCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create part cache: %w", err)
	}

	return &archive{files: zipIndex(zr), parts: parts}, nil
}

// readEntry returns the raw bytes of a zip entry.
func (a *archive) readEntry(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, &ArchiveError{Path: name, Err: ErrPartNotFound}
	}
	if f.UncompressedSize64 > maxZipEntrySize {
		return nil, &ArchiveError{Path: name, Err: fmt.Errorf("exceeds maximum allowed size (%d bytes)", maxZipEntrySize)}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &ArchiveError{Path: name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, int64(maxZipEntrySize)+1))
	if err != nil {
		return nil, &ArchiveError{Path: name, Err: err}
	}
	if int64(len(data)) > int64(maxZipEntrySize) {
		return nil, &ArchiveError{Path: name, Err: fmt.Errorf("actual size exceeds maximum allowed size")}
	}
	return data, nil
}

// readPart returns the parsed node tree of an XML part. Parsed parts are
// shared between slides, so callers must not modify the returned tree.
func (a *archive) readPart(name string) (*Node, error) {
	if n, ok := a.parts.Get(name); ok {
		return n, nil
	}
	data, err := a.readEntry(name)
	if err != nil {
		return nil, err
	}
	n, err := parseNode(data)
	if err != nil {
		return nil, &ArchiveError{Path: name, Err: err}
	}
	a.parts.Add(name, n)
	return n, nil
}

// --- Relationship reading ---

type xmlRelForRead struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type xmlRelsForRead struct {
	XMLName       xml.Name        `xml:"Relationships"`
	Relationships []xmlRelForRead `xml:"Relationship"`
}

// relationship is one entry of a part's relationship table with its target
// already resolved to an archive path (or kept verbatim when external).
type relationship struct {
	Type     string
	Target   string
	External bool
}

// relTable maps relationship ids to targets.
type relTable map[string]relationship

// target returns the resolved target of id, or "" when unknown.
func (t relTable) target(id string) string {
	if t == nil {
		return ""
	}
	return t[id].Target
}

// firstOfType returns the first target with the given relationship type.
func (t relTable) firstOfType(relType string, order []string) string {
	for _, id := range order {
		if rel := t[id]; rel.Type == relType {
			return rel.Target
		}
	}
	return ""
}

// relsPathFor returns the relationships part that belongs to partPath,
// e.g. ppt/slides/slide1.xml -> ppt/slides/_rels/slide1.xml.rels.
func relsPathFor(partPath string) string {
	dir, file := path.Split(partPath)
	return dir + "_rels/" + file + ".rels"
}

// readRelationships reads the relationship table of partPath. A missing rels
// part yields an empty table; the returned slice keeps document order.
func (a *archive) readRelationships(partPath string) (relTable, []string, error) {
	relsPath := relsPathFor(partPath)
	data, err := a.readEntry(relsPath)
	if err != nil {
		if IsNotFound(err) {
			return relTable{}, nil, nil // relationships file may not exist
		}
		return nil, nil, err
	}

	var rels xmlRelsForRead
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, nil, fmt.Errorf("failed to parse relationships %s: %w", relsPath, err)
	}

	dir := path.Dir(partPath)
	table := make(relTable, len(rels.Relationships))
	order := make([]string, 0, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		r := relationship{Type: rel.Type}
		if strings.EqualFold(rel.TargetMode, "External") {
			r.Target = rel.Target
			r.External = true
		} else {
			r.Target = resolveRelativePath(dir, rel.Target)
		}
		table[rel.ID] = r
		order = append(order, rel.ID)
	}
	return table, order, nil
}

func resolveRelativePath(base, rel string) string {
	if strings.HasPrefix(rel, "/") {
		return strings.TrimPrefix(rel, "/")
	}

	baseParts := strings.Split(base, "/")
	relParts := strings.Split(rel, "/")

	result := make([]string, 0, len(baseParts)+len(relParts))
	for _, part := range baseParts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}

	for _, part := range relParts {
		if part == ".." {
			if len(result) > 0 {
				result = result[:len(result)-1]
			}
		} else if part != "." && part != "" {
			result = append(result, part)
		}
	}

	resolved := strings.Join(result, "/")

	// Keep resolved targets inside the package roots so a crafted target
	// cannot point outside ppt/.
	if !strings.HasPrefix(resolved, "ppt/") && !strings.HasPrefix(resolved, "docProps/") && !strings.HasPrefix(resolved, "_rels/") {
		return "ppt/" + resolved
	}

	return resolved
}
