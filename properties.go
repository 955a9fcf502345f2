package pptxjson

import (
	"strings"
	"time"
)

const (
	corePropertiesPath = "docProps/core.xml"
	appPropertiesPath  = "docProps/app.xml"
)

// DocumentProperties holds the standard document properties of a package.
type DocumentProperties struct {
	Creator        string    `json:"creator,omitempty"`
	LastModifiedBy string    `json:"lastModifiedBy,omitempty"`
	Created        time.Time `json:"created,omitzero"`
	Modified       time.Time `json:"modified,omitzero"`
	Title          string    `json:"title,omitempty"`
	Description    string    `json:"description,omitempty"`
	Subject        string    `json:"subject,omitempty"`
	Keywords       string    `json:"keywords,omitempty"`
	Category       string    `json:"category,omitempty"`
	Company        string    `json:"company,omitempty"`
	Revision       string    `json:"revision,omitempty"`
	Application    string    `json:"application,omitempty"`
}

// readDocumentProperties reads docProps/core.xml and docProps/app.xml. It
// returns nil when neither part exists; unparseable dates are left zero.
func (c *converter) readDocumentProperties() *DocumentProperties {
	core, coreErr := c.archive.readPart(corePropertiesPath)
	if coreErr != nil {
		c.partFailed(corePropertiesPath, coreErr)
	}
	app, appErr := c.archive.readPart(appPropertiesPath)
	if appErr != nil {
		c.partFailed(appPropertiesPath, appErr)
	}
	if core == nil && app == nil {
		return nil
	}

	text := func(n *Node, name string) string {
		return strings.TrimSpace(n.Child(name).Text)
	}
	return &DocumentProperties{
		Creator:        text(core, "creator"),
		LastModifiedBy: text(core, "lastModifiedBy"),
		Created:        parseW3CDTF(text(core, "created")),
		Modified:       parseW3CDTF(text(core, "modified")),
		Title:          text(core, "title"),
		Description:    text(core, "description"),
		Subject:        text(core, "subject"),
		Keywords:       text(core, "keywords"),
		Category:       text(core, "category"),
		Revision:       text(core, "revision"),
		Company:        text(app, "Company"),
		Application:    text(app, "Application"),
	}
}

// parseW3CDTF parses the dcterms date format used by core properties.
func parseW3CDTF(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05Z", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
