package c4c

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// Created is the outcome of a POST. The identifiers are filled only when
// the call succeeded and the body could be read.
type Created struct {
	Result
	URI         string
	ObjectID    string
	ID          string
	ContactUUID string
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Properties atomProperties `xml:"content>properties"`
}

type atomProperties struct {
	ObjectID    string `xml:"ObjectID"`
	ID          string `xml:"ID"`
	ContactUUID string `xml:"ContactUUID"`
}

type createdJSON struct {
	Metadata    Metadata `json:"__metadata"`
	ObjectID    string   `json:"ObjectID"`
	ID          string   `json:"ID"`
	ContactUUID string   `json:"ContactUUID"`
}

var quotedKey = regexp.MustCompile(`'([^']*)'`)

// ObjectIDFromURI returns the key between the quotes of an entity URI,
// e.g. MarketingPermissionCollection('ABC') gives ABC.
func ObjectIDFromURI(uri string) string {
	m := quotedKey.FindStringSubmatch(uri)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// parseCreated reads a create response. C4C answers with an Atom entry
// unless JSON was negotiated.
func parseCreated(contentType string, body []byte) (Created, error) {
	if strings.Contains(contentType, "json") {
		var env entityEnvelope[createdJSON]
		if err := json.Unmarshal(body, &env); err != nil {
			return Created{}, err
		}
		r := env.D.Results
		return finishCreated(Created{URI: r.Metadata.URI, ObjectID: r.ObjectID, ID: r.ID, ContactUUID: r.ContactUUID}), nil
	}

	var entry atomEntry
	if err := xml.Unmarshal(body, &entry); err != nil {
		return Created{}, err
	}
	return finishCreated(Created{
		URI:         strings.TrimSpace(entry.ID),
		ObjectID:    entry.Properties.ObjectID,
		ID:          entry.Properties.ID,
		ContactUUID: entry.Properties.ContactUUID,
	}), nil
}

func finishCreated(c Created) Created {
	if c.ObjectID == "" {
		c.ObjectID = ObjectIDFromURI(c.URI)
	}
	return c
}
