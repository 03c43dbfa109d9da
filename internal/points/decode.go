package points

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// record mirrors one entry of the directory API's globe payload. Older
// payloads used university/research_field/latitude/longitude, newer ones
// organization, category and lat/lng; both are accepted.
type record struct {
	ID           json.RawMessage `json:"id"`
	Name         string          `json:"name"`
	University   string          `json:"university"`
	Organization string          `json:"organization"`
	Field        string          `json:"field"`
	Research     string          `json:"research_field"`
	Category     string          `json:"category"`
	City         string          `json:"city"`
	Country      string          `json:"country"`
	Lat          *float64        `json:"lat"`
	Lng          *float64        `json:"lng"`
	Latitude     *float64        `json:"latitude"`
	Longitude    *float64        `json:"longitude"`
}

// DecodeRecords parses a JSON array of point records. Entries that cannot
// be decoded or fail validation are skipped and counted in dropped; a JSON
// null yields an empty set. Only a document that is not a JSON array at
// all is an error.
func DecodeRecords(r io.Reader) (pts []GeoPoint, dropped int, err error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read records: %w", err)
	}
	return ParseRecords(body)
}

// ParseRecords is DecodeRecords for an in-memory document.
func ParseRecords(body []byte) (pts []GeoPoint, dropped int, err error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, 0, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode records: %w", err)
	}

	pts = make([]GeoPoint, 0, len(raw))
	for _, item := range raw {
		var rec record
		if err := json.Unmarshal(item, &rec); err != nil {
			dropped++
			continue
		}
		p, ok := rec.toPoint()
		if !ok {
			dropped++
			continue
		}
		pts = append(pts, p)
	}

	clean, dups := Sanitize(pts)
	return clean, dropped + dups, nil
}

func (rec record) toPoint() (GeoPoint, bool) {
	id := rawID(rec.ID)
	lat := firstSet(rec.Lat, rec.Latitude)
	lng := firstSet(rec.Lng, rec.Longitude)
	if id == "" || lat == nil || lng == nil {
		return GeoPoint{}, false
	}

	return GeoPoint{
		ID:           id,
		Lat:          *lat,
		Lng:          *lng,
		Name:         strings.TrimSpace(rec.Name),
		Field:        strings.TrimSpace(firstNonEmpty(rec.Field, rec.Research, rec.Category)),
		Organization: strings.TrimSpace(firstNonEmpty(rec.Organization, rec.University)),
		City:         strings.TrimSpace(rec.City),
		Country:      strings.TrimSpace(rec.Country),
	}, true
}

// rawID accepts string or numeric identifiers.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

func firstSet(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
