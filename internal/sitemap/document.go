package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name  `xml:"urlset"`
	XMLNS   string    `xml:"xmlns,attr"`
	URLs    []urlElem `xml:"url"`
}

type urlElem struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority"`
}

type sitemapIndex struct {
	XMLName  xml.Name      `xml:"sitemapindex"`
	XMLNS    string        `xml:"xmlns,attr"`
	Sitemaps []sitemapElem `xml:"sitemap"`
}

type sitemapElem struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Entry is one URL of a leaf sitemap.
type Entry struct {
	Loc      string
	LastMod  time.Time
	Priority float64
}

func formatLastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatPriority(p float64) string {
	return fmt.Sprintf("%.1f", p)
}

// changeFreq derives the change frequency from the age of the last change.
func changeFreq(lastMod, now time.Time) string {
	if lastMod.IsZero() {
		return "monthly"
	}
	age := now.Sub(lastMod)
	switch {
	case age <= 7*24*time.Hour:
		return "daily"
	case age <= 30*24*time.Hour:
		return "weekly"
	case age <= 365*24*time.Hour:
		return "monthly"
	default:
		return "yearly"
	}
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func renderURLSet(entries []Entry, now time.Time) ([]byte, error) {
	doc := urlSet{XMLNS: sitemapNS, URLs: make([]urlElem, 0, len(entries))}
	for _, e := range entries {
		doc.URLs = append(doc.URLs, urlElem{
			Loc:        e.Loc,
			LastMod:    formatLastMod(e.LastMod),
			ChangeFreq: changeFreq(e.LastMod, now),
			Priority:   formatPriority(e.Priority),
		})
	}
	return encode(doc)
}

func renderIndex(leaves []leaf) ([]byte, error) {
	doc := sitemapIndex{XMLNS: sitemapNS, Sitemaps: make([]sitemapElem, 0, len(leaves))}
	for _, l := range leaves {
		doc.Sitemaps = append(doc.Sitemaps, sitemapElem{Loc: l.loc, LastMod: formatLastMod(l.lastMod)})
	}
	return encode(doc)
}
