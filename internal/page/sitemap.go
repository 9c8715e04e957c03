package page

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap renders the blog's sitemap.xml: the listing first, then one entry
// per post slug.
func (a *Assembler) Sitemap(ctx context.Context) ([]byte, error) {
	slugs, err := a.src.AllSlugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("all slugs: %w", err)
	}
	lastMod := a.now().UTC().Format("2006-01-02")

	set := urlSet{Xmlns: sitemapNS}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        a.cfg.SiteURL + "/blog",
		LastMod:    lastMod,
		ChangeFreq: "weekly",
		Priority:   "0.8",
	})
	for _, s := range slugs {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        a.cfg.SiteURL + "/blog/" + s,
			LastMod:    lastMod,
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
