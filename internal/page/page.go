// Package page assembles the blog's HTML pages from content, the rich text
// renderer, the outline and the CTA helpers.
package page

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/caseblog/internal/content"
	"github.com/dgallion1/caseblog/internal/cta"
	"github.com/dgallion1/caseblog/internal/portabletext"
	"github.com/dgallion1/caseblog/internal/questionnaire"
	"github.com/dgallion1/caseblog/internal/richtext"
	"github.com/dgallion1/caseblog/internal/toc"
)

// ErrNotFound is returned when the requested post does not exist.
var ErrNotFound = content.ErrNotFound

const (
	relatedLimit = 4
	recentFetch  = 6
	recentLimit  = 5
	cardChips    = 2

	defaultSiteURL  = "https://casevalue.law"
	defaultSiteName = "CaseValue.law"
)

// Config configures an Assembler.
type Config struct {
	SiteURL  string // absolute, no trailing slash
	SiteName string
	Render   richtext.Options
}

// Meta is the head metadata of a page.
type Meta struct {
	Title         string
	Description   string
	Keywords      []string
	Canonical     string
	OGTitle       string
	OGDescription string
	OGType        string
	OGImage       string
	PublishedTime string
	SiteName      string
	SiteURL       string
	Year          int
}

// KeywordList joins keywords for the meta tag.
func (m Meta) KeywordList() string { return strings.Join(m.Keywords, ", ") }

// Chip is a formatted category label.
type Chip struct {
	Slug   string
	Name   string
	Active bool
}

// Card is a post summary in a listing.
type Card struct {
	Slug           string
	Title          string
	Excerpt        string
	Author         string
	Date           string
	ImageURL       string
	ImageAlt       string
	Chips          []Chip
	DataCategories string
}

// Body is a rendered post body with its CTA and outline.
type Body struct {
	Before           template.HTML
	InlineCTA        template.HTML
	After            template.HTML
	Card             template.HTML
	TOC              template.HTML
	Headings         toc.Outline
	SplitIndex       int
	QuestionnaireURL string
	CategoryName     string
}

// HTML is the full body with the inline CTA between the halves.
func (b *Body) HTML() template.HTML {
	return b.Before + b.InlineCTA + b.After
}

type breadcrumbItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

// Breadcrumb is schema.org BreadcrumbList structured data.
type Breadcrumb struct {
	Context string           `json:"@context"`
	Type    string           `json:"@type"`
	Items   []breadcrumbItem `json:"itemListElement"`
}

// PostPage is everything the post template needs.
type PostPage struct {
	Meta       Meta
	Post       portabletext.Post
	Date       string
	HeroURL    string
	HeroAlt    string
	Chips      []Chip
	Body       *Body
	Related    []Card
	Recent     []Card
	Breadcrumb Breadcrumb
}

// IndexPage is the blog listing.
type IndexPage struct {
	Meta       Meta
	Categories []Chip // "all" first
	Active     string
	Cards      []Card
}

// Assembler builds pages from a content source.
type Assembler struct {
	src  content.Source
	cfg  Config
	log  *slog.Logger
	tmpl *templates
	now  func() time.Time
}

// New creates an Assembler.
func New(src content.Source, cfg Config, log *slog.Logger) (*Assembler, error) {
	if cfg.SiteURL == "" {
		cfg.SiteURL = defaultSiteURL
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	if cfg.SiteName == "" {
		cfg.SiteName = defaultSiteName
	}
	if log == nil {
		log = slog.Default()
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Assembler{src: src, cfg: cfg, log: log, tmpl: tmpl, now: time.Now}, nil
}

// RenderBody renders a post body split around the inline CTA, along with
// its outline and the sidebar card.
func (a *Assembler) RenderBody(doc portabletext.Document, categories []string) (*Body, error) {
	r := richtext.New(a.cfg.Render)
	before, after := cta.Split(doc)

	url := questionnaire.ResolveURL(categories)
	name, _ := questionnaire.DisplayName(categories)
	outline := toc.ExtractHeadings(doc)

	b := &Body{
		Headings:         outline,
		SplitIndex:       len(before),
		QuestionnaireURL: url,
		CategoryName:     name,
	}
	var err error
	if b.Before, err = serialize(r.Render(before)...); err != nil {
		return nil, err
	}
	if b.After, err = serialize(r.Render(after)...); err != nil {
		return nil, err
	}
	if b.InlineCTA, err = serialize(cta.RenderInline(cta.Inline{URL: url, CategoryName: name})); err != nil {
		return nil, err
	}
	if b.Card, err = serialize(cta.RenderCard(url)); err != nil {
		return nil, err
	}
	if nav := toc.RenderNav(outline); nav != nil {
		if b.TOC, err = serialize(nav); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Post assembles the page for slug. Related and recent posts are fetched
// concurrently; if either fetch fails the page fails.
func (a *Assembler) Post(ctx context.Context, slug string) (*PostPage, error) {
	post, err := a.src.PostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var related, recent []portabletext.Post
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		related, err = a.src.RelatedPosts(gctx, slug, post.Categories, relatedLimit)
		if err != nil {
			return fmt.Errorf("related posts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = a.src.RecentPosts(gctx, recentFetch)
		if err != nil {
			return fmt.Errorf("recent posts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	body, err := a.RenderBody(post.Body, post.Categories)
	if err != nil {
		return nil, err
	}

	canonical := a.cfg.SiteURL + "/blog/" + slug
	p := &PostPage{
		Meta:    a.postMeta(post, canonical),
		Post:    *post,
		Date:    formatDate(post.Published(), "January 2, 2006"),
		HeroAlt: post.ImageAlt,
		Chips:   chips(post.Categories, 0),
		Body:    body,
		Breadcrumb: Breadcrumb{
			Context: "https://schema.org",
			Type:    "BreadcrumbList",
			Items: []breadcrumbItem{
				{Type: "ListItem", Position: 1, Name: "Home", Item: a.cfg.SiteURL},
				{Type: "ListItem", Position: 2, Name: "Blog", Item: a.cfg.SiteURL + "/blog"},
				{Type: "ListItem", Position: 3, Name: post.Title, Item: canonical},
			},
		},
	}
	if p.HeroAlt == "" {
		p.HeroAlt = post.Title
	}
	if post.MainImage != nil {
		p.HeroURL = a.imageURL(*post.MainImage, 1000, 563)
	}
	for _, rp := range related {
		p.Related = append(p.Related, a.card(rp, 600, 338, "Jan 2, 2006"))
	}
	for _, rp := range recent {
		if rp.Slug.Current == slug {
			continue
		}
		if len(p.Recent) == recentLimit {
			break
		}
		p.Recent = append(p.Recent, a.card(rp, 300, 169, ""))
	}
	return p, nil
}

func (a *Assembler) postMeta(post *portabletext.Post, canonical string) Meta {
	m := a.baseMeta()
	m.Title = post.Title
	m.Description = post.Excerpt
	if post.SEO != nil {
		if post.SEO.MetaTitle != "" {
			m.Title = post.SEO.MetaTitle
		}
		if post.SEO.MetaDescription != "" {
			m.Description = post.SEO.MetaDescription
		}
		m.Keywords = post.SEO.Keywords
	}
	m.Title += " - " + a.cfg.SiteName
	m.Canonical = canonical
	m.OGTitle = post.Title
	m.OGDescription = post.Excerpt
	m.OGType = "article"
	m.PublishedTime = post.PublishedAt
	if post.MainImage != nil {
		m.OGImage = a.imageURL(*post.MainImage, 1200, 0)
	}
	return m
}

// Index assembles the listing. A non-empty category other than "all"
// limits the cards to posts tagged with it.
func (a *Assembler) Index(ctx context.Context, category string) (*IndexPage, error) {
	posts, err := a.src.AllPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("all posts: %w", err)
	}
	if category == "all" {
		category = ""
	}

	m := a.baseMeta()
	m.Title = "Legal Blog - " + a.cfg.SiteName
	m.Description = "Expert insights on personal injury law, medical malpractice, motor vehicle accidents, and more. Learn about your legal rights and case values."
	m.Keywords = []string{"legal blog", "personal injury law", "texas law", "case value", "statute of limitations"}
	m.Canonical = a.cfg.SiteURL + "/blog"
	m.OGTitle = m.Title
	m.OGDescription = "Expert insights on personal injury law, medical malpractice, motor vehicle accidents, and more."
	m.OGType = "website"

	p := &IndexPage{Meta: m, Active: category}
	p.Categories = append(p.Categories, Chip{Slug: "all", Name: "All Posts", Active: category == ""})
	seen := map[string]bool{}
	for _, post := range posts {
		for _, c := range post.Categories {
			if seen[c] {
				continue
			}
			seen[c] = true
			p.Categories = append(p.Categories, Chip{Slug: c, Name: questionnaire.FormatCategory(c), Active: c == category})
		}
	}
	for _, post := range posts {
		if category != "" && !post.HasCategory(category) {
			continue
		}
		p.Cards = append(p.Cards, a.card(post, 600, 338, "Jan 2, 2006"))
	}
	return p, nil
}

func (a *Assembler) baseMeta() Meta {
	return Meta{SiteName: a.cfg.SiteName, SiteURL: a.cfg.SiteURL, Year: a.now().Year()}
}

func (a *Assembler) card(p portabletext.Post, w, h int, dateLayout string) Card {
	c := Card{
		Slug:           p.Slug.Current,
		Title:          p.Title,
		Excerpt:        p.Excerpt,
		Author:         p.Author,
		ImageAlt:       p.ImageAlt,
		Chips:          chips(p.Categories, cardChips),
		DataCategories: strings.Join(p.Categories, ","),
	}
	if dateLayout != "" {
		c.Date = formatDate(p.Published(), dateLayout)
	}
	if c.ImageAlt == "" {
		c.ImageAlt = p.Title
	}
	if p.MainImage != nil {
		c.ImageURL = a.imageURL(*p.MainImage, w, h)
	}
	return c
}

func (a *Assembler) imageURL(img portabletext.Image, w, h int) string {
	if a.cfg.Render.Images != nil {
		return a.cfg.Render.Images.ImageURL(img, w, h)
	}
	return img.Asset.URL
}

func chips(categories []string, limit int) []Chip {
	var out []Chip
	for _, c := range categories {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, Chip{Slug: c, Name: questionnaire.FormatCategory(c)})
	}
	return out
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

func serialize(nodes ...*html.Node) (template.HTML, error) {
	s, err := richtext.Serialize(nodes)
	if err != nil {
		return "", err
	}
	return template.HTML(s), nil
}
