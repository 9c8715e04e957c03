package richtext

import (
	"bytes"
	"strconv"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

// imageURL asks for the figure width only. ImageHeight sizes the <img>
// attribute; passing it to the CDN would crop portrait images.
func (r *Renderer) imageURL(img *portabletext.Image) string {
	if r.opts.Images != nil {
		if u := r.opts.Images.ImageURL(*img, r.opts.ImageWidth, 0); u != "" {
			return u
		}
	}
	return img.Asset.URL
}

// image renders a figure. Alt is always emitted, empty when unknown; an
// image whose asset cannot be resolved renders nothing.
func (r *Renderer) image(img *portabletext.Image) *html.Node {
	if img == nil {
		return nil
	}
	src := r.imageURL(img)
	if src == "" {
		return nil
	}
	fig := element(atom.Figure)
	fig.AppendChild(element(atom.Img,
		attr("src", src),
		attr("alt", img.Alt),
		attr("width", strconv.Itoa(r.opts.ImageWidth)),
		attr("height", strconv.Itoa(r.opts.ImageHeight)),
		attr("loading", "lazy"),
	))
	if img.Caption != "" {
		caption := element(atom.Figcaption)
		caption.AppendChild(text(img.Caption))
		fig.AppendChild(caption)
	}
	return fig
}

func (r *Renderer) code(c *portabletext.Code) *html.Node {
	if c == nil {
		return nil
	}
	wrap := element(atom.Div, attr("class", "code-block"))
	if c.Language != "" {
		wrap.Attr = append(wrap.Attr, attr("data-language", c.Language))
	}
	if c.Filename != "" {
		name := element(atom.Div, attr("class", "code-filename"))
		name.AppendChild(text(c.Filename))
		wrap.AppendChild(name)
	}
	if r.opts.Highlight {
		if nodes, err := r.highlight(c); err == nil && len(nodes) > 0 {
			appendAll(wrap, nodes)
			return wrap
		}
	}
	pre := element(atom.Pre)
	codeEl := element(atom.Code)
	if c.Language != "" {
		codeEl.Attr = append(codeEl.Attr, attr("class", "language-"+c.Language))
	}
	codeEl.AppendChild(text(c.Code))
	pre.AppendChild(codeEl)
	wrap.AppendChild(pre)
	return wrap
}

// highlight runs the listing through chroma and parses the markup back into
// nodes so it can sit in the same tree as everything else.
func (r *Renderer) highlight(c *portabletext.Code) ([]*html.Node, error) {
	lexer := lexers.Get(c.Language)
	if lexer == nil {
		lexer = lexers.Analyse(c.Code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(r.opts.HighlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	it, err := lexer.Tokenise(nil, c.Code)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.Format(&buf, style, it); err != nil {
		return nil, err
	}
	ctx := element(atom.Div)
	return html.ParseFragment(&buf, ctx)
}
