package richtext

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

type openList struct {
	node     *html.Node
	lastItem *html.Node
	level    int
	listType string
}

// listBuilder groups consecutive list items into nested <ul>/<ol> trees.
// A deeper item opens a list inside the previous item; a shallower item or a
// type change at the same level closes lists back down.
type listBuilder struct {
	stack []openList
}

func (lb *listBuilder) reset() {
	lb.stack = lb.stack[:0]
}

func (lb *listBuilder) add(out *[]*html.Node, li *html.Node, b portabletext.Block) {
	level := b.GetLevel()
	typ := b.ListItem
	if typ != portabletext.ListNumber {
		typ = portabletext.ListBullet
	}

	for len(lb.stack) > 0 {
		top := lb.stack[len(lb.stack)-1]
		if top.level > level || (top.level == level && top.listType != typ) {
			lb.stack = lb.stack[:len(lb.stack)-1]
			continue
		}
		break
	}

	if len(lb.stack) == 0 || lb.stack[len(lb.stack)-1].level < level {
		list := element(listAtom(typ))
		if len(lb.stack) == 0 {
			*out = append(*out, list)
		} else {
			parent := lb.stack[len(lb.stack)-1]
			if parent.lastItem != nil {
				parent.lastItem.AppendChild(list)
			} else {
				parent.node.AppendChild(list)
			}
		}
		lb.stack = append(lb.stack, openList{node: list, level: level, listType: typ})
	}

	top := &lb.stack[len(lb.stack)-1]
	top.node.AppendChild(li)
	top.lastItem = li
}

func listAtom(typ string) atom.Atom {
	if typ == portabletext.ListNumber {
		return atom.Ol
	}
	return atom.Ul
}
