package archive

import (
	"github.com/TobiSchelling/feedshelf/internal/article"
)

// Archive maps link to article. Articles are only ever added: the archive
// is never pruned.
type Archive struct {
	byLink  map[string]article.Article
	order   []string
	pending []article.Article
}

// New returns an empty archive.
func New() *Archive {
	return &Archive{byLink: make(map[string]article.Article)}
}

// FromArticles builds an archive from previously persisted articles. Later
// duplicates of a link are ignored.
func FromArticles(articles []article.Article) *Archive {
	a := New()
	for _, art := range articles {
		a.add(art)
	}
	return a
}

// Insert adds art if its link is not yet archived and reports whether it did.
func (a *Archive) Insert(art article.Article) bool {
	if !a.add(art) {
		return false
	}
	a.pending = append(a.pending, art)
	return true
}

func (a *Archive) add(art article.Article) bool {
	if _, ok := a.byLink[art.Link]; ok {
		return false
	}
	a.byLink[art.Link] = art
	a.order = append(a.order, art.Link)
	return true
}

// Has reports whether link is archived.
func (a *Archive) Has(link string) bool {
	_, ok := a.byLink[link]
	return ok
}

// Len returns the number of archived articles.
func (a *Archive) Len() int {
	return len(a.byLink)
}

// Pending returns the articles inserted since the archive was loaded.
func (a *Archive) Pending() []article.Article {
	return append([]article.Article(nil), a.pending...)
}

// Articles returns every archived article, newest first.
func (a *Archive) Articles() []article.Article {
	out := make([]article.Article, 0, len(a.order))
	for _, link := range a.order {
		out = append(out, a.byLink[link])
	}
	article.SortNewestFirst(out)
	return out
}
