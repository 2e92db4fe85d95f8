package handler

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"
)

// feedEntryLimit 限制 Atom 输出的条目数。
const feedEntryLimit = 20

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomEntry struct {
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Link    atomLink    `xml:"link"`
	Content atomContent `xml:"content"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

// HandleAtomFeed 输出最近文章的 Atom feed。
func (a *API) HandleAtomFeed(c *gin.Context) {
	posts, err := a.posts.ListRecent(feedEntryLimit)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	feed := atomFeed{
		Xmlns: "http://www.w3.org/2005/Atom",
		Title: a.cfg.HostWebsite,
		ID:    a.cfg.SiteBaseURL + "/",
		Links: []atomLink{
			{Href: a.cfg.SiteBaseURL + "/feeds/all.atom.xml", Rel: "self"},
			{Href: a.cfg.SiteBaseURL + "/"},
		},
	}

	for i := range posts {
		view := a.buildPostView(&posts[i])
		title := view.Title
		if title == "" {
			title = view.Slug
		}
		entry := atomEntry{
			Title:   title,
			ID:      a.cfg.SiteBaseURL + "/" + view.Slug,
			Updated: view.Updated,
			Link:    atomLink{Href: a.cfg.SiteBaseURL + "/" + view.Slug},
			Content: atomContent{Type: "html", Body: string(view.Content)},
		}
		feed.Entries = append(feed.Entries, entry)
		if feed.Updated == "" || view.Updated > feed.Updated {
			feed.Updated = view.Updated
		}
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "application/atom+xml; charset=utf-8", append([]byte(xml.Header), out...))
}
