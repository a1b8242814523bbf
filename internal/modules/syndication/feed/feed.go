// Package feed renders the RSS feed of published posts.
package feed

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"gorm.io/gorm"

	"github.com/velora-shop/core/internal/models"
)

const feedLimit = 20

// Site identifies the feed channel.
type Site struct {
	Title       string
	Description string
	URL         string
}

// RegisterRoutes mounts the RSS feed endpoint at the engine root.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, site Site) {
	md := goldmark.New()

	r.GET("/feed.xml", func(c *gin.Context) {
		var posts []models.PostModel
		err := db.Where("status = ?", models.PostStatusPublished).
			Order("published_at DESC").
			Limit(feedLimit).
			Find(&posts).Error
		if err != nil {
			c.String(http.StatusInternalServerError, "feed unavailable")
			return
		}

		items := make([]feedItem, len(posts))
		for i, p := range posts {
			var buf strings.Builder
			if err := md.Convert([]byte(p.Content), &buf); err != nil {
				buf.Reset()
				buf.WriteString(p.Content)
			}
			pubDate := p.CreatedAt
			if p.PublishedAt != nil {
				pubDate = *p.PublishedAt
			}
			items[i] = feedItem{
				Title:   p.Title,
				Link:    fmt.Sprintf("%s/posts/%s", strings.TrimRight(site.URL, "/"), p.Slug),
				GUID:    p.ID,
				PubDate: pubDate,
				Content: buf.String(),
			}
		}

		c.Header("Content-Type", "application/rss+xml; charset=utf-8")
		c.String(http.StatusOK, buildRSS(site, items))
	})
}

type feedItem struct {
	Title   string
	Link    string
	GUID    string
	PubDate time.Time
	Content string
}

func buildRSS(site Site, items []feedItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>%s</title>
    <link>%s</link>
    <description>%s</description>
    <lastBuildDate>%s</lastBuildDate>
`, escapeXML(site.Title), escapeXML(site.URL), escapeXML(site.Description),
		time.Now().Format(time.RFC1123Z))

	for _, item := range items {
		fmt.Fprintf(&b, `    <item>
      <title>%s</title>
      <link>%s</link>
      <guid isPermaLink="false">%s</guid>
      <pubDate>%s</pubDate>
      <description><![CDATA[%s]]></description>
    </item>
`, escapeXML(item.Title), escapeXML(item.Link), item.GUID,
			item.PubDate.Format(time.RFC1123Z), item.Content)
	}

	b.WriteString("  </channel>\n</rss>")
	return b.String()
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}
