package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Sitemap 输出 sitemap.xml：静态页面加上每篇已发布文章一条记录。
// 文章查询失败时退化为只包含静态页面。
func (a *API) Sitemap(c *gin.Context) {
	base := strings.TrimSuffix(a.siteBaseURL, "/")
	now := time.Now().Format(time.RFC3339)

	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	writeSitemapEntry(&sitemap, base+"/", now, "weekly", "1.0")
	writeSitemapEntry(&sitemap, base+"/about", now, "monthly", "0.8")
	writeSitemapEntry(&sitemap, base+"/articles", now, "daily", "0.9")

	posts, err := a.posts.GetPublishedPosts()
	if err != nil {
		c.Error(err)
		posts = nil
	}

	for _, post := range posts {
		lastMod := post.UpdatedAt
		if lastMod.IsZero() {
			lastMod = post.CreatedAt
		}
		writeSitemapEntry(&sitemap, base+"/articles/"+post.Slug, lastMod.Format(time.RFC3339), "weekly", "0.7")
	}

	sitemap.WriteString("</urlset>\n")

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, sitemap.String())
}

// Robots 输出 robots.txt：放行公开路径，屏蔽后台与 API。
func (a *API) Robots(c *gin.Context) {
	base := strings.TrimSuffix(a.siteBaseURL, "/")

	var robots strings.Builder
	robots.WriteString("User-agent: *\n")
	robots.WriteString("Allow: /\n")
	robots.WriteString("Disallow: /admin/\n")
	robots.WriteString("Disallow: /api/\n")
	robots.WriteString("\n")
	robots.WriteString("Sitemap: " + base + "/sitemap.xml\n")

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, robots.String())
}

func writeSitemapEntry(b *strings.Builder, loc, lastMod, changeFreq, priority string) {
	b.WriteString("  <url>\n")
	b.WriteString("    <loc>" + loc + "</loc>\n")
	b.WriteString("    <lastmod>" + lastMod + "</lastmod>\n")
	b.WriteString("    <changefreq>" + changeFreq + "</changefreq>\n")
	b.WriteString("    <priority>" + priority + "</priority>\n")
	b.WriteString("  </url>\n")
}
