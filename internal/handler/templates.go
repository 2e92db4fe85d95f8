package handler

import "html/template"

// 页面模板内嵌在二进制里，避免额外的模板目录部署依赖。
// 渲染样式不属于核心，保持最小可读的结构即可。

var postPageTemplate = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .post.Title}}{{.post.Title}}{{else}}{{.post.Slug}}{{end}}</title>
<link rel="alternate" type="application/atom+xml" href="{{.site}}/feeds/all.atom.xml">
</head>
<body>
<article class="h-entry">
{{if .post.Title}}<h1 class="p-name">{{.post.Title}}</h1>{{end}}
{{if .post.BookmarkOf}}<p>Bookmark of <a class="u-bookmark-of" href="{{.post.BookmarkOf}}">{{.post.BookmarkOf}}</a></p>{{end}}
<div class="e-content">{{.post.Content}}</div>
{{range .post.Photos}}<p><img class="u-photo" src="{{.URL}}" alt="{{.Alt}}"></p>
{{end}}<footer>
<time class="dt-published" datetime="{{.post.Published}}">{{.post.Published}}</time>
{{range .post.Tags}}<a class="p-category" href="{{$.site}}/tag/{{.}}">#{{.}}</a> {{end}}
</footer>
</article>
</body>
</html>
`))

var archivePageTemplate = template.Must(template.New("archive").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .tag}}Posts tagged {{.tag}}{{else}}Archive{{end}}</title>
</head>
<body>
<h1>{{if .tag}}Posts tagged "{{.tag}}"{{else}}Archive{{end}}</h1>
<ul>
{{range .posts}}<li>
<time datetime="{{.Published}}">{{.Published}}</time>
<a href="{{$.site}}/{{.Slug}}">{{if .Title}}{{.Title}}{{else}}{{.Slug}}{{end}}</a>
</li>
{{end}}</ul>
</body>
</html>
`))
