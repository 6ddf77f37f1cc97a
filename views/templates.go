package views

// The page shell. Navbar, flash area, sidebar with the current space's
// pages, and a body block each page template overrides.
const layoutHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{block "title" .}}{{.Site.Name}}{{end}}</title>
<link rel="stylesheet" href="/public/wiki.css">
</head>
<body>
<nav class="navbar">
  <a class="brand" href="/">{{.Site.Name}}</a>
  <div class="nav-right">
    {{if .Display}}
      {{if .IsSuper}}
      <form method="get" action="/" class="space-select">
        <select name="space" onchange="this.form.submit()">
          {{range .Spaces}}<option value="{{.Key}}"{{if eq .Key $.SpaceKey}} selected{{end}}>{{.Display}}</option>{{end}}
        </select>
      </form>
      <a href="/admin/users/">Users</a>
      {{end}}
      <span class="who">{{.Display}}</span>
      <a href="/logout/">Logout</a>
    {{else}}
      <a href="/login/">Login</a>
    {{end}}
  </div>
</nav>
{{range .Flashes}}<div class="flash flash-{{.Level}}">{{.Message}}</div>
{{end}}<div class="wrap">
  <aside class="sidebar">
    <h2>{{.SpaceDisplay}}</h2>
    <ul>
      {{range .Pages}}<li><a href="/page/{{.}}/{{if $.SpaceKey}}?space={{$.SpaceKey}}{{end}}">{{.}}</a></li>
      {{end}}
    </ul>
    {{if .CanEdit}}<a class="btn" href="/new/{{if .SpaceKey}}?space={{.SpaceKey}}{{end}}">+ New Page</a>{{end}}
  </aside>
  <main>{{block "body" .}}{{end}}</main>
</div>
</body>
</html>
`

const indexBody = `{{define "body"}}
<h1>{{.SpaceDisplay}}</h1>
<form method="get" action="/" class="search">
  {{if .SpaceKey}}<input type="hidden" name="space" value="{{.SpaceKey}}">{{end}}
  <input type="text" name="q" value="{{.Query}}" placeholder="Search pages">
  <button type="submit">Search</button>
</form>
{{if .Results}}
<ul class="page-list">
  {{range .Results}}<li>
    <a href="/page/{{.}}/{{if $.SpaceKey}}?space={{$.SpaceKey}}{{end}}">{{.}}</a>
    {{if $.CanEdit}}<a class="small" href="/edit/{{.}}/{{if $.SpaceKey}}?space={{$.SpaceKey}}{{end}}">edit</a>{{end}}
  </li>
  {{end}}
</ul>
{{else if .Query}}
<p>No pages match "{{.Query}}".</p>
{{else}}
<p>No pages here yet.</p>
{{end}}
{{end}}`

const pageBody = `{{define "title"}}{{.Name}} - {{.Site.Name}}{{end}}
{{define "body"}}
<h1>{{.Name}}</h1>
<div class="page-content">{{.Content}}</div>
{{if .CanEdit}}
<div class="page-actions">
  <a class="btn" href="/edit/{{.Name}}/{{if .SpaceKey}}?space={{.SpaceKey}}{{end}}">Edit</a>
  <form method="post" action="/delete/{{.Name}}/{{if .SpaceKey}}?space={{.SpaceKey}}{{end}}" onsubmit="return confirm('Delete this page?')">
    <input type="hidden" name="_csrf" value="{{.CSRF}}">
    <button type="submit" class="danger">Delete</button>
  </form>
</div>
{{end}}
{{end}}`

const editBody = `{{define "title"}}Edit {{.Name}} - {{.Site.Name}}{{end}}
{{define "body"}}
<h1>Edit {{.Name}}</h1>
<form method="post" enctype="multipart/form-data">
  <input type="hidden" name="_csrf" value="{{.CSRF}}">
  <textarea name="content" rows="20">{{.Content}}</textarea>
  <label>Attach image (png, jpg, jpeg, gif); reference it as /images/&lt;filename&gt;
    <input type="file" name="image" accept=".png,.jpg,.jpeg,.gif">
  </label>
  <button type="submit" class="btn">Save</button>
  <a href="/page/{{.Name}}/{{if .SpaceKey}}?space={{.SpaceKey}}{{end}}">Cancel</a>
</form>
{{end}}`

const newBody = `{{define "title"}}Create New Page - {{.Site.Name}}{{end}}
{{define "body"}}
<h1>Create New Page</h1>
<form method="post">
  <input type="hidden" name="_csrf" value="{{.CSRF}}">
  <label>Page name (no spaces or slashes)
    <input type="text" name="name" required>
  </label>
  <button type="submit" class="btn">Create</button>
</form>
{{end}}`

const loginBody = `{{define "title"}}Login - {{.Site.Name}}{{end}}
{{define "body"}}
<h1>Login</h1>
<form method="post">
  <input type="hidden" name="_csrf" value="{{.CSRF}}">
  {{if .Next}}<input type="hidden" name="next" value="{{.Next}}">{{end}}
  <label>Username
    <input type="text" name="username" required autofocus>
  </label>
  <button type="submit" class="btn">Login</button>
</form>
{{end}}`

const usersBody = `{{define "title"}}Manage Users - {{.Site.Name}}{{end}}
{{define "body"}}
<h1>Manage Users</h1>
<form method="post" class="add-user">
  <input type="hidden" name="_csrf" value="{{.CSRF}}">
  <input type="hidden" name="action" value="add">
  <label>New username
    <input type="text" name="username" required>
  </label>
  <button type="submit" class="btn">Add User</button>
</form>
{{if .Users}}
<table class="users">
  <tr><th>Username</th><th></th></tr>
  {{range .Users}}<tr>
    <td>{{.}}</td>
    <td>
      <form method="post" onsubmit="return confirm('Remove {{.}} and delete their entire space?')">
        <input type="hidden" name="_csrf" value="{{$.CSRF}}">
        <input type="hidden" name="action" value="remove">
        <input type="hidden" name="username" value="{{.}}">
        <button type="submit" class="danger">Remove</button>
      </form>
    </td>
  </tr>
  {{end}}
</table>
{{else}}
<p>No registered users.</p>
{{end}}
{{end}}`

const analyticsBody = `{{define "title"}}Analytics - {{.Site.Name}}{{end}}
{{define "body"}}
<h1>Page Views</h1>
{{if .Rows}}
<table class="analytics">
  <tr><th>Space</th><th>Page</th><th>Views</th></tr>
  {{range .Rows}}<tr><td>{{.Space}}</td><td>{{.Page}}</td><td>{{.Views}}</td></tr>
  {{end}}
</table>
{{else}}
<p>No visits recorded yet.</p>
{{end}}
{{end}}`

const notFoundHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Not Found - {{.Name}}</title><link rel="stylesheet" href="/public/wiki.css"></head>
<body class="error-page">
<h1>404</h1>
<p>That page does not exist.</p>
<a href="/">Back to {{.Name}}</a>
</body>
</html>
`

const serverErrorHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Server Error - {{.Name}}</title><link rel="stylesheet" href="/public/wiki.css"></head>
<body class="error-page">
<h1>500</h1>
<p>Something went wrong on our side.</p>
<a href="/">Back to {{.Name}}</a>
</body>
</html>
`
