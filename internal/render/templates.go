package render

const sectionTemplates = `
{{define "hero"}}<header class="hero">
{{with .Image}}<img class="hero-bg" src="{{.}}" alt="">{{end}}
<h1>{{.Title}}</h1>
{{range .Names}}<p class="hero-name">{{.}}</p>{{end}}
{{with .Subtitle}}<p class="hero-subtitle">{{.}}</p>{{end}}
{{with .Date}}<p class="hero-date">{{.}}</p>{{end}}
</header>{{end}}

{{define "event_details"}}<h2>{{.Title}}</h2>
<dl class="details">
{{with .Date}}<dt>Date</dt><dd>{{.}}</dd>{{end}}
{{with .Time}}<dt>Time</dt><dd>{{.}}</dd>{{end}}
{{with .Venue}}<dt>Venue</dt><dd>{{.}}</dd>{{end}}
{{with .Address}}<dt>Address</dt><dd>{{.}}</dd>{{end}}
</dl>
{{with .Description}}<p>{{.}}</p>{{end}}{{end}}

{{define "countdown"}}<h2>{{.Title}}</h2>
{{if .Unknown}}<p class="countdown">Date to be announced</p>
{{else if .Passed}}<p class="countdown">{{.Done}}</p>
{{else}}<p class="countdown" data-target="{{.Target}}"><span>{{.Days}}</span> days <span>{{.Hours}}</span> hours</p>{{end}}{{end}}

{{define "gallery"}}<h2>{{.Title}}</h2>
<div class="gallery cols-{{.Columns}}">{{range .Images}}<img src="{{.}}" alt="" loading="lazy">{{end}}</div>{{end}}

{{define "story"}}{{with .Title}}<h2>{{.}}</h2>{{end}}
{{with .Image}}<img src="{{.}}" alt="">{{end}}
{{with .Content}}<p>{{.}}</p>{{end}}{{end}}

{{define "custom"}}{{template "story" .}}{{end}}

{{define "venue"}}<h2>{{.Title}}</h2>
{{with .Name}}<p class="venue-name">{{.}}</p>{{end}}
{{with .Address}}<p class="venue-address">{{.}}</p>{{end}}
{{with .Directions}}<p>{{.}}</p>{{end}}
{{with .MapURL}}<a class="button" href="{{.}}" target="_blank" rel="noopener">Open map</a>{{end}}{{end}}

{{define "rsvp"}}<h2>{{.Title}}</h2>
{{if .Closed}}<p>RSVP is closed.</p>{{else}}
<p>{{.Description}}</p>
{{with .Deadline}}<p class="muted">Please reply by {{.}}</p>{{end}}
<form class="rsvp-form" method="post" data-action="rsvp">
<input name="name" placeholder="Name" required>
<input name="email" type="email" placeholder="Email" required>
<select name="status"><option value="attending">Attending</option><option value="not_attending">Not attending</option><option value="maybe">Maybe</option></select>
<input name="numberOfGuests" type="number" min="1" value="1">
<textarea name="message" placeholder="Message"></textarea>
<button type="submit">{{.Button}}</button>
</form>{{end}}{{end}}

{{define "wishes"}}<h2>{{.Title}}</h2>
<p>{{.Description}}</p>
<ul class="wishes">{{range .Wishes}}<li{{if .IsHighlighted}} class="highlight"{{end}}><strong>{{.Name}}</strong> {{.Message}}</li>{{end}}</ul>
{{if not .Closed}}<form class="wish-form" method="post" data-action="wish">
<input name="name" placeholder="Name" required>
<textarea name="message" placeholder="Your wish" required></textarea>
<button type="submit">Send</button>
</form>{{end}}{{end}}

{{define "list"}}<h2>{{.Title}}</h2>
{{with .Description}}<p>{{.}}</p>{{end}}
<ul class="items">{{range .Items}}<li>
{{with index . "time"}}<span class="time">{{.}}</span>{{end}}
{{with index . "title"}}<strong>{{.}}</strong>{{end}}
{{with index . "question"}}<strong>{{.}}</strong>{{end}}
{{with index . "name"}}<strong>{{.}}</strong>{{end}}
{{with index . "description"}}<p>{{.}}</p>{{end}}
{{with index . "answer"}}<p>{{.}}</p>{{end}}
{{with index . "url"}}<a href="{{.}}" target="_blank" rel="noopener">View</a>{{end}}
</li>{{end}}</ul>{{end}}

{{define "gift_registry"}}{{template "list" .}}{{end}}
{{define "timeline"}}{{template "list" .}}{{end}}
{{define "faq"}}{{template "list" .}}{{end}}

{{define "contact"}}<h2>{{.Title}}</h2>
{{with .Name}}<p>{{.}}</p>{{end}}
{{with .Email}}<p><a href="mailto:{{.}}">{{.}}</a></p>{{end}}
{{with .Phone}}<p><a href="tel:{{.}}">{{.}}</a></p>{{end}}{{end}}

{{define "footer"}}<footer><p>{{.Message}}</p>{{with .Hashtag}}<p class="hashtag">{{.}}</p>{{end}}</footer>{{end}}

{{define "couple"}}<h2>{{.Title}}</h2>
<div class="couple">
<div>{{with .BridePhoto}}<img src="{{.}}" alt="">{{end}}<h3>{{.BrideName}}</h3><p>{{.BrideBio}}</p></div>
<div>{{with .GroomPhoto}}<img src="{{.}}" alt="">{{end}}<h3>{{.GroomName}}</h3><p>{{.GroomBio}}</p></div>
</div>{{end}}

{{define "dress_code"}}<h2>{{.Title}}</h2>
{{with .Code}}<p class="dress-code">{{.}}</p>{{end}}
{{with .Description}}<p>{{.}}</p>{{end}}
<div class="swatches">{{range .Colors}}<span class="swatch" title="{{.}}"></span>{{end}}</div>{{end}}

{{define "video"}}{{with .Title}}<h2>{{.}}</h2>{{end}}
{{with .URL}}<iframe src="{{.}}" allowfullscreen></iframe>{{end}}
{{with .Caption}}<p>{{.}}</p>{{end}}{{end}}

{{define "music"}}{{with .Title}}<h2>{{.}}</h2>{{end}}
{{with .URL}}<audio src="{{.}}" controls{{if $.Autoplay}} autoplay{{end}}></audio>{{end}}{{end}}

{{define "generic"}}{{with .Title}}<h2>{{.}}</h2>{{end}}
<dl>{{range .Rows}}<dt>{{.Label}}</dt><dd>{{.Value}}</dd>{{end}}</dl>{{end}}

{{define "wrap"}}<section class="section section-{{.Type}}" data-section="{{.ID}}">{{.Body}}</section>{{end}}
`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>:root{ {{.CSS}} }
body{margin:0;background:var(--color-background);color:var(--color-text);font-family:var(--font-body)}
h1,h2,h3{font-family:var(--font-heading);color:var(--color-primary)}
.section{padding:3rem 1.5rem;max-width:960px;margin:0 auto}
.muted{color:var(--color-text-muted)}
.button,button{background:var(--color-accent);color:var(--color-surface);border:0;padding:.6rem 1.2rem}
.highlight{border-left:3px solid var(--color-accent)}
</style>
</head>
<body class="device-{{.Device}}">
{{range .Sections}}{{.}}
{{end}}</body>
</html>
`
