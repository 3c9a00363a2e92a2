package revisor

const articleHTML = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>Local bookmarks survive every app restart</title>
	<meta name="author" content="Jane Doe">
	<meta property="og:site_name" content="Example News">
</head>
<body>
	<nav><a href="/">Home</a> <a href="/world">World</a></nav>
	<article>
		<h1>Local bookmarks survive every app restart</h1>
		<p>Readers who save stories for later expect them to be there the next time they open the app.
		The team behind the reader rebuilt the way saved stories are written to the device, so that
		the list on disk always matches the list on the screen, no matter how fast readers tap the star.</p>
		<p>Previously, two saves fired in quick succession could race each other, and the older one could
		land last, silently bringing back a story that had just been removed. Now every change bumps a
		version number and a single writer always stores the latest version of the list.</p>
		<p>When the saved list can't be read, the reader starts with an empty list and keeps a copy of
		the damaged data aside instead of throwing it away, so nothing is lost without a trace.</p>
	</article>
	<footer>Copyright Example News</footer>
</body>
</html>`
