package services

import (
	"strings"
)

const (
	wikimediaRedirectPrefix = "https://commons.wikimedia.org/w/index.php?title=Special:Redirect/file/"
	wikimediaDefaultWidth   = "800"
)

// NormalizeImageURL rewrites Wikipedia/Wikimedia page links into direct,
// hotlinkable image URLs where it can do so safely. It is best-effort and
// idempotent: URLs it cannot confidently rewrite pass through unchanged, and
// already-normalized URLs come back as-is.
func NormalizeImageURL(url string) string {
	if url == "" {
		return url
	}

	// Already a redirect-to-file address: just ensure it carries a width,
	// which makes Commons serve a scaled raster reliably.
	if strings.Contains(url, "Special:Redirect/file/") {
		if strings.Contains(url, "&width=") {
			return url
		}
		return url + "&width=" + wikimediaDefaultWidth
	}

	// Direct upload-host links are already hotlinkable.
	if strings.Contains(url, "upload.wikimedia.org") {
		return url
	}

	// A "File:" description page names the file; rewrite to the redirect form.
	if idx := strings.Index(url, "/wiki/File:"); idx >= 0 {
		fileName := url[idx+len("/wiki/File:"):]
		if cut := strings.IndexAny(fileName, "?#"); cut >= 0 {
			fileName = fileName[:cut]
		}
		return wikimediaRedirectPrefix + fileName + "&width=" + wikimediaDefaultWidth
	}

	// Other wiki page links (galleries, categories) cannot be rewritten
	// without fetching the page; pass through by design.
	return url
}
