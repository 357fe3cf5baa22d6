package app

import (
	"log"
	"mime"
)

// The embedded stylesheet is served via http.FileServer, which resolves
// content types from the OS MIME table. Minimal containers ship without
// /etc/mime.types, so .css must be registered explicitly or the browser
// refuses the sheet.
func init() {
	ensureMimeType(".css", "text/css; charset=utf-8")
	ensureMimeType(".svg", "image/svg+xml")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: failed to register MIME type for %s: %v", ext, err)
	}
}
