// Package render builds the sandboxed preview documents used to display
// untrusted component markup. Confinement is the only safety mechanism:
// the content is never inspected or rewritten, it is simply placed in a
// document that the embedding frame runs with scripts and same-origin
// access disabled. Both entry points are pure functions — identical
// input always produces byte-identical output and nothing is persisted.
package render

import "html"

// bodyBaseCSS centers the snippet in the preview viewport. It is
// appended after the user CSS so the snippet's own body rules, if any,
// come first; there is no further namespace isolation between the two,
// the isolated document itself is the scope boundary.
const bodyBaseCSS = "body{margin:0;display:flex;justify-content:center;align-items:center;min-height:100vh;background:transparent;color:white;font-family:sans-serif;}"

// Document concatenates the component's CSS and HTML into a standalone
// preview document. The CSS goes in verbatim as a single style scope.
func Document(htmlCode, cssCode string) string {
	return "<!doctype html><html><head><meta charset=\"utf-8\"><style>" +
		cssCode + bodyBaseCSS +
		"</style></head><body>" + htmlCode + "</body></html>"
}

// Frame wraps Document in an <iframe srcdoc> with an empty sandbox
// attribute: scripts cannot execute, the content is treated as a unique
// opaque origin, and the frame cannot navigate its parent. The document
// is attribute-escaped so the untrusted markup cannot break out of the
// srcdoc value and reach the host page.
func Frame(htmlCode, cssCode string) string {
	return "<iframe title=\"Live Preview\" sandbox=\"\" srcdoc=\"" +
		html.EscapeString(Document(htmlCode, cssCode)) +
		"\" style=\"width:100%;height:100%;border:none;\"></iframe>"
}
