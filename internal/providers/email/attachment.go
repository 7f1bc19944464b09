package email

import (
	"net/url"
	"path"
)

// Attachment is one of URLAttachment, PathAttachment or BytesAttachment.
// The set is closed; the dispatcher switches over it exhaustively.
type Attachment interface {
	attachment()
}

// URLAttachment references a document reachable over http(s).
type URLAttachment struct {
	URL string
	// FileName overrides the name derived from the URL path.
	FileName string
}

// PathAttachment references a file on the local filesystem.
type PathAttachment struct {
	Path string
}

// BytesAttachment carries the document inline.
type BytesAttachment struct {
	FileName string
	Data     []byte
}

func (URLAttachment) attachment()   {}
func (PathAttachment) attachment()  {}
func (BytesAttachment) attachment() {}

func (a URLAttachment) name() string {
	if a.FileName != "" {
		return a.FileName
	}
	if u, err := url.Parse(a.URL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			return base
		}
	}
	return "attachment.pdf"
}

// payload is the normalized attachment handed to providers. Exactly one of
// Content and RemoteURL is set.
type payload struct {
	FileName  string
	Content   []byte
	RemoteURL string
}
