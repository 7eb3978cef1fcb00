package ordinals

// Tag identifies a data field in an inscription envelope. Unrecognized tags
// are ignored, they never invalidate the envelope.
type Tag uint8

var (
	TagContentType     = Tag(1)
	TagPointer         = Tag(2)
	TagParent          = Tag(3)
	TagMetadata        = Tag(5)
	TagMetaprotocol    = Tag(7)
	TagContentEncoding = Tag(9)
	TagDelegate        = Tag(11)
)

var chunkedTags = map[Tag]struct{}{
	TagMetadata: {},
}

// IsChunked reports whether repeated occurrences of the tag are concatenated
// in order instead of first-occurrence-wins.
func (t Tag) IsChunked() bool {
	_, ok := chunkedTags[t]
	return ok
}

func (t Tag) Bytes() []byte {
	return []byte{byte(t)}
}
