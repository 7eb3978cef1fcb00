package ordinals

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/txscript"
	"github.com/samber/lo"
)

// Envelope is a parsed inscription envelope. Content and ContentType carry the
// inscription itself; the remaining fields are optional tag extras.
type Envelope struct {
	ContentType     string
	Content         []byte
	Pointer         []byte
	Parent          []byte
	Metadata        []byte
	Metaprotocol    string
	ContentEncoding string
	Delegate        []byte
}

var protocolId = []byte("ord")

// ParseEnvelopeFromWitness scans the witness stack of a single transaction
// input and returns the first valid envelope found, or nil. Witness items are
// scanned in order, each as a raw script.
func ParseEnvelopeFromWitness(witness [][]byte) *Envelope {
	for _, item := range witness {
		if envelope := parseEnvelopeFromScript(item); envelope != nil {
			return envelope
		}
	}
	return nil
}

// parseEnvelopeFromScript scans a script left-to-right for the envelope
// opening sequence OP_FALSE OP_IF followed by a push of the protocol id.
func parseEnvelopeFromScript(script []byte) *Envelope {
	for i := 0; i+1 < len(script); i++ {
		if script[i] != txscript.OP_FALSE || script[i+1] != txscript.OP_IF {
			continue
		}

		marker, pos, ok := readPush(script, i+2)
		if !ok || !bytes.Equal(marker, protocolId) {
			// not an envelope, resume the scan from the next byte
			continue
		}

		payloads, pos := collectPayloads(script, pos)
		if envelope := envelopeFromPayloads(payloads); envelope != nil {
			return envelope
		}

		// invalid envelope, skip the consumed region
		if pos > i {
			i = pos - 1
		}
	}
	return nil
}

// collectPayloads consumes successive push payloads until OP_ENDIF, a non-push
// byte, or the end of the script. A push whose claimed length overruns the
// script stops collection without discarding what was already collected.
func collectPayloads(script []byte, pos int) ([][]byte, int) {
	payloads := make([][]byte, 0)
	for pos < len(script) {
		if script[pos] == txscript.OP_ENDIF {
			pos++
			break
		}
		data, next, ok := readPush(script, pos)
		if !ok {
			break
		}
		payloads = append(payloads, data)
		pos = next
	}
	return payloads, pos
}

// readPush decodes a single data push at pos. It returns the pushed bytes and
// the position just after the push. ok is false for non-push opcodes and for
// pushes whose claimed data extends past the end of the script.
func readPush(script []byte, pos int) (data []byte, next int, ok bool) {
	if pos >= len(script) {
		return nil, 0, false
	}
	op := script[pos]
	switch {
	case op == txscript.OP_0:
		return []byte{}, pos + 1, true
	case op >= txscript.OP_DATA_1 && op <= txscript.OP_DATA_75:
		// the opcode is the length
		n := int(op)
		if pos+1+n > len(script) {
			return nil, 0, false
		}
		return script[pos+1 : pos+1+n], pos + 1 + n, true
	case op == txscript.OP_PUSHDATA1:
		if pos+2 > len(script) {
			return nil, 0, false
		}
		n := int(script[pos+1])
		if pos+2+n > len(script) {
			return nil, 0, false
		}
		return script[pos+2 : pos+2+n], pos + 2 + n, true
	case op == txscript.OP_PUSHDATA2:
		if pos+3 > len(script) {
			return nil, 0, false
		}
		n := int(binary.LittleEndian.Uint16(script[pos+1 : pos+3]))
		if pos+3+n > len(script) {
			return nil, 0, false
		}
		return script[pos+3 : pos+3+n], pos + 3 + n, true
	case op == txscript.OP_PUSHDATA4:
		if pos+5 > len(script) {
			return nil, 0, false
		}
		n := int(binary.LittleEndian.Uint32(script[pos+1 : pos+5]))
		if n < 0 || pos+5+n > len(script) {
			return nil, 0, false
		}
		return script[pos+5 : pos+5+n], pos + 5 + n, true
	case op == txscript.OP_1NEGATE:
		return []byte{0x81}, pos + 1, true
	case op >= txscript.OP_1 && op <= txscript.OP_16:
		// synthetic push of the small number's value
		return []byte{op - txscript.OP_1 + 1}, pos + 1, true
	}
	return nil, 0, false
}

// envelopeFromPayloads interprets collected payloads as tag/value pairs at
// even indices with the body starting after the first empty even-index
// payload. Returns nil when neither a content type nor a body is present.
func envelopeFromPayloads(payloads [][]byte) *Envelope {
	// find body separator (empty data push at even index)
	bodyIndex := -1
	for i, value := range payloads {
		if i%2 == 0 && len(value) == 0 {
			bodyIndex = i
			break
		}
	}
	var fieldPayloads [][]byte
	var body []byte
	if bodyIndex != -1 {
		fieldPayloads = payloads[:bodyIndex]
		body = lo.Flatten(payloads[bodyIndex+1:])
	} else {
		fieldPayloads = payloads[:]
	}

	fields := make(Fields)
	for _, chunk := range lo.Chunk(fieldPayloads, 2) {
		if len(chunk) != 2 {
			// trailing tag with no value, stop field parsing
			break
		}
		key := chunk[0]
		if len(key) != 1 {
			// tag payloads are exactly one byte, skip this pair
			continue
		}
		tag := Tag(key[0])
		fields[tag] = append(fields[tag], chunk[1])
	}

	rawContentType, hasContentType := fields.Take(TagContentType)
	if !hasContentType && bodyIndex == -1 {
		return nil
	}

	rawPointer, _ := fields.Take(TagPointer)
	rawParent, _ := fields.Take(TagParent)
	rawMetadata, _ := fields.Take(TagMetadata)
	rawMetaprotocol, _ := fields.Take(TagMetaprotocol)
	rawContentEncoding, _ := fields.Take(TagContentEncoding)
	rawDelegate, _ := fields.Take(TagDelegate)

	return &Envelope{
		ContentType:     string(rawContentType),
		Content:         body,
		Pointer:         rawPointer,
		Parent:          rawParent,
		Metadata:        rawMetadata,
		Metaprotocol:    string(rawMetaprotocol),
		ContentEncoding: string(rawContentEncoding),
		Delegate:        rawDelegate,
	}
}

type Fields map[Tag][][]byte

// Take removes the tag from the field set and returns its value. Chunked tags
// concatenate all occurrences in order; for any other tag the first
// occurrence wins.
func (fields Fields) Take(tag Tag) ([]byte, bool) {
	values, ok := fields[tag]
	if !ok {
		return nil, false
	}
	delete(fields, tag)
	if tag.IsChunked() {
		return lo.Flatten(values), true
	}
	return values[0], true
}
