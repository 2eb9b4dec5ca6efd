package chunker

import (
	"fmt"

	"docassist/internal/domain/ragmodel"
)

// Split slides a fixed window of `size` bytes over text, advancing by
// size-overlap each step, and returns the chunks in document order.
//
// Consecutive chunks share exactly `overlap` bytes, the final chunk may be
// shorter than size, and an empty residual is dropped rather than emitted.
// Stripping the leading `overlap` bytes from every chunk after the first and
// concatenating reproduces the input exactly. Same input, same output.
func Split(docId, text string, size, overlap int) ([]ragmodel.Chunk, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ragmodel.ErrInvalidConfig, size, overlap)
	}

	if len(text) == 0 {
		return nil, nil
	}

	step := size - overlap
	var chunks []ragmodel.Chunk

	for start, seq := 0, 0; start < len(text); start, seq = start+step, seq+1 {
		end := start + size
		if end > len(text) {
			end = len(text)
		}

		chunks = append(chunks, ragmodel.Chunk{
			DocId: docId,
			Seq:   seq,
			Start: start,
			End:   end,
			Text:  text[start:end],
		})

		if end == len(text) {
			break
		}
	}

	return chunks, nil
}
