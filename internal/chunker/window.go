package chunker

import (
	"strconv"
	"strings"

	"assistant/internal/domain"
)

// WindowChunker splits text into fixed-size rune windows with overlap.
// Boundaries ignore semantic units; overlap limits information loss at
// the seams.
type WindowChunker struct {
	chunkSize    int
	chunkOverlap int
}

func NewWindowChunker(chunkSize, chunkOverlap int) *WindowChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &WindowChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Segment, error) {
	runes := []rune(document.Content)
	if strings.TrimSpace(document.Content) == "" {
		return nil, nil
	}
	var segments []domain.Segment
	step := c.chunkSize - c.chunkOverlap
	idx := 0
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		text := strings.TrimSpace(string(runes[start:end]))
		if text != "" {
			segments = append(segments, domain.Segment{
				DocumentID: document.ID,
				SegmentID:  document.ID + ":" + strconv.Itoa(idx),
				Text:       text,
				Index:      idx,
			})
			idx++
		}
		if end == len(runes) {
			break
		}
	}
	return segments, nil
}
