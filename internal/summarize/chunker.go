// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package summarize condenses meeting transcripts into short summaries by
// chunking long text, summarizing each chunk, and stitching the results.
package summarize

import "strings"

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ChunkByLines splits text into chunks of at most maxWords words each,
// accumulating whole lines so that a speaker turn is never cut mid-line.
// A single line longer than maxWords is the exception: it is sliced by
// words, since it cannot fit any chunk intact.
func ChunkByLines(text string, maxWords int) []string {
	if maxWords <= 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentWords := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
			currentWords = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lineWords := WordCount(line)
		if lineWords > maxWords {
			flush()
			chunks = append(chunks, sliceByWords(line, maxWords)...)
			continue
		}

		if currentWords+lineWords > maxWords {
			flush()
		}
		current = append(current, line)
		currentWords += lineWords
	}
	flush()

	return chunks
}

// sliceByWords cuts a single oversized line into maxWords-sized pieces.
func sliceByWords(line string, maxWords int) []string {
	words := strings.Fields(line)
	var pieces []string
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		pieces = append(pieces, strings.Join(words[start:end], " "))
	}
	return pieces
}
