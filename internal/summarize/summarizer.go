// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
)

const (
	// DefaultChunkWordThreshold is the word count above which a transcript is
	// chunked instead of summarized in one call.
	DefaultChunkWordThreshold = 300
	// DefaultMinSummaryWords and DefaultMaxSummaryWords bound the summary the
	// backend is asked for.
	DefaultMinSummaryWords = 30
	DefaultMaxSummaryWords = 130
	// DefaultDegenerateWordFloor is the minimum word count for a chunk summary
	// to be kept. Backends occasionally emit a word or two of filler for a
	// near-empty chunk; those are dropped.
	DefaultDegenerateWordFloor = 5
)

// Options configures a ChunkedSummarizer.
type Options struct {
	ChunkWordThreshold  int
	MinSummaryWords     int
	MaxSummaryWords     int
	DegenerateWordFloor int
}

// Result carries a summary and the stats the caller records as metrics.
type Result struct {
	Summary      string
	NoContent    bool
	InputWords   int
	SummaryWords int
	Chunks       int
}

// CompressionRatio is summary words divided by input words, so a 100-word
// transcript condensed to 25 words yields 0.25. Zero when there was no input.
func (r *Result) CompressionRatio() float64 {
	if r.InputWords == 0 {
		return 0
	}
	return float64(r.SummaryWords) / float64(r.InputWords)
}

// ChunkedSummarizer condenses transcripts with a backend summarizer, chunking
// text that exceeds the backend's comfortable input size.
type ChunkedSummarizer struct {
	backend domain.Summarizer
	options Options
}

// NewChunkedSummarizer creates a ChunkedSummarizer with defaults filled in.
func NewChunkedSummarizer(backend domain.Summarizer, options Options) *ChunkedSummarizer {
	if options.ChunkWordThreshold <= 0 {
		options.ChunkWordThreshold = DefaultChunkWordThreshold
	}
	if options.MinSummaryWords <= 0 {
		options.MinSummaryWords = DefaultMinSummaryWords
	}
	if options.MaxSummaryWords <= 0 {
		options.MaxSummaryWords = DefaultMaxSummaryWords
	}
	if options.DegenerateWordFloor <= 0 {
		options.DegenerateWordFloor = DefaultDegenerateWordFloor
	}
	return &ChunkedSummarizer{backend: backend, options: options}
}

// Summarize condenses text into a short summary. Text at or under the chunk
// threshold goes to the backend in one call. Longer text is chunked on line
// boundaries, each chunk is summarized, and the chunk summaries are stitched
// together with duplicate sentences removed.
//
// Blank input short-circuits without touching the backend.
func (s *ChunkedSummarizer) Summarize(ctx context.Context, text string) (*Result, error) {
	inputWords := WordCount(text)
	if inputWords == 0 {
		return &Result{NoContent: true}, nil
	}

	if inputWords <= s.options.ChunkWordThreshold {
		summary, err := s.backend.SummarizeText(ctx, text, s.options.MinSummaryWords, s.options.MaxSummaryWords)
		if err != nil {
			return nil, err
		}
		return &Result{
			Summary:      summary,
			InputWords:   inputWords,
			SummaryWords: WordCount(summary),
			Chunks:       1,
		}, nil
	}

	chunks := ChunkByLines(text, s.options.ChunkWordThreshold)
	slog.DebugContext(ctx, "summarizing transcript in chunks",
		"input_words", inputWords, "chunks", len(chunks))

	var parts []string
	for i, chunk := range chunks {
		summary, err := s.backend.SummarizeText(ctx, chunk, s.options.MinSummaryWords, s.options.MaxSummaryWords)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if WordCount(summary) < s.options.DegenerateWordFloor {
			slog.DebugContext(ctx, "dropping degenerate chunk summary",
				"chunk", i+1, "summary", summary)
			continue
		}
		parts = append(parts, terminateSentence(summary))
	}

	combined := dedupSentences(strings.Join(parts, " "))

	// A long transcript can still produce an oversized stitched summary.
	// One more pass brings it down to the target size.
	if WordCount(combined) > s.options.ChunkWordThreshold {
		reduced, err := s.backend.SummarizeText(ctx, combined, s.options.MinSummaryWords, s.options.MaxSummaryWords)
		if err != nil {
			slog.WarnContext(ctx, "final reduction pass failed, keeping stitched summary",
				logging.ErrKey, err)
		} else if WordCount(reduced) >= s.options.DegenerateWordFloor {
			combined = reduced
		}
	}

	return &Result{
		Summary:      combined,
		InputWords:   inputWords,
		SummaryWords: WordCount(combined),
		Chunks:       len(chunks),
	}, nil
}

// terminateSentence ensures a chunk summary ends with sentence punctuation so
// that stitched summaries read as prose.
func terminateSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return text
	}
	return text + "."
}

// dedupSentences removes exact duplicate sentences while preserving first
// occurrence order. Adjacent chunks of a transcript often cover the same
// ground and backends repeat themselves verbatim.
func dedupSentences(text string) string {
	sentences := splitSentences(text)
	unique := lo.Uniq(sentences)
	return strings.Join(unique, " ")
}

// splitSentences splits text after runs of sentence-terminating punctuation.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			atEnd := i == len(runes)-1
			followedBySpace := !atEnd && (runes[i+1] == ' ' || runes[i+1] == '\n')
			if atEnd || followedBySpace {
				sentence := strings.TrimSpace(current.String())
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				current.Reset()
			}
		}
	}
	if remainder := strings.TrimSpace(current.String()); remainder != "" {
		sentences = append(sentences, remainder)
	}

	return sentences
}
