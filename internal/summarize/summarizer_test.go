// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain/mocks"
)

func repeatedLines(line string, n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func TestChunkedSummarizerShortText(t *testing.T) {
	backend := &mocks.MockSummarizer{}
	s := NewChunkedSummarizer(backend, Options{})

	text := "Alice: We shipped the new API today.\nBob: Traffic looks healthy."
	backend.On("SummarizeText", mock.Anything, text, DefaultMinSummaryWords, DefaultMaxSummaryWords).
		Return("The team shipped the new API and traffic is healthy.", nil)

	result, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, "The team shipped the new API and traffic is healthy.", result.Summary)
	assert.Equal(t, 1, result.Chunks)
	assert.False(t, result.NoContent)
	assert.Greater(t, result.CompressionRatio(), 0.0)
	backend.AssertNumberOfCalls(t, "SummarizeText", 1)
}

func TestCompressionRatio(t *testing.T) {
	assert.Equal(t, 0.25, (&Result{InputWords: 100, SummaryWords: 25}).CompressionRatio())
	assert.Equal(t, 1.0, (&Result{InputWords: 40, SummaryWords: 40}).CompressionRatio())
	assert.Zero(t, (&Result{}).CompressionRatio())
	assert.Zero(t, (&Result{SummaryWords: 10}).CompressionRatio())
}

func TestChunkedSummarizerNoContent(t *testing.T) {
	backend := &mocks.MockSummarizer{}
	s := NewChunkedSummarizer(backend, Options{})

	for _, text := range []string{"", "   ", "\n\n"} {
		result, err := s.Summarize(context.Background(), text)
		require.NoError(t, err)
		assert.True(t, result.NoContent)
		assert.Empty(t, result.Summary)
	}
	// The backend must never be called for blank input.
	backend.AssertNotCalled(t, "SummarizeText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChunkedSummarizerThresholdBoundary(t *testing.T) {
	backend := &mocks.MockSummarizer{}
	s := NewChunkedSummarizer(backend, Options{ChunkWordThreshold: 20})

	// Exactly at the threshold: the text goes to the backend in one call,
	// unchunked.
	line := "Speaker: one two three four five six seven eight nine"
	text := line + "\n" + line
	require.Equal(t, 20, WordCount(text))

	backend.On("SummarizeText", mock.Anything, text, DefaultMinSummaryWords, DefaultMaxSummaryWords).
		Return("Numbers were recited twice.", nil).Once()

	result, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Chunks)
	assert.Equal(t, "Numbers were recited twice.", result.Summary)
	backend.AssertNumberOfCalls(t, "SummarizeText", 1)
}

func TestChunkedSummarizerLongText(t *testing.T) {
	backend := &mocks.MockSummarizer{}
	s := NewChunkedSummarizer(backend, Options{ChunkWordThreshold: 20})

	// 6 lines of 8 words each: 48 words, 3 chunks of 2 lines.
	text := repeatedLines("Speaker: one two three four five six seven", 6)

	backend.On("SummarizeText", mock.Anything, mock.AnythingOfType("string"), DefaultMinSummaryWords, DefaultMaxSummaryWords).
		Return("This chunk covered seven distinct topics today.", nil)

	result, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Chunks)
	// Identical chunk summaries collapse to one sentence.
	assert.Equal(t, "This chunk covered seven distinct topics today.", result.Summary)
	backend.AssertNumberOfCalls(t, "SummarizeText", 3)
}

func TestChunkedSummarizerDropsDegenerateChunkSummaries(t *testing.T) {
	backend := &mocks.MockSummarizer{}
	s := NewChunkedSummarizer(backend, Options{ChunkWordThreshold: 10})

	text := repeatedLines("Speaker: alpha beta gamma delta epsilon zeta eta", 4)

	chunks := ChunkByLines(text, 10)
	require.Len(t, chunks, 4)

	backend.On("SummarizeText", mock.Anything, chunks[0], mock.Anything, mock.Anything).
		Return("Team reviewed alphabet basics thoroughly", nil).Once()
	backend.On("SummarizeText", mock.Anything, chunks[1], mock.Anything, mock.Anything).
		Return("Okay.", nil).Once()
	backend.On("SummarizeText", mock.Anything, chunks[2], mock.Anything, mock.Anything).
		Return("More letters were covered later", nil).Once()
	backend.On("SummarizeText", mock.Anything, chunks[3], mock.Anything, mock.Anything).
		Return("", nil).Once()

	result, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t,
		"Team reviewed alphabet basics thoroughly. More letters were covered later.",
		result.Summary)
}

func TestChunkedSummarizerDeduplicatesSentences(t *testing.T) {
	backend := &mocks.MockSummarizer{}
	s := NewChunkedSummarizer(backend, Options{ChunkWordThreshold: 15})

	text := repeatedLines("Speaker: alpha beta gamma delta epsilon zeta eta", 2)
	chunks := ChunkByLines(text, 15)
	require.Len(t, chunks, 2)

	backend.On("SummarizeText", mock.Anything, chunks[0], mock.Anything, mock.Anything).
		Return("We shipped the API. Latency improved a lot.", nil).Once()
	backend.On("SummarizeText", mock.Anything, chunks[1], mock.Anything, mock.Anything).
		Return("We shipped the API. Follow-up work remains open.", nil).Once()

	result, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t,
		"We shipped the API. Latency improved a lot. Follow-up work remains open.",
		result.Summary)
}

func TestChunkedSummarizerChunkFailure(t *testing.T) {
	backend := &mocks.MockSummarizer{}
	s := NewChunkedSummarizer(backend, Options{ChunkWordThreshold: 10})

	text := repeatedLines("Speaker: alpha beta gamma delta epsilon zeta eta", 2)

	backend.On("SummarizeText", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.Anything).
		Return("", errors.New("backend down"))

	_, err := s.Summarize(context.Background(), text)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 1/2")
}

func TestChunkedSummarizerFinalReductionPass(t *testing.T) {
	backend := &mocks.MockSummarizer{}
	s := NewChunkedSummarizer(backend, Options{ChunkWordThreshold: 10})

	text := repeatedLines("Speaker: alpha beta gamma delta epsilon zeta eta", 4)
	chunks := ChunkByLines(text, 10)
	require.Len(t, chunks, 4)

	// Each chunk summary is distinct and long enough that the stitched result
	// exceeds the threshold and triggers one reduction pass.
	long := func(tag string) string {
		return tag + " " + strings.Repeat("detail ", 5) + "end"
	}
	for i, chunk := range chunks {
		backend.On("SummarizeText", mock.Anything, chunk, mock.Anything, mock.Anything).
			Return(long(string(rune('a'+i))), nil).Once()
	}
	backend.On("SummarizeText", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.Anything).
		Return("Condensed final summary of the meeting.", nil).Once()

	result, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, "Condensed final summary of the meeting.", result.Summary)
	backend.AssertNumberOfCalls(t, "SummarizeText", 5)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "simple sentences",
			text:     "First one. Second one! Third one?",
			expected: []string{"First one.", "Second one!", "Third one?"},
		},
		{
			name:     "trailing fragment without punctuation",
			text:     "Complete sentence. dangling fragment",
			expected: []string{"Complete sentence.", "dangling fragment"},
		},
		{
			name:     "decimal numbers are not split",
			text:     "Latency dropped to 1.5 seconds. Good result.",
			expected: []string{"Latency dropped to 1.5 seconds.", "Good result."},
		},
		{
			name:     "empty text",
			text:     "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitSentences(tt.text))
		})
	}
}

func TestTerminateSentence(t *testing.T) {
	assert.Equal(t, "Done.", terminateSentence("Done"))
	assert.Equal(t, "Done.", terminateSentence("Done."))
	assert.Equal(t, "Really?", terminateSentence("Really?"))
	assert.Equal(t, "", terminateSentence("   "))
}
