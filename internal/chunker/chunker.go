// Package chunker splits normalized policy text into bounded-size segments
// suitable for classification requests. Chunk boundaries always fall on
// paragraph breaks; sentences are never split.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

// charsPerToken is the approximate average characters per token for GPT
// tokenizers. Chunk sizing uses this fixed ratio instead of a real tokenizer.
const charsPerToken = 4

// paragraphSeparator re-joins paragraphs inside a chunk.
const paragraphSeparator = "\n\n"

// paragraphSplit matches the blank-line boundaries between paragraphs.
var paragraphSplit = regexp.MustCompile(`\n+`)

// Config holds chunk sizing bounds in tokens.
type Config struct {
	// MinTokens is the minimum chunk size; only the final chunk may be smaller.
	MinTokens int

	// MaxTokens is the target maximum chunk size. A single paragraph longer
	// than this is still emitted whole as one oversized chunk.
	MaxTokens int
}

// DefaultConfig returns the chunk sizing used for classification requests.
func DefaultConfig() Config {
	return Config{
		MinTokens: 1500,
		MaxTokens: 2000,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.MinTokens <= 0 {
		return fmt.Errorf("%w: MinTokens %d", ErrInvalidConfig, c.MinTokens)
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: MaxTokens %d", ErrInvalidConfig, c.MaxTokens)
	}

	if c.MinTokens >= c.MaxTokens {
		return fmt.Errorf("%w: MinTokens (%d) must be less than MaxTokens (%d)", ErrInvalidConfig, c.MinTokens, c.MaxTokens)
	}

	return nil
}

// Chunker splits policy text into classification-sized chunks.
type Chunker struct {
	minChars int
	maxChars int
}

// New creates a Chunker from the given configuration.
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Chunker, error) {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Chunker{
		minChars: cfg.MinTokens * charsPerToken,
		maxChars: cfg.MaxTokens * charsPerToken,
	}, nil
}

// MustNew creates a Chunker, panicking on invalid config.
// Use for known-good configurations.
func MustNew(cfg Config) *Chunker {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}

	return c
}

// Split divides text into chunks by greedily accumulating paragraphs.
// Paragraphs are appended while the buffer stays under maxChars. When the
// next paragraph would overflow, the buffer is flushed if it already reached
// minChars; otherwise the paragraph is appended anyway (overshoot is
// preferred over an undersized chunk) and the buffer is flushed as soon as
// minChars is reached. The trailing buffer becomes the final chunk and may be
// shorter than minChars. Empty input yields no chunks.
func (c *Chunker) Split(text string) []string {
	paragraphs := Paragraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		current.Reset()
	}

	for _, para := range paragraphs {
		if current.Len()+len(para) < c.maxChars {
			current.WriteString(para)
			current.WriteString(paragraphSeparator)

			continue
		}

		if current.Len() >= c.minChars {
			flush()
			current.WriteString(para)
			current.WriteString(paragraphSeparator)

			continue
		}

		// Undersized buffer: accept the overshoot rather than emitting a
		// chunk below minChars, then flush once the floor is reached.
		current.WriteString(para)
		current.WriteString(paragraphSeparator)

		if current.Len() >= c.minChars {
			flush()
		}
	}

	flush()

	return chunks
}

// Paragraphs splits text on blank-line boundaries, trims each paragraph, and
// drops empties. The concatenation of all chunks' paragraphs reproduces this
// sequence exactly.
func Paragraphs(text string) []string {
	var paragraphs []string

	for _, para := range paragraphSplit.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		paragraphs = append(paragraphs, para)
	}

	return paragraphs
}
