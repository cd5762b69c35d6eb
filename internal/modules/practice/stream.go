package practice

import (
	"iter"
	"strings"
)

// FeedbackFilter passes through the feedback part of a streamed evaluation
// and swallows the delimiter and score block, even when the delimiter is
// split across chunks.
type FeedbackFilter struct {
	pending string
	done    bool
}

// Write returns the text that is safe to show for this chunk.
func (f *FeedbackFilter) Write(chunk string) string {
	if f.done {
		return ""
	}
	buf := f.pending + chunk
	f.pending = ""
	if i := strings.Index(buf, Delimiter); i >= 0 {
		f.done = true
		return buf[:i]
	}
	// Hold back a trailing run of up to two '#' that may start a delimiter.
	hold := 0
	for hold < len(Delimiter)-1 && hold < len(buf) && buf[len(buf)-1-hold] == '#' {
		hold++
	}
	f.pending = buf[len(buf)-hold:]
	return buf[:len(buf)-hold]
}

// Flush returns any held text once the stream has ended without a
// delimiter.
func (f *FeedbackFilter) Flush() string {
	if f.done {
		return ""
	}
	out := f.pending
	f.pending = ""
	return out
}

// Done reports whether the delimiter has been seen.
func (f *FeedbackFilter) Done() bool { return f.done }

// Accumulate consumes chunks once and returns the full text. onFeedback, if
// set, receives the feedback-only portion as it arrives. On error the text
// read so far is returned with it.
func Accumulate(chunks iter.Seq2[string, error], onFeedback func(string)) (string, error) {
	var sb strings.Builder
	var filter FeedbackFilter
	for chunk, err := range chunks {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk)
		if onFeedback != nil {
			if s := filter.Write(chunk); s != "" {
				onFeedback(s)
			}
		}
	}
	if onFeedback != nil {
		if s := filter.Flush(); s != "" {
			onFeedback(s)
		}
	}
	return sb.String(), nil
}
