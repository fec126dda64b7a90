package gasp

import "github.com/kallsyms/gasp/internal/stackmachine"

// defaultIgnoredTags is the spec's default ignored-tag set: LLM
// "reasoning" or system scaffolding that must never appear in extracted
// output, extensible by the host via WithIgnoredTags.
var defaultIgnoredTags = []string{"think", "thinking", "system", "thought"}

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved(def int) int {
	if !o.set {
		return def
	}
	return o.value
}

// Options configures a Parser. The zero value is not directly usable;
// build one with NewOptions and the With* methods, mirroring the teacher
// repo's LoadOptions functional-options shape.
type Options struct {
	ignoredTags     []string
	maxBufferedText intOption
	materializer    stackmachine.Materializer
}

// NewOptions returns a default, valid Options value.
func NewOptions() Options {
	return Options{ignoredTags: append([]string(nil), defaultIgnoredTags...)}
}

// WithIgnoredTags appends tags to the ignored-tag set (spec §6's "plus
// user additions"). The built-in default set is always kept.
func (o Options) WithIgnoredTags(tags ...string) Options {
	o.ignoredTags = append(append([]string(nil), o.ignoredTags...), tags...)
	return o
}

// WithMaxBufferedText overrides the memory budget on accumulated
// primitive text (spec §7; 0 leaves the 64 MiB default in place).
func (o Options) WithMaxBufferedText(bytes int) Options {
	o.maxBufferedText = intOption{value: bytes, set: true}
	return o
}

// WithMaterializer installs a materialization hook, invoked as
// `__partial__(cls, field_map)` per spec §6 to customize how record
// values are constructed from their field map.
func (o Options) WithMaterializer(m stackmachine.Materializer) Options {
	o.materializer = m
	return o
}

func (o Options) resolvedMaxBufferedText() int {
	return o.maxBufferedText.resolved(stackmachine.DefaultMaxBufferedText)
}
