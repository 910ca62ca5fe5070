package printer

import (
	"github.com/davecgh/go-spew/spew"
)

// spewConfig renders struct internals directly instead of deferring to any
// fmt.Stringer a value implements, the way the teacher's debug package
// configures go-spew: DisableMethods keeps Debug from printing a value's
// String() (syntax.Token's, for instance, is just its text) instead of its
// fields.
var spewConfig = &spew.ConfigState{
	Indent:                  "   ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	ContinueOnMethod:        false,
}

// DebugString returns go-spew's full field-by-field rendering of v, for
// inspecting a parsed result or a combinator tree's exact shape beyond what
// DumpCombinator's grammar-notation rendering shows.
func DebugString(v any) string {
	return spewConfig.Sdump(v)
}

// Debug writes go-spew's rendering of v to stdout.
func Debug(v any) {
	spewConfig.Dump(v)
}
