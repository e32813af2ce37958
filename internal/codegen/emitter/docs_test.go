package emitter

import (
	"testing"

	"github.com/Alia5/tsdecl/internal/catalog"

	"github.com/stretchr/testify/assert"
)

func TestJSDocAppender(t *testing.T) {
	b := NewBuilder("  ")
	docs := JSDocAppender{}

	docs.TypeDoc(b, &catalog.TypeNode{Doc: "A search request."}, "SearchRequest")
	restore := b.Indent()
	docs.MemberDoc(b, &catalog.MemberNode{Doc: "Number of hits.\n\nDefaults to 10. */"}, "size", "number")
	docs.EnumValueDoc(b, &catalog.EnumValueNode{})
	restore()

	want := "/** A search request. */\n" +
		"  /**\n" +
		"   * Number of hits.\n" +
		"   *\n" +
		"   * Defaults to 10. *\\/\n" +
		"   */\n"
	assert.Equal(t, want, b.String())
}

func TestNopDocAppender(t *testing.T) {
	b := NewBuilder("")
	docs := NopDocAppender{}
	docs.TypeDoc(b, &catalog.TypeNode{Doc: "x"}, "X")
	docs.EnumDoc(b, &catalog.TypeNode{Doc: "x"}, "X")
	docs.MemberDoc(b, &catalog.MemberNode{Doc: "x"}, "x", "string")
	docs.EnumValueDoc(b, &catalog.EnumValueNode{Doc: "x"})
	assert.Empty(t, b.String())
}
