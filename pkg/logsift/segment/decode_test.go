package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	assert.Equal(t, "plain", Decode([]byte("plain")))
	assert.Equal(t, "bom", Decode([]byte("\xef\xbb\xbfbom")), "UTF-8 BOM is stripped")
	assert.Equal(t, "hi", Decode([]byte{0xff, 0xfe, 'h', 0, 'i', 0}), "UTF-16LE with BOM")
	assert.Equal(t, "a�b", Decode([]byte("a\xffb")), "invalid byte replaced")
}
