package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

func encode(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.SetGray(x, 0, color.Gray{Y: uint8(x)})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encode(t, 20, 10)

	frame, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 20, frame.Width())
	assert.Equal(t, 10, frame.Height())
	assert.Equal(t, data, frame.Data)
	assert.False(t, frame.CapturedAt.IsZero())
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte("not a jpeg"))

	var decodeErr *types.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "Image Error", types.Title(err))

	_, err = Decode(nil)
	assert.Error(t, err)
}
