package message_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/pasteboard/clipboard"
	"go.klb.dev/pasteboard/internal/message"
)

func TestItem_Decode(t *testing.T) {
	t.Parallel()

	it := message.NewItem("image/png", []byte{0x89, 'P', 'N', 'G'})
	b, err := it.Decode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, b)

	empty, err := message.NewItem("x", []byte{}).Decode()
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = message.Item{Format: "x", Data: "!!"}.Decode()
	require.Error(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	in := &message.WriteRequest{Text: "hi", Items: []message.Item{message.NewItem("a", []byte("b"))}}
	var c message.Codec
	b, err := c.Marshal(in)
	require.NoError(t, err)

	out := new(message.WriteRequest)
	require.NoError(t, c.Unmarshal(b, out))
	assert.Equal(t, in, out)
	assert.Equal(t, "json", c.Name())

	require.Error(t, c.Unmarshal([]byte("{"), out))
}

func TestWriteRequest_Kind(t *testing.T) {
	t.Parallel()

	assert.True(t, (&message.WriteRequest{Text: "x"}).Portable())
	assert.False(t, (&message.WriteRequest{Text: "x"}).Raw())
	assert.True(t, (&message.WriteRequest{Items: []message.Item{{Format: "a"}}}).Raw())
	assert.False(t, (&message.WriteRequest{}).Portable())
}

func TestStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		code codes.Code
		kind error
	}{
		{fmt.Errorf("write: %w", clipboard.ErrInvalidArgument), codes.InvalidArgument, clipboard.ErrInvalidArgument},
		{fmt.Errorf("lookup: %w", clipboard.ErrUnsupportedFormat), codes.Unimplemented, clipboard.ErrUnsupportedFormat},
		{errors.New("boom"), codes.Internal, nil},
	}
	for _, tt := range tests {
		st := message.ToStatus(tt.err)
		assert.Equal(t, tt.code, status.Code(st))

		back := message.FromStatus(st)
		if tt.kind != nil {
			assert.ErrorIs(t, back, tt.kind)
			assert.Equal(t, tt.err.Error(), back.Error())
		} else {
			assert.Equal(t, codes.Internal, status.Code(back))
		}
	}

	assert.NoError(t, message.ToStatus(nil))
	assert.NoError(t, message.FromStatus(nil))
}
