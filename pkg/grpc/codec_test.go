package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodecProtoMessage(t *testing.T) {
	var c Codec
	data, err := c.Marshal(wrapperspb.Int64(55000))
	require.NoError(t, err)

	want, err := proto.Marshal(wrapperspb.Int64(55000))
	require.NoError(t, err)
	assert.Equal(t, want, data)

	out := new(wrapperspb.Int64Value)
	require.NoError(t, c.Unmarshal(data, out))
	assert.Equal(t, int64(55000), out.GetValue())
}

func TestCodecPlainStruct(t *testing.T) {
	type payload struct {
		AccountID int64  `json:"account_id"`
		Holder    string `json:"holder"`
	}
	var c Codec
	data, err := c.Marshal(&payload{AccountID: 1, Holder: "Giorgi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"account_id":1,"holder":"Giorgi"}`, string(data))

	var out payload
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, payload{AccountID: 1, Holder: "Giorgi"}, out)

	assert.Error(t, c.Unmarshal([]byte("{"), &out))
}
