package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestPool_ReusesConnection(t *testing.T) {
	p := NewPool()
	defer p.Close()

	c1, err := p.GetConnection("localhost:50051")
	require.NoError(t, err)
	c2, err := p.GetConnection("localhost:50051")
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	c3, err := p.GetConnection("localhost:50052")
	require.NoError(t, err)
	assert.NotSame(t, c1, c3)

	require.NoError(t, p.Close())

	// 關閉後重新建立
	c4, err := p.GetConnection("localhost:50051")
	require.NoError(t, err)
	assert.NotSame(t, c1, c4)
}

func TestJSONCodec(t *testing.T) {
	codec := encoding.GetCodec(CodecName)
	require.NotNil(t, codec)
	assert.Equal(t, CodecName, codec.Name())

	type msg struct {
		ID     uint32 `json:"id"`
		Amount int64  `json:"amount"`
	}
	data, err := codec.Marshal(msg{ID: 3, Amount: -5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"amount":-5}`, string(data))

	var out msg
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Equal(t, msg{ID: 3, Amount: -5}, out)

	// 空 body 視為零值訊息
	var empty msg
	require.NoError(t, codec.Unmarshal(nil, &empty))
	assert.Error(t, codec.Unmarshal([]byte("{"), &empty))
}
