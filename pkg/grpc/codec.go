package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
)

// CodecName content-subtype，client 需以 grpc.CallContentSubtype(CodecName) 呼叫
const CodecName = "ledger"

// Codec 混合編碼器
// proto.Message (wrapperspb、emptypb、health 等) 走 protobuf 二進位，
// 其餘純 Go struct 走 JSON，服務因此不需要 protoc 產生的程式碼
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(Codec{})
}
