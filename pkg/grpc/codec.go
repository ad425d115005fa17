package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName 是 JSON codec 在 gRPC content-subtype 中的名稱 (application/grpc+json)
const CodecName = "json"

func init() {
	encoding.RegisterCodec(JSONCodec{})
}

// JSONCodec 讓 gRPC 以 JSON 傳輸一般的 Go struct，
// 服務端與客戶端不需要 protoc 產生的訊息型別。
type JSONCodec struct{}

// Marshal 將訊息編碼為 JSON
func (JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec marshal %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal 將 JSON 解碼到訊息
func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec unmarshal %T: %w", v, err)
	}
	return nil
}

// Name 回傳 codec 名稱
func (JSONCodec) Name() string {
	return CodecName
}
