// Package serializer 提供缓存值的序列化抽象。
package serializer

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wenqiu/seckill/xerrors"
)

// ErrUnsupported 不支持的序列化器类型
var ErrUnsupported = xerrors.New("serializer: unsupported type")

// Serializer 定义序列化接口
type Serializer interface {
	Marshal(value any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
}

// JSON 标准库 JSON 序列化器，兼容性最好
type JSON struct{}

func (JSON) Marshal(value any) ([]byte, error) {
	return json.Marshal(value)
}

func (JSON) Unmarshal(data []byte, dest any) error {
	return json.Unmarshal(data, dest)
}

// MessagePack 二进制序列化器，速度更快、体积更小
type MessagePack struct{}

func (MessagePack) Marshal(value any) ([]byte, error) {
	return msgpack.Marshal(value)
}

func (MessagePack) Unmarshal(data []byte, dest any) error {
	return msgpack.Unmarshal(data, dest)
}

// New 根据类型名创建序列化器。
//
// 支持的类型:
//   - "json"（默认）
//   - "msgpack"
func New(serializerType string) (Serializer, error) {
	switch serializerType {
	case "json", "":
		return JSON{}, nil
	case "msgpack":
		return MessagePack{}, nil
	default:
		return nil, xerrors.Wrapf(ErrUnsupported, "%q", serializerType)
	}
}
