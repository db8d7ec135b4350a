// Package api defines the splitpay RPC surface: request and response
// messages, procedure names, handler constructors and typed clients.
//
// Messages are plain Go structs sent as JSON over the Connect protocol, so
// any HTTP client can call the server with a POST and a JSON body:
//
//	curl -H 'Content-Type: application/json' -d '{"email":"a@b.c","password":"..."}' \
//	    http://localhost:8080/splitpay.v1.AuthService/Login
package api

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the Connect codec name, sent as application/json.
const CodecName = "json"

// JSONCodec marshals messages with encoding/json. Protobuf messages (for
// example well-known types used as bare requests) go through protojson.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return CodecName }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) {
	if m, ok := msg.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return b, nil
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if m, ok := msg.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

// WithJSON registers JSONCodec on a handler or client.
func WithJSON() connect.Option {
	return connect.WithCodec(JSONCodec{})
}
