// Package api defines the Connect services of the Rachadinha server: message
// types, procedure names, handler constructors and typed clients.
//
// Messages are plain Go structs carried with a JSON codec registered under
// the "json" name, so browsers and curl can call the procedures with
// Content-Type: application/json.
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// CodecName is the codec name negotiated through the content type.
const CodecName = "json"

type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return CodecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// WithJSON returns the codec option used by every handler and client in this package.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

func handlerOptions(opts []connect.HandlerOption) connect.HandlerOption {
	return connect.WithHandlerOptions(append([]connect.HandlerOption{WithJSON()}, opts...)...)
}

func clientOptions(opts []connect.ClientOption) connect.ClientOption {
	return connect.WithClientOptions(append([]connect.ClientOption{WithJSON()}, opts...)...)
}
