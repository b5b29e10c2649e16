package rpc

import (
	"encoding/json"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct renders v through its JSON form. v must encode to a JSON object.
func toStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode reply")
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, errors.Wrap(err, "build struct")
	}
	return s, nil
}

// fromStruct decodes s into out through its JSON form.
func fromStruct(s *structpb.Struct, out interface{}) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode struct")
	}
	return json.Unmarshal(b, out)
}
