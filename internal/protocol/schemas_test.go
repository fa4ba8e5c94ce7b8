package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	cmdSchema := compile("cmd.schema.json")
	resultSchema := compile("result.schema.json")
	eventSchema := compile("event.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "player_name":"alice",
	  "world_id":"overworld",
	  "pos":[12,64,-3]
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "player_id":"alice"
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var buy any
	_ = json.Unmarshal([]byte(`{
	  "type":"CMD",
	  "protocol_version":"1.0",
	  "id":"C1",
	  "op":"BUY",
	  "store":"General Goods",
	  "item":"PLANK",
	  "quantity":10
	}`), &buy)
	validate(cmdSchema, buy)

	var where any
	_ = json.Unmarshal([]byte(`{
	  "type":"CMD",
	  "protocol_version":"1.0",
	  "id":"C2",
	  "op":"WHERE",
	  "world_id":"overworld",
	  "pos":[0,64,0]
	}`), &where)
	validate(cmdSchema, where)

	var result any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "protocol_version":"1.0",
	  "ref":"C1",
	  "ok":true,
	  "store":{"id":"9f0c…","name":"General Goods","owner":"alice"},
	  "item":"PLANK",
	  "quantity":10,
	  "unit_price":"2",
	  "amount":"20"
	}`), &result)
	validate(resultSchema, result)

	var rejected any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "protocol_version":"1.0",
	  "ref":"C3",
	  "ok":false,
	  "code":"E_INSUFFICIENT_STOCK",
	  "message":"store is out of stock"
	}`), &rejected)
	validate(resultSchema, rejected)

	var event any
	_ = json.Unmarshal([]byte(`{
	  "type":"EVENT",
	  "protocol_version":"1.0",
	  "event":"SHOP_ENTER",
	  "store":{"id":"9f0c…","name":"General Goods"}
	}`), &event)
	validate(eventSchema, event)
}
