package natsbus

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const notificationSchemaText = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["turn", "error", "finished"],
  "properties": {
    "turn": {"type": "integer", "minimum": 0},
    "new_request_count": {"type": "integer", "minimum": 0, "maximum": 50},
    "error": {"type": "boolean"},
    "finished": {"type": "boolean"},
    "trucks": {
      "type": "array",
      "maxItems": 250,
      "items": {
        "type": "object",
        "required": ["x", "y", "packages", "toll_turns"],
        "properties": {
          "x": {"type": "integer"},
          "y": {"type": "integer"},
          "packages": {"type": "integer", "minimum": 0, "maximum": 20},
          "toll_turns": {"type": "integer", "minimum": 0}
        }
      }
    },
    "new_requests": {
      "type": "array",
      "maxItems": 50,
      "items": {
        "type": "object",
        "required": ["id", "pickup", "dropoff", "expiry"],
        "properties": {
          "id": {"type": "integer", "minimum": 0},
          "pickup": {"$ref": "#/definitions/cell"},
          "dropoff": {"$ref": "#/definitions/cell"},
          "arrival": {"type": "integer", "minimum": 0},
          "expiry": {"type": "integer", "minimum": 0}
        }
      }
    }
  },
  "definitions": {
    "cell": {
      "type": "array",
      "items": {"type": "integer"},
      "minItems": 2,
      "maxItems": 2
    }
  }
}`

var notificationSchema = jsonschema.MustCompileString("notification.schema.json", notificationSchemaText)

func validateNotification(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	if err := notificationSchema.Validate(v); err != nil {
		return fmt.Errorf("validate notification: %w", err)
	}
	return nil
}
