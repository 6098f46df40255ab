package config

// Schema is the JSON Schema buddyd's startup Config is validated against,
// in the spirit of cc-backend's internal/config.Validate: compile the
// schema, unmarshal the instance, validate, surface every problem.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "depth": {"type": "integer", "minimum": 1, "maximum": 30},
    "device_name": {"type": "string", "minLength": 1},
    "listen_addr": {"type": "string", "minLength": 1},
    "metrics_addr": {"type": "string"},
    "nats_url": {"type": "string"},
    "stats_interval": {"type": "integer", "minimum": 0}
  },
  "required": ["depth", "device_name", "listen_addr"]
}`
