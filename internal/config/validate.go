package config

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate checks cfg against Schema and a handful of semantic rules the
// schema can't express (e.g. the resulting MemSize must fit in an int).
// Every problem found is collected into a single multierror rather than
// returning on the first failure, so an operator sees the whole picture in
// one run.
func Validate(cfg Config) error {
	var result *multierror.Error

	sch, err := jsonschema.CompileString("buddyd-config.json", Schema)
	if err != nil {
		// A broken schema is a programming error in this package, not a
		// user config problem, but it still has to surface somewhere.
		return fmt.Errorf("config: internal schema error: %w", err)
	}

	b, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: cannot marshal config for validation: %w", err)
	}
	var instance any
	if err := json.Unmarshal(b, &instance); err != nil {
		return fmt.Errorf("config: cannot decode config for validation: %w", err)
	}
	if err := sch.Validate(instance); err != nil {
		// %#v prints every failing cause; the plain error text names only
		// the first one.
		result = multierror.Append(result, fmt.Errorf("schema: %#v", err))
	}

	if cfg.Depth >= 1 {
		leafSize := 1 << uint(cfg.Depth)
		if leafSize <= 0 {
			result = multierror.Append(result, fmt.Errorf("depth %d overflows leaf size computation", cfg.Depth))
		} else if memSize := leafSize * leafSize; memSize <= 0 {
			result = multierror.Append(result, fmt.Errorf("depth %d produces a pool size that overflows int", cfg.Depth))
		}
	}

	return result.ErrorOrNil()
}
