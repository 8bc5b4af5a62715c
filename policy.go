package until

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance.
var validate = validator.New()

// Policy is the serializable form of the wait options, suitable for
// configuration files.
//
//	timeout: 200
//	throwOnTimeout: true
//	deep: false
type Policy struct {
	// Timeout in milliseconds. Nil means no timer.
	Timeout *int `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"omitempty,gte=0"`

	// ThrowOnTimeout settles a timed out wait as a TimeoutError.
	ThrowOnTimeout bool `json:"throwOnTimeout" yaml:"throwOnTimeout"`

	// Deep enables structural equality and containment checks.
	Deep bool `json:"deep" yaml:"deep"`
}

// Validate checks the policy against its validation tags.
func (p Policy) Validate() error {
	return validate.Struct(p)
}

// TimeoutDuration returns the timeout as a duration and whether one is set.
func (p Policy) TimeoutDuration() (time.Duration, bool) {
	if p.Timeout == nil {
		return 0, false
	}
	return time.Duration(*p.Timeout) * time.Millisecond, true
}

// ParsePolicy decodes and validates a Policy. A nil codec auto-detects JSON
// or YAML from the content.
func ParsePolicy(data []byte, codec Codec) (Policy, error) {
	if codec == nil {
		codec = AutoCodec{}
	}
	var p Policy
	if err := codec.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("unmarshal failed: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("validation failed: %w", err)
	}
	return p, nil
}
