package types

import "github.com/go-playground/validator/v10"

// validate is shared by every Validate method in the package. The validator
// caches struct metadata, so one instance serves all types.
var validate = validator.New()
