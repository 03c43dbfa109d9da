package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance returns the shared validator. Field names in errors
// use the koanf key so messages match the config file.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks field ranges and the cross-field constraints the struct
// tags cannot express.
func (c *Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	g := c.Globe
	if g.MaxDistance <= g.MinDistance {
		return fmt.Errorf("%w: globe.max_distance (%g) must exceed globe.min_distance (%g)",
			ErrInvalid, g.MaxDistance, g.MinDistance)
	}
	if g.InitialDistance < g.MinDistance || g.InitialDistance > g.MaxDistance {
		return fmt.Errorf("%w: globe.initial_distance (%g) outside [%g, %g]",
			ErrInvalid, g.InitialDistance, g.MinDistance, g.MaxDistance)
	}
	if t := c.Cluster.DistanceThreshold; t > 0 && (t <= g.MinDistance || t > g.MaxDistance) {
		return fmt.Errorf("%w: cluster.distance_threshold (%g) must be 0 or within (%g, %g]",
			ErrInvalid, t, g.MinDistance, g.MaxDistance)
	}
	return nil
}

// fieldMessage renders one failure as "section.key: reason".
func fieldMessage(fe validator.FieldError) string {
	key := fe.Namespace()
	if i := strings.IndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %v", key, fe.Param(), fe.Value())
	case "hostname_port":
		return fmt.Sprintf("%s: must be host:port, got %q", key, fe.Value())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("%s: must be %s %s, got %v", key, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s: failed %s", key, fe.Tag())
	}
}
