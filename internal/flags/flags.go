package flags

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Def defines a command-line flag bound to a viper configuration key.
type (
	Type interface {
		string | int | bool
	}

	Def[T Type] struct {
		Name         string
		ViperKey     string
		DefaultValue T
		Description  string
	}
)

func New[T Type](name, viperKey string, defaultValue T, description string) Def[T] {
	return Def[T]{
		Name:         name,
		ViperKey:     viperKey,
		DefaultValue: defaultValue,
		Description:  description,
	}
}

// Declare declares every flag on set and binds it to its viper key.
func Declare[T Type](set *pflag.FlagSet, defs []Def[T]) error {
	for _, def := range defs {
		if err := declare(set, def.Name, def.ViperKey, def.DefaultValue, def.Description); err != nil {
			return err
		}
	}
	return nil
}

// MustDeclare is Declare for init functions.
func MustDeclare[T Type](set *pflag.FlagSet, defs []Def[T]) {
	if err := Declare(set, defs); err != nil {
		panic(err)
	}
}

// declare declares a single flag. The type parameter T determines the flag
// type (string, int, or bool).
func declare[T Type](set *pflag.FlagSet, flagName, viperKey string, defaultValue T, description string) error {
	switch v := any(defaultValue).(type) {
	case string:
		set.String(flagName, v, description)
	case int:
		set.Int(flagName, v, description)
	case bool:
		set.Bool(flagName, v, description)
	}
	return viper.BindPFlag(viperKey, set.Lookup(flagName))
}
