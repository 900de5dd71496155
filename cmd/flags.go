package cmd

import "github.com/spf13/pflag"

// stringOverride returns the flag value when it was set, else fallback.
func stringOverride(flags *pflag.FlagSet, name, fallback string) string {
	if flags.Changed(name) {
		if v, err := flags.GetString(name); err == nil && v != "" {
			return v
		}
	}
	return fallback
}

// boolOverride returns the flag value when it was set, else fallback.
func boolOverride(flags *pflag.FlagSet, name string, fallback bool) bool {
	if flags.Changed(name) {
		if v, err := flags.GetBool(name); err == nil {
			return v
		}
	}
	return fallback
}
