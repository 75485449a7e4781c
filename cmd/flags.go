package cmd

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/folio-dev/folio/internal/config"
)

// applyFontFlags folds the invoking command's font flags into the loaded
// config. The font flags exist on several commands, so each command reads
// its own flag set instead of sharing a viper binding that could only point
// at one of them.
func applyFontFlags(cmd *cobra.Command, cfg *config.Config) {
	if paths, _ := cmd.Flags().GetStringSlice("font-path"); len(paths) > 0 {
		cfg.Fonts.Paths = append(cfg.Fonts.Paths, paths...)
	}
	if skip, _ := cmd.Flags().GetBool("no-system-fonts"); skip {
		cfg.Fonts.System = false
	}
}

// AddFlagValidation wraps a flag's value so every Set goes through the
// validator, rejecting bad values at parse time instead of at bind time.
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	originalSet := flag.Value.Set
	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: originalSet,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidateListenAddr checks a host:port listen address.
func ValidateListenAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %s", port)
	}
	return nil
}
