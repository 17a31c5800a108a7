package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SubstituteOptions carries placeholder values for the copy command.
type SubstituteOptions struct {
	Set []string
	Raw []string
}

// AddSubstituteArgs wires the placeholder flags.
func AddSubstituteArgs(cmd *cobra.Command, o *SubstituteOptions) {
	cmd.Flags().StringArrayVar(&o.Set, "set", nil,
		"Provide a placeholder value as tag=value. Repeatable.")
	cmd.Flags().StringArrayVar(&o.Raw, "raw", nil,
		"Always leave this tag unsubstituted for this macro. Repeatable.")
}

// Values parses the repeated --set flags into a tag to value map.
func (o *SubstituteOptions) Values() (map[string]string, error) {
	values := make(map[string]string, len(o.Set))
	for _, s := range o.Set {
		tag, value, ok := strings.Cut(s, "=")
		if !ok || tag == "" {
			return nil, fmt.Errorf("bad --set %q, want tag=value", s)
		}
		values[tag] = value
	}
	return values, nil
}
