package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName      = "bool"
	booleanFlagImpliedValue  = "true"
	booleanFlagLiteralsHint  = "true/false, yes/no, on/off, 1/0"
	errorBooleanFlagLiteral  = "--%s expects one of %s, got %q"
	argumentTerminator       = "--"
	longFlagPrefix           = "--"
	flagValueSeparator       = "="
	normalizedBooleanFlagArg = "--%s=%s"
)

// parseBooleanLiteral maps the yes/no spellings accepted on the command line to a bool.
func parseBooleanLiteral(input string) (value bool, recognized bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "true", "t", "1", "yes", "y", "on":
		return true, true
	case "false", "f", "0", "no", "n", "off":
		return false, true
	}
	return false, false
}

// booleanFlagValue lets `--stdout no` behave like `--stdout=false`.
type booleanFlagValue struct {
	target *bool
	name   string
}

func (value *booleanFlagValue) Set(input string) error {
	parsed, recognized := parseBooleanLiteral(input)
	if !recognized {
		return fmt.Errorf(errorBooleanFlagLiteral, value.name, booleanFlagLiteralsHint, input)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flag := flagSet.VarPF(&booleanFlagValue{target: target, name: name}, name, "", usage)
	flag.DefValue = strconv.FormatBool(defaultValue)
	flag.NoOptDefVal = booleanFlagImpliedValue
}

// changedBoolean returns a copy of target when the named flag was set on the command line, and nil
// otherwise, so the result can be overlaid onto configuration pointer fields.
func changedBoolean(flagSet *pflag.FlagSet, name string, target *bool) *bool {
	if !flagSet.Changed(name) {
		return nil
	}
	value := *target
	return &value
}

// normalizeBooleanFlagArguments joins `--flag literal` into `--flag=literal` for boolean flags.
// pflag binds an optional value only through the equals form, so without this the literal would
// become a positional argument.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	booleanFlagNames := map[string]bool{}
	collectBooleanFlagNames(command, booleanFlagNames)

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminator {
			return append(normalized, arguments[index:]...)
		}
		name, isLongFlag := strings.CutPrefix(argument, longFlagPrefix)
		if isLongFlag && !strings.Contains(name, flagValueSeparator) && booleanFlagNames[name] && index+1 < len(arguments) {
			literal := arguments[index+1]
			if _, recognized := parseBooleanLiteral(literal); recognized && literal != "" && !strings.HasPrefix(literal, "-") {
				normalized = append(normalized, fmt.Sprintf(normalizedBooleanFlagArg, name, literal))
				index++
				continue
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, names map[string]bool) {
	record := func(flag *pflag.Flag) {
		if flag.Value.Type() == booleanFlagTypeName {
			names[flag.Name] = true
		}
	}
	command.PersistentFlags().VisitAll(record)
	command.Flags().VisitAll(record)
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, names)
	}
}
