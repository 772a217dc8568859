package app

import (
	"errors"
	"flag"
	"fmt"
)

const (
	CommandList   = "list"
	CommandAdd    = "add"
	CommandGet    = "get"
	CommandUpdate = "update"
	CommandDelete = "delete"
	CommandSeed   = "seed"
)

// Config holds the store CLI configuration.
type Config struct {
	Command string
	DBPath  string
	Name    string // illuminant name for add/get/update/delete
	CSVPath string // SPD source for add/update
	OutPath string // optional CSV destination for get
}

// NewConfigFromArgs parses a subcommand and its flags from the argument
// list (without the program name).
func NewConfigFromArgs(args []string) (*Config, error) {
	if len(args) == 0 {
		return nil, errors.New("usage: illumstore <list|add|get|update|delete|seed> [flags]")
	}

	c := Config{Command: args[0]}
	fs := flag.NewFlagSet(c.Command, flag.ContinueOnError)
	fs.StringVar(&c.DBPath, "db", "", "Path to the illuminant database file")

	switch c.Command {
	case CommandList, CommandSeed:
		// No extra flags.

	case CommandAdd, CommandUpdate:
		fs.StringVar(&c.Name, "name", "", "Illuminant name")
		fs.StringVar(&c.CSVPath, "csv", "", "Path to a CSV file of wavelength,power rows")

	case CommandGet:
		fs.StringVar(&c.Name, "name", "", "Illuminant name")
		fs.StringVar(&c.OutPath, "o", "", "Write the SPD as CSV to this path instead of stdout")

	case CommandDelete:
		fs.StringVar(&c.Name, "name", "", "Illuminant name")

	default:
		return nil, fmt.Errorf("unknown command '%s' (list, add, get, update, delete, seed)", c.Command)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}

	var err error
	switch {
	case c.DBPath == "":
		err = errors.New("db path is required")
	case c.Command != CommandList && c.Command != CommandSeed && c.Name == "":
		err = errors.New("illuminant name is required")
	case (c.Command == CommandAdd || c.Command == CommandUpdate) && c.CSVPath == "":
		err = errors.New("csv path is required")
	}
	if err != nil {
		fs.Usage()
		return nil, err
	}
	return &c, nil
}
