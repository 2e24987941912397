package main

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edumanage/edurisk/core"
	"github.com/edumanage/edurisk/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db          *sqlx.DB
	conf        *core.Config
	studentRepo student.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run a database migration command (up, down, status, ...)")
	fmt.Println("  seed                   - install the seed roster into an empty registry")
	fmt.Println("  reset                  - discard the registry and restore the seed roster")
	fmt.Println("  cleardata              - unset all upload-derived fields, registry-wide")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		return cli.seed()
	case "reset":
		return cli.reset()
	case "cleardata":
		return cli.clearData()
	default:
		cli.printUsage()
		return errHelp
	}
}
