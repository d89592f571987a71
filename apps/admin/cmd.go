package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/kat-co/vala"
	"golang.org/x/term"

	"github.com/geeky-hamster/Quizme/core/notify"
	"github.com/geeky-hamster/Quizme/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB // nil with the in-memory engine
	usrSvc   *user.Service
	notifier *notify.Notifier
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, redo, version...)")
	fmt.Fprintln(cli.out, "  addadmin -username USERNAME [-fullname NAME] - create or promote an admin account")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - reset user's password")
	fmt.Fprintln(cli.out, "  notify daily|monthly - send the daily reminders or the monthly activity reports now")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// readPassword prompts for a password on the terminal.
func (cli *commandLine) readPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	return string(pwd), err
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])

	case "addadmin":
		cmd := cli.newFlagSet("addadmin")
		uname := cmd.String("username", "", "The admin's username (email address). The password will be prompted next.")
		fullName := cmd.String("fullname", "", "The admin's full name. Defaults to the username.")
		if err := cmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if err := vala.BeginValidation().Validate(vala.StringNotEmpty(*uname, "username")).Check(); err != nil {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.addAdmin(ctx, *uname, pwd, *fullName)

	case "resetpassword":
		cmd := cli.newFlagSet("resetpassword")
		uname := cmd.String("username", "", "The user's username. The password will be prompted next.")
		if err := cmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if err := vala.BeginValidation().Validate(vala.StringNotEmpty(*uname, "username")).Check(); err != nil {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *uname, pwd)

	case "notify":
		if len(args) != 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.notify(ctx, args[2])

	default:
		cli.printUsage()
		return errHelp
	}
}
