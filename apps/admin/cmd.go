package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/serafinsanchez/googleclassroom-portal/core/account"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sql.DB
	accSvc *account.Service
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...]  - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Fprintln(cli.out, "  accounts [-search TEXT]    - list the signed in teachers")
	fmt.Fprintln(cli.out, "  revoke -email EMAIL        - delete an account and the Google tokens stored with it")
	fmt.Fprintln(cli.out, "  rotate-key                 - re-seal stored Google tokens under a new secret key. The key will be prompted next.")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	accountsCmd := flag.NewFlagSet("accounts", flag.ExitOnError)
	accountsSearch := accountsCmd.String("search", "", "Only list the accounts whose name or email contains this text.")

	revokeCmd := flag.NewFlagSet("revoke", flag.ExitOnError)
	revokeEmail := revokeCmd.String("email", "", "The email of the account to revoke.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "accounts":
		if err := accountsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listAccounts(*accountsSearch)
	case "revoke":
		if err := revokeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *revokeEmail == "" {
			revokeCmd.Usage()
			return errHelp
		}
		return cli.revoke(*revokeEmail)
	case "rotate-key":
		fmt.Fprint(cli.out, "Enter new secret key:")
		key, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(key) == 0 {
			cli.printUsage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Confirm new secret key:")
		confirm, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if string(confirm) != string(key) {
			return errKeyMismatch
		}
		return cli.rotateKey(string(key))
	default:
		cli.printUsage()
		return errHelp
	}
}
