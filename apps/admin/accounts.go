package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/serafinsanchez/googleclassroom-portal/core/account"
)

var errKeyMismatch = errors.New("secret keys do not match")

func (cli *commandLine) listAccounts(search string) error {
	accs, err := cli.accSvc.Query(account.QueryFilter{Search: search})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tLAST LOGIN")
	for _, acc := range accs {
		lastLogin := "-"
		if acc.LastLogin.Valid {
			lastLogin = acc.LastLogin.Time.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", acc.ID, acc.Email, acc.Name, lastLogin)
	}
	return w.Flush()
}

func (cli *commandLine) revoke(email string) error {
	if err := cli.accSvc.Revoke(email); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "account %s revoked\n", email)
	return nil
}

func (cli *commandLine) rotateKey(key string) error {
	n, err := cli.accSvc.RotateSecretKey(key)
	if err != nil {
		return fmt.Errorf("%d accounts re-sealed before failure: %w", n, err)
	}
	fmt.Fprintf(cli.out, "%d accounts re-sealed; set secretKey to the new key before restarting the API\n", n)
	return nil
}
