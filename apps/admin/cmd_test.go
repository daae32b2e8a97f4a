package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/serafinsanchez/googleclassroom-portal/core/account"
	"github.com/serafinsanchez/googleclassroom-portal/storage/database/inmem"
	"github.com/serafinsanchez/googleclassroom-portal/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	validate, _ := testutil.NewValidator()
	repo := inmemdb.NewAccountRepository(inmemdb.Open())
	accSvc := account.NewService(repo, validate, &testutil.Logger{}, "secret")

	testutil.CreateAccount(t, accSvc, "g-1", "Ada Lovelace", "ada@school.test")
	testutil.CreateAccount(t, accSvc, "g-2", "Alan Turing", "alan@school.test")

	out := new(bytes.Buffer)
	return &commandLine{accSvc: accSvc, out: out}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkRun(t *testing.T, cli *commandLine, tt cliTest) error {
	t.Helper()
	args := append([]string{"admin"}, tt.args...)
	err := cli.run(args)
	if err != nil {
		if tt.wantErr != nil {
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		} else if tt.wantErrStr != "" {
			if err.Error() != tt.wantErrStr {
				t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
			}
		} else {
			t.Errorf("cli.run() unexpected error = %v", err)
		}
	} else if tt.wantErr != nil || tt.wantErrStr != "" {
		t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
	}
	return err
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "grading_log", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			checkRun(t, cli, tt)
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			checkRun(t, cli, tt)
			if !strings.Contains(out.String(), "Usage:") {
				t.Errorf("usage not printed, got %q", out.String())
			}
		})
	}
}

func Test_commandLine_accounts(t *testing.T) {
	cli, out := setup(t)

	tests := []struct {
		name      string
		args      []string
		wantOut   []string
		notOut    []string
	}{
		{
			name:    "all",
			args:    []string{"accounts"},
			wantOut: []string{"ID", "EMAIL", "ada@school.test", "alan@school.test", "Ada Lovelace"},
		},
		{
			name:    "search",
			args:    []string{"accounts", "-search", "TURING"},
			wantOut: []string{"alan@school.test"},
			notOut:  []string{"ada@school.test"},
		},
		{
			name:    "no match",
			args:    []string{"accounts", "-search", "hopper"},
			wantOut: []string{"LAST LOGIN"},
			notOut:  []string{"@school.test"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			checkRun(t, cli, cliTest{args: tt.args})
			for _, s := range tt.wantOut {
				if !strings.Contains(out.String(), s) {
					t.Errorf("output %q does not contain %q", out.String(), s)
				}
			}
			for _, s := range tt.notOut {
				if strings.Contains(out.String(), s) {
					t.Errorf("output %q contains %q", out.String(), s)
				}
			}
		})
	}
}

func Test_commandLine_revoke(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no email", args: []string{"revoke"}, wantErr: errHelp},
		{name: "account not found", args: []string{"revoke", "-email", "grace@school.test"}, wantErr: account.ErrNotFound},
		{name: "revoke", args: []string{"revoke", "-email", "Alan@School.test"}},
		{name: "already revoked", args: []string{"revoke", "-email", "alan@school.test"}, wantErr: account.ErrNotFound},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			checkRun(t, cli, tt)
		})
	}

	if _, err := cli.accSvc.Get("g-2"); err != account.ErrNotFound {
		t.Errorf("Get() error = %v, want %v", err, account.ErrNotFound)
	}
	if _, err := cli.accSvc.Get("g-1"); err != nil {
		t.Errorf("Get() unexpected error = %v", err)
	}
}

func Test_commandLine_rotateKey(t *testing.T) {
	cli, _ := setup(t)

	type extra struct {
		keys []string // one per prompt
	}
	tests := []cliTest{
		{name: "no key", args: []string{"rotate-key"}, wantErr: errHelp},
		{name: "keys do not match", args: []string{"rotate-key"}, extra: extra{keys: []string{"new", "neww"}}, wantErr: errKeyMismatch},
		{name: "rotate", args: []string{"rotate-key"}, extra: extra{keys: []string{"new", "new"}}},
	}
	for _, tt := range tests {
		tt := tt
		prompt := 0
		readPasswordFunc = func(fd int) ([]byte, error) {
			ex, ok := tt.extra.(extra)
			if !ok || prompt >= len(ex.keys) {
				return nil, nil
			}
			prompt++
			return []byte(ex.keys[prompt-1]), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := checkRun(t, cli, tt); err == nil {
				acc, err := cli.accSvc.Get("g-1")
				if err != nil {
					t.Fatalf("Get() failed, %v", err)
				}
				if acc.Token.AccessToken != "access-g-1" {
					t.Errorf("token = %q after rotation", acc.Token.AccessToken)
				}
			}
		})
	}
}
