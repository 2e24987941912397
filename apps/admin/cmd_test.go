package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/edumanage/edurisk/core"
	"github.com/edumanage/edurisk/core/student"
	inmemdb "github.com/edumanage/edurisk/storage/database/inmem"
	testutil "github.com/edumanage/edurisk/tests"
)

func setup(t *testing.T) (*commandLine, student.Repository) {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags)

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewStudentRepository(db)

	cli := &commandLine{
		conf:        &core.Config{Database: core.DatabaseConfig{Engine: "postgres"}},
		studentRepo: repo,
	}
	return cli, repo
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
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
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "alert", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
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
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli, repo := setup(t)

	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run(seed) error = %v", err)
	}
	students, _ := repo.QueryAllStudents()
	if len(students) != len(student.SeedRoster()) {
		t.Errorf("registry holds %d students, want %d", len(students), len(student.SeedRoster()))
	}

	// seeding never overwrites existing data
	if err := cli.run([]string{"admin", "seed"}); err != errRegistryNotEmpty {
		t.Errorf("cli.run(seed) error = %v, wantErr %v", err, errRegistryNotEmpty)
	}
}

func Test_commandLine_resetAndClearData(t *testing.T) {
	cli, repo := setup(t)

	testutil.CreateStudent(t, repo, "PRN9999999", "Straggler", "Z", "0000000000", null.Float64From(10), null.Float64From(2))

	if err := cli.run([]string{"admin", "reset"}); err != nil {
		t.Fatalf("cli.run(reset) error = %v", err)
	}
	if _, err := repo.GetStudentByPRN("PRN9999999"); err != student.ErrNotFound {
		t.Errorf("GetStudentByPRN() error = %v, want ErrNotFound", err)
	}
	students, _ := repo.QueryAllStudents()
	if len(students) != len(student.SeedRoster()) {
		t.Fatalf("registry holds %d students, want %d", len(students), len(student.SeedRoster()))
	}

	// pretend an upload happened, then wipe it
	s := students[0]
	s.Attendance = null.Float64From(42)
	s.RiskScore = 65
	s.RiskLevel = student.RiskMedium
	if err := repo.SaveStudents(s); err != nil {
		t.Fatalf("SaveStudents() error = %v", err)
	}

	if err := cli.run([]string{"admin", "cleardata"}); err != nil {
		t.Fatalf("cli.run(cleardata) error = %v", err)
	}
	s, _ = repo.GetStudentByPRN(s.PRN)
	if s.Attendance.Valid || s.RiskScore != 0 || s.RiskLevel != "" {
		t.Errorf("uploaded fields not cleared: %+v", s)
	}
	if s.Name == "" {
		t.Error("identity fields must survive cleardata")
	}
}

func Test_commandLine_help(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
