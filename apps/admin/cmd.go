package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/tuition/apps"
	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/core/teacher"
	"github.com/trezcool/tuition/storage"
)

var (
	isTerminalFunc = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) } // mockable

	errHelp    = errors.New("help provided")
	errAborted = errors.New("aborted")
)

type commandLine struct {
	conf     *core.Config
	repos    *storage.Repositories
	students *student.Service
	teachers *teacher.Service
	openDB   func() (*sql.DB, error)
	in       io.Reader
	out      io.Writer
}

func newCommandLine(conf *core.Config, logger core.Logger, repos *storage.Repositories, openDB func() (*sql.DB, error)) *commandLine {
	return &commandLine{
		conf:     conf,
		repos:    repos,
		students: student.NewService(repos.Students, logger),
		teachers: teacher.NewService(repos.Teachers, logger),
		openDB:   openDB,
		in:       os.Stdin,
		out:      os.Stdout,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  init                         - create the missing sheets & store the default price table")
	fmt.Fprintln(cli.out, "  migrateprices                - convert a legacy item,price sheet to the level matrix")
	fmt.Fprintln(cli.out, "  deletestudent -id ID [-yes]  - delete a student")
	fmt.Fprintln(cli.out, "  deleteteacher -id ID [-yes]  - delete a teacher")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...]    - run a goose command against the postgres store")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	switch args[1] {
	case "init":
		return cli.init(ctx)
	case "migrateprices":
		return cli.migratePrices(ctx)
	case "deletestudent", "deleteteacher":
		cmd := flag.NewFlagSet(args[1], flag.ContinueOnError)
		cmd.SetOutput(cli.out)
		id := cmd.String("id", "", "The id of the record to delete.")
		yes := cmd.Bool("yes", false, "Do not ask for confirmation.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" {
			cmd.Usage()
			return errHelp
		}
		if args[1] == "deletestudent" {
			return cli.deleteStudent(ctx, *id, *yes)
		}
		return cli.deleteTeacher(ctx, *id, *yes)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) init(ctx context.Context) error {
	if err := cli.repos.Init(ctx); err != nil {
		return err
	}
	if _, err := cli.repos.Prices.GetTable(ctx); err == nil {
		fmt.Fprintln(cli.out, "store ready")
		return nil
	} else if errors.Cause(err) != pricing.ErrNoPrices {
		return err
	}
	if _, err := cli.repos.Prices.SaveTable(ctx, pricing.Defaults(), ""); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "store ready, default prices saved")
	return nil
}

func (cli *commandLine) migratePrices(ctx context.Context) error {
	migrated, err := cli.repos.MigrateLegacyPrices(ctx)
	if err != nil {
		return err
	}
	if migrated {
		fmt.Fprintln(cli.out, "prices converted to the level matrix")
	} else {
		fmt.Fprintln(cli.out, "nothing to convert")
	}
	return nil
}

// confirm asks before a destructive action. Without a terminal, only -yes proceeds.
func (cli *commandLine) confirm(question string, yes bool) error {
	if yes {
		return nil
	}
	if !isTerminalFunc() {
		return apps.NewArgumentError("stdin is not a terminal: pass -yes to confirm")
	}
	fmt.Fprintf(cli.out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(cli.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
		return errAborted
	}
	return nil
}

func (cli *commandLine) deleteStudent(ctx context.Context, id string, yes bool) error {
	s, err := cli.students.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err = cli.confirm(fmt.Sprintf("Delete student %s (%s)?", s.Name, s.ID), yes); err != nil {
		return err
	}
	if err = cli.students.Delete(ctx, s.ID); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "student %s deleted\n", s.ID)
	return nil
}

func (cli *commandLine) deleteTeacher(ctx context.Context, id string, yes bool) error {
	t, err := cli.teachers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err = cli.confirm(fmt.Sprintf("Delete teacher %s (%s)?", t.Name, t.ID), yes); err != nil {
		return err
	}
	if err = cli.teachers.Delete(ctx, t.ID); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "teacher %s deleted\n", t.ID)
	return nil
}
