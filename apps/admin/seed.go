package main

import (
	"errors"

	"github.com/edumanage/edurisk/core/student"
)

var errRegistryNotEmpty = errors.New("registry is not empty; use reset to reseed")

// seed installs the seed roster, but never over existing data.
func (cli *commandLine) seed() error {
	students, err := cli.studentRepo.QueryAllStudents()
	if err != nil {
		return err
	}
	if len(students) > 0 {
		return errRegistryNotEmpty
	}

	roster := student.SeedRoster()
	if err := cli.studentRepo.SaveStudents(roster...); err != nil {
		return err
	}
	logger.Printf("seeded %d students\n", len(roster))
	return nil
}

func (cli *commandLine) reset() error {
	roster := student.SeedRoster()
	if err := cli.studentRepo.ReplaceAllStudents(roster...); err != nil {
		return err
	}
	logger.Printf("registry reset to the %d-student seed roster\n", len(roster))
	return nil
}

func (cli *commandLine) clearData() error {
	if err := cli.studentRepo.ClearUploadedFields(); err != nil {
		return err
	}
	logger.Println("uploaded fields cleared")
	return nil
}
