package testutil

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edumanage/edurisk/core/student"
)

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	prn, name, division, phone string,
	attendance, cgpa null.Float64,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s := student.Student{
		PRN:        prn,
		Name:       name,
		Division:   division,
		Phone:      phone,
		Attendance: attendance,
		CGPA:       cgpa,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	s, err := repo.CreateStudent(s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}
