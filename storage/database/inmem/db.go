package inmemdb

import (
	"sync"

	"github.com/edumanage/edurisk/core/alert"
	"github.com/edumanage/edurisk/core/student"
	"github.com/edumanage/edurisk/core/ticket"
)

type (
	DB struct {
		student *studentTable
		ticket  *ticketTable
		alert   *alertTable
		upload  *uploadTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	ticketTable struct {
		sync.RWMutex
		table map[string]*ticket.Ticket
	}

	alertTable struct {
		sync.RWMutex
		table map[string]*alert.Alert
	}

	uploadTable struct {
		sync.RWMutex
		table map[string]*student.UploadLog
	}
)

func Open() (*DB, error) {
	db := &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
		ticket:  &ticketTable{table: make(map[string]*ticket.Ticket)},
		alert:   &alertTable{table: make(map[string]*alert.Alert)},
		upload:  &uploadTable{table: make(map[string]*student.UploadLog)},
	}
	return db, nil
}
