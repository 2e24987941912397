package tests

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/edumanage/edurisk/core/ticket"
)

func submitTicket(t *testing.T, ta *testApp, prn, title string) ticket.Ticket {
	body := marchallObj(t, echo.Map{
		"student_prn": prn,
		"division":    "A",
		"title":       title,
		"description": "I could not attend the midsem exam due to illness.",
		"category":    "Exam",
	})
	req, rec := newRequest(http.MethodPost, "/v1/tickets", body)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submitTicket() code = %v; body: %s", rec.Code, rec.Body.String())
	}
	var tk ticket.Ticket
	unmarchallObj(t, rec.Body.Bytes(), &tk)
	return tk
}

func Test_ticketApi_create(t *testing.T) {
	ta := setup(t)

	tk := submitTicket(t, ta, "PRN2401001", "Midsem exam query")
	if tk.Status != ticket.StatusPending {
		t.Errorf("status = %s, want %s", tk.Status, ticket.StatusPending)
	}
	if tk.ID == "" {
		t.Error("ticket has no ID")
	}

	tests := []httpTest{
		{
			name: "student_prn required", method: http.MethodPost, path: "/v1/tickets",
			body:     marchallObj(t, echo.Map{"title": "x", "description": "y"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "PRN shape enforced", method: http.MethodPost, path: "/v1/tickets",
			body:     marchallObj(t, echo.Map{"student_prn": "no", "title": "x", "description": "y"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown category rejected", method: http.MethodPost, path: "/v1/tickets",
			body:     marchallObj(t, echo.Map{"student_prn": "PRN2401001", "title": "x", "description": "y", "category": "Gossip"}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_ticketApi_lifecycle(t *testing.T) {
	ta := setup(t)
	tk := submitTicket(t, ta, "PRN2401005", "Attendance shortfall")

	setStatus := func(id, status string) {
		req, rec := newRequest(http.MethodPut, "/v1/tickets/"+id+"/status", marchallObj(t, echo.Map{"status": status}))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("setStatus(%s) code = %v; body: %s", status, rec.Code, rec.Body.String())
		}
		unmarchallObj(t, rec.Body.Bytes(), &tk)
	}

	setStatus(tk.ID, "In Progress")
	if tk.Status != ticket.StatusInProgress {
		t.Errorf("status = %s, want %s", tk.Status, ticket.StatusInProgress)
	}

	// attaching a reply forces the answered status
	body := marchallObj(t, echo.Map{"text": "Please submit a medical certificate.", "author": "T. Singh"})
	req, rec := newRequest(http.MethodPut, "/v1/tickets/"+tk.ID+"/reply", body)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reply code = %v; body: %s", rec.Code, rec.Body.String())
	}
	unmarchallObj(t, rec.Body.Bytes(), &tk)
	if !tk.HasReply() || tk.ReplyAuthor.String != "T. Singh" {
		t.Errorf("reply not attached: %+v", tk)
	}
	if tk.Status != ticket.StatusInProgress {
		t.Errorf("status = %s, want %s", tk.Status, ticket.StatusInProgress)
	}

	setStatus(tk.ID, "Solved")

	// reopening keeps the reply
	setStatus(tk.ID, "Pending")
	if !tk.HasReply() {
		t.Error("reopening dropped the reply")
	}

	// unknown status is a validation error
	req, rec = newRequest(http.MethodPut, "/v1/tickets/"+tk.ID+"/status", marchallObj(t, echo.Map{"status": "Escalated"}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status code = %v, want %v", rec.Code, http.StatusBadRequest)
	}

	// missing ticket
	req, rec = newRequest(http.MethodPut, "/v1/tickets/nope/status", marchallObj(t, echo.Map{"status": "Solved"}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing ticket code = %v, want %v", rec.Code, http.StatusNotFound)
	}
}

func Test_ticketApi_query(t *testing.T) {
	ta := setup(t)

	tk1 := submitTicket(t, ta, "PRN2401001", "Query one")
	submitTicket(t, ta, "PRN2401002", "Query two")

	req, rec := newRequest(http.MethodPut, "/v1/tickets/"+tk1.ID+"/status", marchallObj(t, echo.Map{"status": "Solved"}))
	ta.app.ServeHTTP(rec, req)

	var tickets []ticket.Ticket

	req, rec = newRequest(http.MethodGet, "/v1/tickets")
	ta.app.ServeHTTP(rec, req)
	unmarchallObj(t, rec.Body.Bytes(), &tickets)
	if len(tickets) != 2 {
		t.Errorf("all tickets = %d, want 2", len(tickets))
	}

	req, rec = newRequest(http.MethodGet, "/v1/tickets?status=Solved")
	ta.app.ServeHTTP(rec, req)
	unmarchallObj(t, rec.Body.Bytes(), &tickets)
	if len(tickets) != 1 || tickets[0].ID != tk1.ID {
		t.Errorf("solved tickets = %v, want [%s]", tickets, tk1.ID)
	}

	req, rec = newRequest(http.MethodGet, "/v1/tickets?student_prn=prn2401002")
	ta.app.ServeHTTP(rec, req)
	unmarchallObj(t, rec.Body.Bytes(), &tickets)
	if len(tickets) != 1 || tickets[0].StudentPRN != "PRN2401002" {
		t.Errorf("filtered tickets = %v, want PRN2401002's", tickets)
	}
}
