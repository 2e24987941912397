package tests

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"

	"github.com/edumanage/edurisk/core/alert"
	smssvc "github.com/edumanage/edurisk/services/sms"
	testutil "github.com/edumanage/edurisk/tests"
)

func Test_alertApi_notify(t *testing.T) {
	ta := setup(t)

	testutil.CreateStudent(t, ta.studentRepo, "PRN2401004", "Sneha Patil", "A", "9988776655", null.Float64From(72), null.Float64From(6.8))
	testutil.CreateStudent(t, ta.studentRepo, "PRN2401005", "Rahul Deshmukh", "A", "", null.Float64{}, null.Float64{})

	body := marchallObj(t, echo.Map{"student_prn": "prn2401004", "message": "Parent-teacher meeting on Friday at 10am."})
	req, rec := newRequest(http.MethodPost, "/v1/alerts/notify", body)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("notify code = %v; body: %s", rec.Code, rec.Body.String())
	}
	if len(smssvc.SentMessages) != 1 || smssvc.SentMessages[0].Body != "Parent-teacher meeting on Friday at 10am." {
		t.Errorf("operator message not sent verbatim: %v", smssvc.SentMessages)
	}

	tests := []httpTest{
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/alerts/notify",
			body:     marchallObj(t, echo.Map{"student_prn": "PRN9999999", "message": "hello"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "message required", method: http.MethodPost, path: "/v1/alerts/notify",
			body:     marchallObj(t, echo.Map{"student_prn": "PRN2401004"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "student without phone", method: http.MethodPost, path: "/v1/alerts/notify",
			body:     marchallObj(t, echo.Map{"student_prn": "PRN2401005", "message": "hello"}),
			wantCode: http.StatusBadGateway,
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

func Test_alertApi_inbox(t *testing.T) {
	ta := setup(t)

	testutil.CreateStudent(t, ta.studentRepo, "PRN2401006", "Kavya Joshi", "A", "9345678901", null.Float64From(55), null.Float64From(5.5))

	body := marchallObj(t, echo.Map{"student_prn": "PRN2401006", "message": "Please meet your mentor."})
	req, rec := newRequest(http.MethodPost, "/v1/alerts/notify", body)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("notify code = %v; body: %s", rec.Code, rec.Body.String())
	}

	var alerts []alert.Alert
	req, rec = newRequest(http.MethodGet, "/v1/alerts/student/PRN2401006")
	ta.app.ServeHTTP(rec, req)
	unmarchallObj(t, rec.Body.Bytes(), &alerts)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if a := alerts[0]; a.Read || a.Message != "Please meet your mentor." {
		t.Errorf("alert record wrong: %+v", a)
	}

	req, rec = newRequest(http.MethodPut, "/v1/alerts/"+alerts[0].ID+"/read")
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("mark read code = %v, want %v", rec.Code, http.StatusNoContent)
	}

	req, rec = newRequest(http.MethodGet, "/v1/alerts/student/PRN2401006")
	ta.app.ServeHTTP(rec, req)
	unmarchallObj(t, rec.Body.Bytes(), &alerts)
	if !alerts[0].Read {
		t.Error("alert not marked read")
	}

	req, rec = newRequest(http.MethodPut, "/v1/alerts/nope/read")
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing alert code = %v, want %v", rec.Code, http.StatusNotFound)
	}
}
