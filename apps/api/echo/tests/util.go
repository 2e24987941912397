package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/edumanage/edurisk/apps/api/echo"
	"github.com/edumanage/edurisk/core"
	"github.com/edumanage/edurisk/core/alert"
	"github.com/edumanage/edurisk/core/student"
	"github.com/edumanage/edurisk/core/ticket"
	emailsvc "github.com/edumanage/edurisk/services/email"
	smssvc "github.com/edumanage/edurisk/services/sms"
	inmemdb "github.com/edumanage/edurisk/storage/database/inmem"
)

type testApp struct {
	app         *echoapi.Server
	studentRepo student.Repository
	ticketRepo  ticket.Repository
	alertRepo   alert.Repository
}

func setup(t *testing.T) *testApp {
	conf := testConfig()

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	studentRepo := inmemdb.NewStudentRepository(db)
	uploadRepo := inmemdb.NewUploadLogRepository(db)
	ticketRepo := inmemdb.NewTicketRepository(db)
	alertRepo := inmemdb.NewAlertRepository(db)

	// set up services
	logger := nopLogger{}
	smsSvc := smssvc.NewConsoleServiceMock()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	studentSvc, err := student.NewService(studentRepo, uploadRepo, logger, conf)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	ticketSvc := ticket.NewService(ticketRepo, conf)
	alertSvc := alert.NewService(alertRepo, smsSvc, mailSvc, logger, conf)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	smssvc.ClearSentMessages()

	// set up server
	app := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			StudentSvc: studentSvc,
			TicketSvc:  ticketSvc,
			AlertSvc:   alertSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	return &testApp{
		app:         app,
		studentRepo: studentRepo,
		ticketRepo:  ticketRepo,
		alertRepo:   alertRepo,
	}
}

func testConfig() *core.Config {
	return &core.Config{
		AppName:  "EduRisk",
		Env:      "TEST",
		TestMode: true,
		Risk: core.RiskConfig{
			LevelScheme:       "three-tier",
			GradeBands:        "default",
			MaxPeriodicMarks:  50,
			AlertThreshold:    60,
			HighRiskThreshold: 70,
			UnmatchedPolicy:   "reject",
		},
		Tickets: core.TicketConfig{AnsweredStatus: "In Progress"},
		Alerts:  core.AlertConfig{SendTimeout: time.Second},
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarchallObj(t *testing.T, data []byte, obj interface{}) {
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarchallObj(): %v", err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
